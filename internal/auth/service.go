package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"librarydesk/internal/platform/crypto"
	"librarydesk/internal/user"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	secret    string
	ttl       time.Duration
	users     UserFinder
	blacklist Blacklist
}

func NewService(secret string, ttl time.Duration, users UserFinder, blacklist Blacklist) *Service {
	return &Service{
		secret:    secret,
		ttl:       ttl,
		users:     users,
		blacklist: blacklist,
	}
}

type Token struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	Roles       []string `json:"roles"`
}

// Login checks the credentials and issues an access token carrying the
// account's roles. Unknown email and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return Token{}, ErrInvalidCredentials
	case err != nil:
		return Token{}, fmt.Errorf("find user: %w", err)
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return Token{}, ErrInvalidCredentials
	}

	accessToken, _, err := crypto.GenerateToken(s.secret, u.ID, u.Roles, s.ttl)
	if err != nil {
		return Token{}, err
	}

	slog.InfoContext(ctx, "user logged in", "user_id", u.ID)
	return Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
		Roles:       u.Roles,
	}, nil
}

// Logout revokes token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return s.blacklist.AddToken(ctx, claims.ID, claims.Sub, expiresAt)
}

// RunBlacklistCleanup deletes expired blacklist entries every interval until
// ctx is done.
func RunBlacklistCleanup(ctx context.Context, blacklist Blacklist, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := blacklist.CleanupExpired(ctx)
			if err != nil {
				slog.Warn("blacklist cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("blacklist cleanup", "deleted", n)
			}
		}
	}
}
