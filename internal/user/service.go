package user

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"librarydesk/internal/identity"
	"librarydesk/internal/platform/crypto"
	"librarydesk/internal/platform/validate"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a self-service account holding the User role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)
	if fields := validate.Struct(in); fields != nil {
		return User{}, &ValidationError{Fields: fields}
	}

	_, err := s.repo.GetByEmail(ctx, in.Email)
	if err == nil {
		return User{}, ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	u := &User{
		Email:        in.Email,
		Username:     in.Username,
		FullName:     in.FullName,
		PasswordHash: hash,
		Roles:        []string{identity.RoleUser},
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", u.ID)
	return *u, nil
}

// Provision creates the account if the email is unknown and otherwise makes
// sure it holds roles. The password of an existing account is left alone.
func (s *Service) Provision(ctx context.Context, email, username, password string, roles []string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		merged := mergeRoles(existing.Roles, roles)
		if len(merged) != len(existing.Roles) {
			if err := s.repo.SetRoles(ctx, existing.ID, merged); err != nil {
				return User{}, err
			}
			existing.Roles = merged
		}
		return existing, nil
	case !errors.Is(err, ErrNotFound):
		return User{}, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	u := &User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Roles:        mergeRoles(nil, roles),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return *u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func mergeRoles(have, want []string) []string {
	out := append([]string{}, have...)
	for _, r := range want {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
