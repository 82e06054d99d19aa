package auth

import (
	"context"
	"time"

	"librarydesk/internal/user"
)

// UserFinder looks up accounts for login.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// Blacklist records access tokens revoked before their expiry.
type Blacklist interface {
	AddToken(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	CleanupExpired(ctx context.Context) (int64, error)
}
