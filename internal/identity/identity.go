// Package identity holds the authenticated principal consumed by the core
// operations. Authentication itself lives in the auth and httpx packages.
package identity

import (
	"context"
	"errors"
	"slices"
)

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// ErrUnauthorized is returned when the caller is anonymous or lacks a role.
var ErrUnauthorized = errors.New("unauthorized")

// Principal is the actor making a request.
type Principal struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

// Anonymous is the zero principal.
var Anonymous = Principal{}

func (p Principal) IsAuthenticated() bool {
	return p.ID != ""
}

func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// RequireAuthenticated fails with ErrUnauthorized for anonymous callers.
func RequireAuthenticated(p Principal) error {
	if !p.IsAuthenticated() {
		return ErrUnauthorized
	}
	return nil
}

// RequireRole fails with ErrUnauthorized unless p is authenticated and holds role.
func RequireRole(p Principal, role string) error {
	if !p.IsAuthenticated() || !p.HasRole(role) {
		return ErrUnauthorized
	}
	return nil
}

type contextKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(contextKey{}).(Principal); ok {
		return p
	}
	return Anonymous
}
