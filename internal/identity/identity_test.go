package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireRole(t *testing.T) {
	admin := Principal{ID: "admin-1", Roles: []string{RoleAdmin}}
	reader := Principal{ID: "user-1", Roles: []string{RoleUser}}

	t.Run("admin passes", func(t *testing.T) {
		assert.NoError(t, RequireRole(admin, RoleAdmin))
	})

	t.Run("user without role", func(t *testing.T) {
		assert.ErrorIs(t, RequireRole(reader, RoleAdmin), ErrUnauthorized)
	})

	t.Run("anonymous", func(t *testing.T) {
		assert.ErrorIs(t, RequireRole(Anonymous, RoleAdmin), ErrUnauthorized)
	})

	t.Run("roles without id do not count", func(t *testing.T) {
		assert.ErrorIs(t, RequireRole(Principal{Roles: []string{RoleAdmin}}, RoleAdmin), ErrUnauthorized)
	})
}

func TestRequireAuthenticated(t *testing.T) {
	assert.NoError(t, RequireAuthenticated(Principal{ID: "user-1"}))
	assert.ErrorIs(t, RequireAuthenticated(Anonymous), ErrUnauthorized)
}

func TestPrincipalContext(t *testing.T) {
	p := Principal{ID: "user-1", Roles: []string{RoleUser}}
	ctx := WithPrincipal(context.Background(), p)

	assert.Equal(t, p, FromContext(ctx))
	assert.Equal(t, Anonymous, FromContext(context.Background()))
}
