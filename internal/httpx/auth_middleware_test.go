package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"librarydesk/internal/identity"
	"librarydesk/internal/testutil"
)

type fakeBlacklist map[string]bool

func (f fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f[jti], nil
}

func TestAuthMiddleware(t *testing.T) {
	var got identity.Principal
	handler := AuthMiddleware(testutil.TestSecret, fakeBlacklist{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = PrincipalFrom(r)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"expired token", "Bearer " + testutil.GenerateExpiredToken(testutil.TestSecret, testutil.TestUser), http.StatusUnauthorized},
		{"wrong secret", "Bearer " + testutil.GenerateTestToken("other", testutil.TestUser), http.StatusUnauthorized},
		{"valid token", "Bearer " + testutil.GenerateTestToken(testutil.TestSecret, testutil.TestAdmin), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = identity.Anonymous
			r := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, testutil.TestAdmin.ID, got.ID)
				assert.True(t, got.HasRole(identity.RoleAdmin))
			}
		})
	}
}

func TestAuthMiddleware_Blacklisted(t *testing.T) {
	token := testutil.GenerateTestToken(testutil.TestSecret, testutil.TestUser)

	var jti string
	capture := AuthMiddleware(testutil.TestSecret, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jti = TokenIDFrom(r)
	}))
	r := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	capture.ServeHTTP(httptest.NewRecorder(), r)
	assert.NotEmpty(t, jti)

	handler := AuthMiddleware(testutil.TestSecret, fakeBlacklist{jti: true})(okHandler())
	w := httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthError(t *testing.T) {
	w := httptest.NewRecorder()
	AuthError(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(identity.WithPrincipal(r.Context(), testutil.TestUser))
	w = httptest.NewRecorder()
	AuthError(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
