package user

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"librarydesk/internal/identity"
)

func TestHTTPHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(repo *MockRepository)
		expectedStatus int
	}{
		{
			name: "success - valid registration",
			body: `{"email":"new@example.com","username":"newuser","password":"Password123!"}`,
			setupMock: func(repo *MockRepository) {
				repo.EXPECT().GetByEmail(gomock.Any(), "new@example.com").Return(User{}, ErrNotFound)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "conflict - email exists",
			body: `{"email":"new@example.com","username":"newuser","password":"Password123!"}`,
			setupMock: func(repo *MockRepository) {
				repo.EXPECT().GetByEmail(gomock.Any(), "new@example.com").Return(User{ID: "u1"}, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "validation error - weak password",
			body:           `{"email":"new@example.com","username":"newuser","password":"weak"}`,
			setupMock:      func(*MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - unknown field",
			body:           `{"email":"new@example.com","role":"Admin"}`,
			setupMock:      func(*MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := NewMockRepository(ctrl)
			tt.setupMock(repo)
			handler := NewHTTPHandler(NewService(repo))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/v1/users/register", strings.NewReader(tt.body))

			handler.Register(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "password_hash")
		})
	}
}

func TestHTTPHandler_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(repo))

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Me(w, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns roles", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), "u1").
			Return(User{ID: "u1", Email: "a@example.com", Roles: []string{identity.RoleAdmin}}, nil)

		r := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		r = r.WithContext(identity.WithPrincipal(r.Context(), identity.Principal{ID: "u1", Roles: []string{identity.RoleAdmin}}))
		w := httptest.NewRecorder()

		handler.Me(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"roles":["Admin"]`)
	})
}
