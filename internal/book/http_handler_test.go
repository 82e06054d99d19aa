package book

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarydesk/internal/identity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func asPrincipal(r *http.Request, p identity.Principal) *http.Request {
	return r.WithContext(identity.WithPrincipal(r.Context(), p))
}

func TestHTTPHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	testBook := Book{ID: testBookID, ISBN: "9780441172719", Title: "Dune", Genre: "Sci-Fi"}

	t.Run("success with genres in meta", func(t *testing.T) {
		mockRepo.EXPECT().
			List(gomock.Any(), Query{Search: "dune", Genre: "Sci-Fi", Sort: "year_desc"}).
			Return([]Book{testBook}, nil)
		mockRepo.EXPECT().Genres(gomock.Any()).Return([]string{"Fantasy", "Sci-Fi"}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books?q=dune&genre=Sci-Fi&sort=year_desc", nil)

		handler.List(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Success bool   `json:"success"`
			Data    []Book `json:"data"`
			Meta    struct {
				Total  int      `json:"total"`
				Genres []string `json:"genres"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Len(t, body.Data, 1)
		assert.Equal(t, 1, body.Meta.Total)
		assert.Equal(t, []string{"Fantasy", "Sci-Fi"}, body.Meta.Genres)
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), testBookID).Return(Book{ID: testBookID}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books/"+testBookID, nil)
		r.SetPathValue("id", testBookID)

		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), testBookID).Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/books/"+testBookID, nil)
		r.SetPathValue("id", testBookID)

		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	body := `{"title":"Dune","author":"Frank Herbert","isbn":"9780441172719","genre":"Sci-Fi","publication_year":1965,"quantity":2,"available_quantity":2}`

	tests := []struct {
		name           string
		principal      identity.Principal
		body           string
		setupMock      func(repo *MockRepository)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "anonymous",
			principal:      identity.Anonymous,
			body:           body,
			setupMock:      func(*MockRepository) {},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "user without admin role",
			principal:      reader,
			body:           body,
			setupMock:      func(*MockRepository) {},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:           "invalid json",
			principal:      admin,
			body:           `{"title":`,
			setupMock:      func(*MockRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:           "validation error",
			principal:      admin,
			body:           `{"title":"Dune","author":"Frank Herbert","isbn":"9780441172719","genre":"Sci-Fi","quantity":1,"available_quantity":5}`,
			setupMock:      func(*MockRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:      "duplicate isbn",
			principal: admin,
			body:      body,
			setupMock: func(repo *MockRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(ErrDuplicateISBN)
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "DUPLICATE_ISBN",
		},
		{
			name:      "created",
			principal: admin,
			body:      body,
			setupMock: func(repo *MockRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockRepo := NewMockRepository(ctrl)
			tt.setupMock(mockRepo)
			handler := NewHTTPHandler(NewService(mockRepo))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(tt.body))
			r = asPrincipal(r, tt.principal)

			handler.Create(w, r)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Contains(t, w.Body.String(), tt.expectedCode)
			}
		})
	}
}

func TestHTTPHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("in use", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), testBookID).Return(ErrInUse)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/v1/books/"+testBookID, nil)
		r.SetPathValue("id", testBookID)
		r = asPrincipal(r, admin)

		handler.Delete(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "BOOK_IN_USE")
	})

	t.Run("no content", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), testBookID).Return(nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/v1/books/"+testBookID, nil)
		r.SetPathValue("id", testBookID)
		r = asPrincipal(r, admin)

		handler.Delete(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
