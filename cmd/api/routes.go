package main

import (
	"context"
	"net/http"
	"time"

	"librarydesk/internal/auth"
	"librarydesk/internal/book"
	"librarydesk/internal/httpx"
	"librarydesk/internal/loan"
	"librarydesk/internal/user"
)

type handlers struct {
	books *book.HTTPHandler
	loans *loan.HTTPHandler
	users *user.HTTPHandler
	auth  *auth.HTTPHandler
}

// newRouter registers every route on a Go 1.22 pattern mux. Only routes that
// need a caller go through authMW; role checks happen in the services.
func newRouter(h handlers, authMW func(http.Handler) http.Handler, ready func(context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()
	protected := func(fn http.HandlerFunc) http.Handler {
		return authMW(fn)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("GET /v1/books", h.books.List)
	mux.HandleFunc("GET /v1/books/genres", h.books.Genres)
	mux.HandleFunc("GET /v1/books/{id}", h.books.Get)
	mux.Handle("POST /v1/books", protected(h.books.Create))
	mux.Handle("PUT /v1/books/{id}", protected(h.books.Update))
	mux.Handle("DELETE /v1/books/{id}", protected(h.books.Delete))

	mux.Handle("GET /v1/me/requests", protected(h.loans.ListMine))
	mux.Handle("GET /v1/requests", protected(h.loans.ListAll))
	mux.Handle("POST /v1/requests", protected(h.loans.Create))
	mux.Handle("POST /v1/requests/{id}/approve", protected(h.loans.Approve))
	mux.Handle("POST /v1/requests/{id}/reject", protected(h.loans.Reject))
	mux.Handle("POST /v1/requests/{id}/return", protected(h.loans.MarkReturned))

	mux.HandleFunc("POST /v1/users/register", h.users.Register)
	mux.HandleFunc("POST /v1/users/login", h.auth.Login)
	mux.Handle("POST /v1/auth/logout", protected(h.auth.Logout))
	mux.Handle("GET /v1/me", protected(h.users.Me))

	return mux
}

// withMiddleware wraps the router in the request pipeline, outermost first.
func withMiddleware(router http.Handler, rl *httpx.RateLimitMiddleware, corsOrigins []string, hsts bool, maxBody int64) http.Handler {
	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(hsts),
		httpx.CORSMiddleware(corsOrigins),
		rl.Middleware,
		httpx.RequestSizeLimitMiddleware(maxBody),
	)
}
