package httpx

import (
	"context"
	"net/http"

	"librarydesk/internal/identity"
)

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	tokenIDKey   contextKey = "tokenID"
)

// PrincipalFrom returns the authenticated principal of the request.
func PrincipalFrom(r *http.Request) identity.Principal {
	return identity.FromContext(r.Context())
}

// UserIDFrom retrieves the user ID from the request context.
func UserIDFrom(r *http.Request) string {
	return PrincipalFrom(r).ID
}

// ContextWithRequestID returns a new context carrying the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func contextWithTokenID(ctx context.Context, jti string) context.Context {
	return context.WithValue(ctx, tokenIDKey, jti)
}

// TokenIDFrom returns the jti of the access token that authenticated the request.
func TokenIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(tokenIDKey).(string); ok {
		return v
	}
	return ""
}
