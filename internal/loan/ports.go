package loan

import (
	"context"

	"librarydesk/internal/book"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=loan

// Repository stores loan requests.
type Repository interface {
	GetByID(ctx context.Context, id string) (Request, error)
	HasActive(ctx context.Context, userID, bookID string) (bool, error)
	Create(ctx context.Context, r *Request) error
	// ApplyTransition writes the request and, if needed, the book counter
	// atomically. A stale version on either row yields ErrConcurrencyConflict.
	ApplyTransition(ctx context.Context, t Transition) error
	ListByUser(ctx context.Context, userID string) ([]Request, error)
	ListAll(ctx context.Context) ([]Request, error)
}

// BookFinder reads catalog entries.
type BookFinder interface {
	GetByID(ctx context.Context, id string) (book.Book, error)
}
