package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"librarydesk/internal/book"
	"librarydesk/internal/identity"
)

type Service struct {
	repo  Repository
	books BookFinder
	now   func() time.Time
}

type Option func(*Service)

// WithClock replaces the time source used for request, approval and return dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, books BookFinder, opts ...Option) *Service {
	s := &Service{repo: repo, books: books, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a Pending request of the caller for bookID. Availability is
// checked but not reserved; copies are only taken on approval.
func (s *Service) Create(ctx context.Context, p identity.Principal, bookID string) (Request, error) {
	if err := identity.RequireAuthenticated(p); err != nil {
		return Request{}, err
	}
	if !validID(bookID) {
		return Request{}, ErrBookNotFound
	}

	b, err := s.findBook(ctx, bookID)
	if err != nil {
		return Request{}, err
	}
	if b.AvailableQuantity <= 0 {
		return Request{}, ErrUnavailable
	}

	active, err := s.repo.HasActive(ctx, p.ID, bookID)
	if err != nil {
		return Request{}, err
	}
	if active {
		return Request{}, ErrDuplicateActiveRequest
	}

	req := Request{
		BookID:      bookID,
		UserID:      p.ID,
		RequestDate: s.now().UTC(),
		Status:      StatusPending,
		BookTitle:   b.Title,
	}
	if err := s.repo.Create(ctx, &req); err != nil {
		return Request{}, err
	}

	slog.InfoContext(ctx, "loan requested", "request_id", req.ID, "book_id", bookID, "user_id", p.ID)
	return req, nil
}

// Approve hands out a copy: the request becomes Approved with a due date and
// the book loses one available copy.
func (s *Service) Approve(ctx context.Context, p identity.Principal, id string) (Request, error) {
	return s.transition(ctx, p, id, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, p identity.Principal, id string) (Request, error) {
	return s.transition(ctx, p, id, StatusRejected)
}

// MarkReturned closes an Approved loan and gives the copy back.
func (s *Service) MarkReturned(ctx context.Context, p identity.Principal, id string) (Request, error) {
	return s.transition(ctx, p, id, StatusReturned)
}

// ListMine returns the caller's requests, newest first.
func (s *Service) ListMine(ctx context.Context, p identity.Principal) ([]Request, error) {
	if err := identity.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, p.ID)
}

// ListAll returns every request, newest first.
func (s *Service) ListAll(ctx context.Context, p identity.Principal) ([]Request, error) {
	if err := identity.RequireRole(p, identity.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

func (s *Service) transition(ctx context.Context, p identity.Principal, id string, to Status) (Request, error) {
	if err := identity.RequireRole(p, identity.RoleAdmin); err != nil {
		return Request{}, err
	}
	if !validID(id) {
		return Request{}, ErrNotFound
	}

	req, err := s.tryTransition(ctx, id, to)
	if errors.Is(err, ErrConcurrencyConflict) {
		slog.WarnContext(ctx, "loan transition conflicted, retrying", "request_id", id, "to", to)
		req, err = s.tryTransition(ctx, id, to)
		if errors.Is(err, ErrConcurrencyConflict) {
			return Request{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}
	if err != nil {
		return Request{}, err
	}

	slog.InfoContext(ctx, "loan transitioned",
		"request_id", req.ID,
		"book_id", req.BookID,
		"status", req.Status,
		"admin_id", p.ID,
	)
	return req, nil
}

// tryTransition reads the current rows, validates the move and writes it
// conditioned on the versions it read.
func (s *Service) tryTransition(ctx context.Context, id string, to Status) (Request, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if !req.Status.CanTransitionTo(to) {
		return Request{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, req.Status, to)
	}

	now := s.now().UTC()
	t := Transition{BookID: req.BookID}

	switch to {
	case StatusApproved:
		b, err := s.findBook(ctx, req.BookID)
		if err != nil {
			return Request{}, err
		}
		if b.AvailableQuantity <= 0 {
			return Request{}, ErrUnavailable
		}
		due := now.Add(LoanPeriod)
		req.ApprovedDate = &now
		req.DueDate = &due
		t.BookVersion = b.Version
		t.AvailableDelta = -1
	case StatusReturned:
		b, err := s.findBook(ctx, req.BookID)
		if err != nil {
			return Request{}, err
		}
		req.ReturnDate = &now
		t.BookVersion = b.Version
		t.AvailableDelta = 1
	}

	req.Status = to
	t.Request = req
	if err := s.repo.ApplyTransition(ctx, t); err != nil {
		return Request{}, err
	}
	req.Version++
	return req, nil
}

func (s *Service) findBook(ctx context.Context, id string) (book.Book, error) {
	b, err := s.books.GetByID(ctx, id)
	if errors.Is(err, book.ErrNotFound) {
		return book.Book{}, ErrBookNotFound
	}
	return b, err
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
