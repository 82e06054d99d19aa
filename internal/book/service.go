package book

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"librarydesk/internal/identity"
	"librarydesk/internal/platform/validate"
)

// Service provides catalog queries and admin inventory management.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the books matching q. Search and genre are trimmed first; an
// empty value disables that filter.
func (s *Service) List(ctx context.Context, q Query) ([]Book, error) {
	q.Search = strings.TrimSpace(q.Search)
	q.Genre = strings.TrimSpace(q.Genre)
	return s.repo.List(ctx, q)
}

// Genres returns the distinct genres of the catalog in ascending order.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	return s.repo.Genres(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	if !validID(id) {
		return Book{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, p identity.Principal, in Input) (Book, error) {
	if err := identity.RequireRole(p, identity.RoleAdmin); err != nil {
		return Book{}, err
	}
	in = in.normalized()
	if fields := validate.Struct(in); fields != nil {
		return Book{}, &ValidationError{Fields: fields}
	}

	var b Book
	in.apply(&b)
	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, err
	}
	slog.InfoContext(ctx, "book created", "book_id", b.ID, "admin_id", p.ID)
	return b, nil
}

func (s *Service) Update(ctx context.Context, p identity.Principal, id string, in Input) (Book, error) {
	if err := identity.RequireRole(p, identity.RoleAdmin); err != nil {
		return Book{}, err
	}
	if !validID(id) {
		return Book{}, ErrNotFound
	}
	in = in.normalized()
	if fields := validate.Struct(in); fields != nil {
		return Book{}, &ValidationError{Fields: fields}
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Book{}, err
	}
	in.apply(&b)
	if err := s.repo.Update(ctx, &b); err != nil {
		return Book{}, err
	}
	slog.InfoContext(ctx, "book updated", "book_id", b.ID, "admin_id", p.ID)
	return b, nil
}

func (s *Service) Delete(ctx context.Context, p identity.Principal, id string) error {
	if err := identity.RequireRole(p, identity.RoleAdmin); err != nil {
		return err
	}
	if !validID(id) {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "book deleted", "book_id", id, "admin_id", p.ID)
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
