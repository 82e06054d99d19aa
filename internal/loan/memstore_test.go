package loan

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"librarydesk/internal/book"
)

// memStore is an in-memory Repository that enforces the same row versions,
// active-request uniqueness and non-negative stock as the Postgres schema.
type memStore struct {
	mu       sync.Mutex
	books    map[string]book.Book
	requests map[string]Request
}

func newMemStore(books ...book.Book) *memStore {
	s := &memStore{
		books:    make(map[string]book.Book),
		requests: make(map[string]Request),
	}
	for _, b := range books {
		s.books[b.ID] = b
	}
	return s
}

func (s *memStore) bookSnapshot(id string) book.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.books[id]
}

func (s *memStore) GetByID(_ context.Context, id string) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (s *memStore) HasActive(_ context.Context, userID, bookID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasActiveLocked(userID, bookID), nil
}

func (s *memStore) hasActiveLocked(userID, bookID string) bool {
	for _, req := range s.requests {
		if req.UserID == userID && req.BookID == bookID && req.Status.Active() {
			return true
		}
	}
	return false
}

func (s *memStore) Create(_ context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[req.BookID]; !ok {
		return ErrBookNotFound
	}
	if s.hasActiveLocked(req.UserID, req.BookID) {
		return ErrDuplicateActiveRequest
	}
	req.ID = uuid.NewString()
	req.Version = 1
	s.requests[req.ID] = *req
	return nil
}

func (s *memStore) ApplyTransition(_ context.Context, t Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.requests[t.Request.ID]
	if !ok || current.Version != t.Request.Version {
		return ErrConcurrencyConflict
	}

	b := s.books[t.BookID]
	if t.AvailableDelta != 0 {
		if b.Version != t.BookVersion {
			return ErrConcurrencyConflict
		}
		if b.AvailableQuantity+t.AvailableDelta < 0 {
			return ErrUnavailable
		}
		b.AvailableQuantity += t.AvailableDelta
		b.Version++
		s.books[b.ID] = b
	}

	next := t.Request
	next.Version++
	s.requests[next.ID] = next
	return nil
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]Request, error) {
	return s.filter(func(r Request) bool { return r.UserID == userID }), nil
}

func (s *memStore) ListAll(_ context.Context) ([]Request, error) {
	return s.filter(func(Request) bool { return true }), nil
}

func (s *memStore) filter(keep func(Request) bool) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Request{}
	for _, req := range s.requests {
		if keep(req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestDate.Equal(out[j].RequestDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].RequestDate.After(out[j].RequestDate)
	})
	return out
}

// memBooks exposes the store's books through BookFinder.
type memBooks struct {
	store *memStore
}

func (m memBooks) GetByID(_ context.Context, id string) (book.Book, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	b, ok := m.store.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}
