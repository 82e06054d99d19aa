// Package loan implements the borrow-request lifecycle: users ask to borrow a
// book, admins approve or reject the request and later mark the copy
// returned. Approval and return move the book's available copy count in the
// same transaction as the status change.
package loan

import (
	"errors"
	"slices"
	"time"
)

// LoanPeriod is the time between approval and the due date.
const LoanPeriod = 14 * 24 * time.Hour

var (
	ErrNotFound               = errors.New("loan request not found")
	ErrBookNotFound           = errors.New("book not found")
	ErrUnavailable            = errors.New("book has no available copies")
	ErrDuplicateActiveRequest = errors.New("an active request for this book already exists")
	ErrInvalidTransition      = errors.New("invalid request status transition")
	// ErrConcurrencyConflict means a row changed between read and write.
	ErrConcurrencyConflict = errors.New("concurrent modification")
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
	StatusReturned Status = "Returned"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusReturned},
}

// Active reports whether the request still holds or waits for a copy.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Request is one user's request to borrow one book.
type Request struct {
	ID           string     `json:"id"`
	BookID       string     `json:"book_id"`
	UserID       string     `json:"user_id"`
	RequestDate  time.Time  `json:"request_date"`
	Status       Status     `json:"status"`
	ApprovedDate *time.Time `json:"approved_date,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
	Version      int64      `json:"version"`

	BookTitle string `json:"book_title,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// Transition is the write set of one state change. Request carries the new
// state and the version it was read at. When AvailableDelta is non-zero the
// book row at BookVersion is adjusted in the same commit.
type Transition struct {
	Request        Request
	BookID         string
	BookVersion    int64
	AvailableDelta int
}
