package book

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"librarydesk/internal/platform/validate"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrInUse is returned when deleting a book that loan requests still reference.
	ErrInUse = errors.New("book is referenced by loan requests")
	// ErrDuplicateISBN is returned when another book already uses the ISBN.
	ErrDuplicateISBN = errors.New("isbn already exists")
)

// Book is one catalog title with its copy counts.
type Book struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	ISBN              string    `json:"isbn"`
	Genre             string    `json:"genre"`
	PublicationYear   int       `json:"publication_year"`
	Quantity          int       `json:"quantity"`
	AvailableQuantity int       `json:"available_quantity"`
	Description       string    `json:"description,omitempty"`
	CoverImageURL     string    `json:"cover_image_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Version           int64     `json:"version"`
}

// Sort orders accepted by Query.Sort. Anything else sorts by title ascending.
const (
	SortTitle      = ""
	SortTitleDesc  = "title_desc"
	SortAuthor     = "author"
	SortAuthorDesc = "author_desc"
	SortYear       = "year"
	SortYearDesc   = "year_desc"
)

// Query filters and orders the catalog listing.
type Query struct {
	Search string
	Genre  string
	Sort   string
}

// Input is the admin-editable part of a Book.
type Input struct {
	Title             string `json:"title" validate:"required,max=200"`
	Author            string `json:"author" validate:"required,max=200"`
	ISBN              string `json:"isbn" validate:"required,isbn"`
	Genre             string `json:"genre" validate:"required,max=100"`
	PublicationYear   int    `json:"publication_year" validate:"gte=0,lte=9999"`
	Quantity          int    `json:"quantity" validate:"gte=0"`
	AvailableQuantity int    `json:"available_quantity" validate:"gte=0,ltefield=Quantity"`
	Description       string `json:"description" validate:"max=2000"`
	CoverImageURL     string `json:"cover_image_url" validate:"omitempty,url"`
}

func (in Input) normalized() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Genre = strings.TrimSpace(in.Genre)
	in.ISBN = validate.NormalizeISBN(strings.TrimSpace(in.ISBN))
	in.CoverImageURL = strings.TrimSpace(in.CoverImageURL)
	return in
}

func (in Input) apply(b *Book) {
	b.Title = in.Title
	b.Author = in.Author
	b.ISBN = in.ISBN
	b.Genre = in.Genre
	b.PublicationYear = in.PublicationYear
	b.Quantity = in.Quantity
	b.AvailableQuantity = in.AvailableQuantity
	b.Description = in.Description
	b.CoverImageURL = in.CoverImageURL
}

// ValidationError lists the fields of an Input that failed validation.
type ValidationError struct {
	Fields []validate.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid book"
	}
	return fmt.Sprintf("invalid book: %s", e.Fields[0].Message)
}
