package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"librarydesk/internal/book"
	"librarydesk/internal/identity"
	"librarydesk/internal/user"
)

// Seed is the layout of db/seed/library.yaml.
type Seed struct {
	Admin Account   `yaml:"admin"`
	Users []Account `yaml:"users"`
	Books []Book    `yaml:"books"`
}

type Account struct {
	Email    string   `yaml:"email"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Roles    []string `yaml:"roles"`
}

type Book struct {
	Title           string `yaml:"title"`
	Author          string `yaml:"author"`
	ISBN            string `yaml:"isbn"`
	Genre           string `yaml:"genre"`
	PublicationYear int    `yaml:"publication_year"`
	Copies          int    `yaml:"copies"`
	Description     string `yaml:"description"`
	CoverImageURL   string `yaml:"cover_image_url"`
}

func (b Book) input() book.Input {
	return book.Input{
		Title:             b.Title,
		Author:            b.Author,
		ISBN:              b.ISBN,
		Genre:             b.Genre,
		PublicationYear:   b.PublicationYear,
		Quantity:          b.Copies,
		AvailableQuantity: b.Copies,
		Description:       b.Description,
		CoverImageURL:     b.CoverImageURL,
	}
}

type Stats struct {
	Users        int
	BooksCreated int
	BooksSkipped int
}

func loadSeed(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	return parseSeed(raw)
}

func parseSeed(raw []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed file: %w", err)
	}
	if s.Admin.Email == "" {
		return Seed{}, errors.New("seed file: admin.email is required")
	}
	if len(s.Admin.Roles) == 0 {
		s.Admin.Roles = []string{identity.RoleAdmin, identity.RoleUser}
	}
	for i := range s.Users {
		if len(s.Users[i].Roles) == 0 {
			s.Users[i].Roles = []string{identity.RoleUser}
		}
	}
	return s, nil
}

type userProvisioner interface {
	Provision(ctx context.Context, email, username, password string, roles []string) (user.User, error)
}

type bookCreator interface {
	Create(ctx context.Context, p identity.Principal, in book.Input) (book.Book, error)
}

type seeder struct {
	users userProvisioner
	books bookCreator
}

func (s seeder) apply(ctx context.Context, data Seed) (Stats, error) {
	var stats Stats

	admin, err := s.provision(ctx, data.Admin)
	if err != nil {
		return stats, err
	}
	stats.Users++
	for _, acc := range data.Users {
		if _, err := s.provision(ctx, acc); err != nil {
			return stats, err
		}
		stats.Users++
	}

	p := identity.Principal{ID: admin.ID, Roles: admin.Roles}
	for _, b := range data.Books {
		_, err := s.books.Create(ctx, p, b.input())
		switch {
		case err == nil:
			stats.BooksCreated++
		case errors.Is(err, book.ErrDuplicateISBN):
			stats.BooksSkipped++
		default:
			return stats, fmt.Errorf("seed book %q: %w", b.ISBN, err)
		}
	}
	return stats, nil
}

func (s seeder) provision(ctx context.Context, acc Account) (user.User, error) {
	u, err := s.users.Provision(ctx, acc.Email, acc.Username, acc.Password, acc.Roles)
	if err != nil {
		return user.User{}, fmt.Errorf("seed user %s: %w", acc.Email, err)
	}
	slog.InfoContext(ctx, "user provisioned", "user_id", u.ID, "roles", u.Roles)
	return u, nil
}
