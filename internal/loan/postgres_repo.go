package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const selectRequests = `
	SELECT r.id, r.book_id, r.user_id, r.request_date, r.status, r.approved_date,
	       r.due_date, r.return_date, r.version, b.title, u.email
	FROM book_requests r
	JOIN books b ON b.id = r.book_id
	JOIN users u ON u.id = r.user_id`

func scanRequest(row pgx.Row, req *Request) error {
	return row.Scan(
		&req.ID, &req.BookID, &req.UserID, &req.RequestDate, &req.Status, &req.ApprovedDate,
		&req.DueDate, &req.ReturnDate, &req.Version, &req.BookTitle, &req.UserEmail,
	)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Request, error) {
	var req Request
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := scanRequest(r.db.QueryRow(timeoutCtx, selectRequests+` WHERE r.id = $1`, id), &req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("get loan request: %w", err)
	}
	return req, nil
}

func (r *PostgresRepo) HasActive(ctx context.Context, userID, bookID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM book_requests
			WHERE user_id = $1 AND book_id = $2 AND status IN ('Pending', 'Approved')
		)`

	var exists bool
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, query, userID, bookID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active request: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepo) Create(ctx context.Context, req *Request) error {
	const query = `
		INSERT INTO book_requests (book_id, user_id, request_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, version`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, req.BookID, req.UserID, req.RequestDate, req.Status).
		Scan(&req.ID, &req.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return ErrDuplicateActiveRequest
			case pgForeignKeyViolation:
				return ErrBookNotFound
			}
		}
		return fmt.Errorf("create loan request: %w", err)
	}
	return nil
}

func (r *PostgresRepo) ApplyTransition(ctx context.Context, t Transition) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback(timeoutCtx) }()

	req := t.Request
	tag, err := tx.Exec(timeoutCtx, `
		UPDATE book_requests
		SET status = $3, approved_date = $4, due_date = $5, return_date = $6,
		    version = version + 1
		WHERE id = $1 AND version = $2`,
		req.ID, req.Version, req.Status, req.ApprovedDate, req.DueDate, req.ReturnDate,
	)
	if err != nil {
		return mapTransitionError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrencyConflict
	}

	if t.AvailableDelta != 0 {
		tag, err = tx.Exec(timeoutCtx, `
			UPDATE books
			SET available_quantity = available_quantity + $3,
			    updated_at = NOW(), version = version + 1
			WHERE id = $1 AND version = $2`,
			t.BookID, t.BookVersion, t.AvailableDelta,
		)
		if err != nil {
			return mapTransitionError(err)
		}
		if tag.RowsAffected() == 0 {
			return ErrConcurrencyConflict
		}
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return mapTransitionError(err)
	}
	return nil
}

func mapTransitionError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCheckViolation:
			return ErrUnavailable
		case pgUniqueViolation:
			return ErrDuplicateActiveRequest
		}
	}
	return fmt.Errorf("apply transition: %w", err)
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Request, error) {
	return r.list(ctx, selectRequests+` WHERE r.user_id = $1 ORDER BY r.request_date DESC, r.id`, userID)
}

func (r *PostgresRepo) ListAll(ctx context.Context) ([]Request, error) {
	return r.list(ctx, selectRequests+` ORDER BY r.request_date DESC, r.id`)
}

func (r *PostgresRepo) list(ctx context.Context, query string, args ...any) ([]Request, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list loan requests: %w", err)
	}
	defer rows.Close()

	out := []Request{}
	for rows.Next() {
		var req Request
		if err := scanRequest(rows, &req); err != nil {
			return nil, fmt.Errorf("scan loan request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
