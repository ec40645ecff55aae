package bookrepo

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"libraryrental/model"
	"libraryrental/repository"
	"libraryrental/util/database"
)

const (
	dialectPostgres = "postgres"
	tableBooks      = "books"
)

var bookColumns = []any{
	"id", "admin_id", "title", "author", "isbn", "description", "image_url",
	"total_copies", "available_copies", "is_hidden", "loan_enabled", "created_at", "updated_at",
}

type Repo struct{ db *database.DB }

func New(db *database.DB) *Repo { return &Repo{db} }

func (r *Repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
INSERT INTO books (admin_id, title, author, isbn, description, image_url,
                   total_copies, available_copies, is_hidden, loan_enabled)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id, created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q,
		b.AdminID, b.Title, b.Author, b.ISBN, b.Description, b.ImageURL,
		b.TotalCopies, b.AvailableCopies, b.IsHidden, b.LoanEnabled,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return repository.MapPgError(err)
}

func (r *Repo) List(ctx context.Context, includeHidden bool) ([]model.Book, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(tableBooks).
		Select(bookColumns...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc())
	if !includeHidden {
		ds = ds.Where(goqu.C("is_hidden").IsFalse())
	}
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build book list query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *Repo) Detail(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	q, args, err := goqu.Dialect(dialectPostgres).
		From(tableBooks).
		Select(bookColumns...).
		Where(goqu.C("id").Eq(id.String())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build book detail query: %w", err)
	}
	b, err := scanBook(r.db.Pool.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return b, nil
}

// Update locks the row, lets mutate change the loaded book and writes the
// result back in the same transaction.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, mutate func(b *model.Book) error) (*model.Book, error) {
	var out *model.Book
	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		b, err := lockBook(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := mutate(b); err != nil {
			return err
		}

		q, args, err := goqu.Dialect(dialectPostgres).
			Update(tableBooks).
			Set(goqu.Record{
				"title":            b.Title,
				"author":           b.Author,
				"isbn":             b.ISBN,
				"description":      b.Description,
				"image_url":        nullable(b.ImageURL),
				"total_copies":     b.TotalCopies,
				"available_copies": b.AvailableCopies,
				"is_hidden":        b.IsHidden,
				"loan_enabled":     b.LoanEnabled,
				"updated_at":       goqu.L("NOW()"),
			}).
			Where(goqu.C("id").Eq(id.String())).
			Returning(bookColumns...).
			Prepared(true).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build book update query: %w", err)
		}
		out, err = scanBook(tx.QueryRow(ctx, q, args...))
		return repository.MapPgError(err)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteUnreferenced removes the book only when no rental row points at it.
// It returns the number of blocking rentals otherwise.
func (r *Repo) DeleteUnreferenced(ctx context.Context, id uuid.UUID) (int64, error) {
	var blocking int64
	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := lockBook(ctx, tx, id); err != nil {
			return err
		}
		const qCount = `SELECT COUNT(*) FROM rentals WHERE book_id = $1`
		if err := tx.QueryRow(ctx, qCount, id).Scan(&blocking); err != nil {
			return err
		}
		if blocking > 0 {
			return nil
		}
		const qDel = `DELETE FROM books WHERE id = $1`
		_, err := tx.Exec(ctx, qDel, id)
		return repository.MapPgError(err)
	})
	return blocking, err
}

func lockBook(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Book, error) {
	q, args, err := goqu.Dialect(dialectPostgres).
		From(tableBooks).
		Select(bookColumns...).
		Where(goqu.C("id").Eq(id.String())).
		ForUpdate(exp.Wait).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build book lock query: %w", err)
	}
	b, err := scanBook(tx.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return b, nil
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	if err := row.Scan(
		&b.ID, &b.AdminID, &b.Title, &b.Author, &b.ISBN, &b.Description, &b.ImageURL,
		&b.TotalCopies, &b.AvailableCopies, &b.IsHidden, &b.LoanEnabled, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
