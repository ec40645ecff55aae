// repository/rental/rentalRepository.go
package rentalrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"libraryrental/model"
	"libraryrental/repository"
	"libraryrental/util/database"
)

const rentalCols = `r.id, r.user_id, r.book_id, r.rental_date, r.due_date, r.return_date`

type Repo struct {
	db *database.DB
}

func New(db *database.DB) *Repo { return &Repo{db: db} }

// WithinTx hands fn a LedgerTx bound to one database transaction.
func (r *Repo) WithinTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		return fn(&ledgerTx{tx: tx})
	})
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (*model.RentalView, error) {
	const q = `
		SELECT ` + rentalCols + `, b.id, b.title, b.author, b.isbn
		FROM rentals r
		JOIN books b ON b.id = r.book_id
		WHERE r.id = $1`
	v, err := scanView(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return v, nil
}

func (r *Repo) FindOpen(ctx context.Context, userID, bookID uuid.UUID) (*model.Rental, error) {
	const q = `
		SELECT ` + rentalCols + `
		FROM rentals r
		WHERE r.user_id = $1
		AND r.book_id = $2
		AND r.return_date IS NULL`
	rt, err := scanRental(r.db.Pool.QueryRow(ctx, q, userID, bookID))
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return rt, nil
}

// ExtendDue pushes the due date of an open rental; ErrNoRowsAffected when it
// is missing or already returned.
func (r *Repo) ExtendDue(ctx context.Context, id uuid.UUID, days int) (*model.Rental, error) {
	const q = `
		UPDATE rentals r
		SET due_date = r.due_date + make_interval(days => $2)
		WHERE r.id = $1
		AND r.return_date IS NULL
		RETURNING ` + rentalCols
	rt, err := scanRental(r.db.Pool.QueryRow(ctx, q, id, days))
	if err != nil {
		err = repository.MapPgError(err)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNoRowsAffected
		}
		return nil, err
	}
	return rt, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RentalView, error) {
	return r.list(ctx, `WHERE r.user_id = $1`, userID)
}

func (r *Repo) ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.RentalView, error) {
	return r.list(ctx, `WHERE r.book_id = $1`, bookID)
}

func (r *Repo) ListAll(ctx context.Context) ([]model.RentalView, error) {
	return r.list(ctx, ``)
}

func (r *Repo) ListOpenOverdue(ctx context.Context, now time.Time) ([]model.RentalView, error) {
	return r.list(ctx, `WHERE r.return_date IS NULL AND r.due_date < $1`, now)
}

func (r *Repo) list(ctx context.Context, where string, args ...any) ([]model.RentalView, error) {
	q := `
		SELECT ` + rentalCols + `, b.id, b.title, b.author, b.isbn
		FROM rentals r
		JOIN books b ON b.id = r.book_id
		` + where + `
		ORDER BY r.rental_date DESC, r.id DESC`
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RentalView{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// ledgerTx

type ledgerTx struct {
	tx pgx.Tx
}

func (t *ledgerTx) LockBook(ctx context.Context, bookID uuid.UUID) (*model.Book, error) {
	const q = `
		SELECT id, admin_id, title, author, isbn, description, image_url,
			total_copies, available_copies, is_hidden, loan_enabled, created_at, updated_at
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var b model.Book
	err := t.tx.QueryRow(ctx, q, bookID).Scan(
		&b.ID, &b.AdminID, &b.Title, &b.Author, &b.ISBN, &b.Description, &b.ImageURL,
		&b.TotalCopies, &b.AvailableCopies, &b.IsHidden, &b.LoanEnabled, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return &b, nil
}

func (t *ledgerTx) HasOpenRental(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM rentals
			WHERE user_id = $1
			AND book_id = $2
			AND return_date IS NULL
		)`
	var exists bool
	err := t.tx.QueryRow(ctx, q, userID, bookID).Scan(&exists)
	return exists, err
}

func (t *ledgerTx) TakeCopy(ctx context.Context, bookID uuid.UUID) error {
	// Guard: never below zero.
	const q = `
		UPDATE books
		SET available_copies = available_copies - 1,
			updated_at = NOW()
		WHERE id = $1
		AND available_copies > 0`
	tag, err := t.tx.Exec(ctx, q, bookID)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNoRowsAffected
	}
	return nil
}

func (t *ledgerTx) ReleaseCopy(ctx context.Context, bookID uuid.UUID) (bool, error) {
	// Guard: never above total. The book row is already locked by this tx,
	// so zero affected rows means the counter sits at the cap.
	const q = `
		UPDATE books
		SET available_copies = available_copies + 1,
			updated_at = NOW()
		WHERE id = $1
		AND available_copies < total_copies`
	tag, err := t.tx.Exec(ctx, q, bookID)
	if err != nil {
		return false, repository.MapPgError(err)
	}
	return tag.RowsAffected() == 0, nil
}

func (t *ledgerTx) InsertRental(ctx context.Context, rt *model.Rental) error {
	const q = `
		INSERT INTO rentals (user_id, book_id, rental_date, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := t.tx.QueryRow(ctx, q, rt.UserID, rt.BookID, rt.RentalDate, rt.DueDate).Scan(&rt.ID); err != nil {
		return repository.MapPgError(err)
	}
	return nil
}

func (t *ledgerTx) LockOpenRental(ctx context.Context, userID, bookID uuid.UUID) (*model.Rental, error) {
	const q = `
		SELECT ` + rentalCols + `
		FROM rentals r
		WHERE r.user_id = $1
		AND r.book_id = $2
		AND r.return_date IS NULL
		FOR UPDATE`
	rt, err := scanRental(t.tx.QueryRow(ctx, q, userID, bookID))
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return rt, nil
}

func (t *ledgerTx) LockRental(ctx context.Context, rentalID uuid.UUID) (*model.Rental, error) {
	const q = `
		SELECT ` + rentalCols + `
		FROM rentals r
		WHERE r.id = $1
		FOR UPDATE`
	rt, err := scanRental(t.tx.QueryRow(ctx, q, rentalID))
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return rt, nil
}

func (t *ledgerTx) CloseRental(ctx context.Context, rentalID uuid.UUID, at time.Time) error {
	const q = `
		UPDATE rentals
		SET return_date = $2
		WHERE id = $1
		AND return_date IS NULL`
	tag, err := t.tx.Exec(ctx, q, rentalID, at)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNoRowsAffected
	}
	return nil
}

// scanning

func scanRental(row pgx.Row) (*model.Rental, error) {
	var rt model.Rental
	if err := row.Scan(&rt.ID, &rt.UserID, &rt.BookID, &rt.RentalDate, &rt.DueDate, &rt.ReturnDate); err != nil {
		return nil, err
	}
	return &rt, nil
}

func scanView(row pgx.Row) (*model.RentalView, error) {
	var v model.RentalView
	var b model.BookSummary
	if err := row.Scan(
		&v.ID, &v.UserID, &v.BookID, &v.RentalDate, &v.DueDate, &v.ReturnDate,
		&b.ID, &b.Title, &b.Author, &b.ISBN,
	); err != nil {
		return nil, err
	}
	v.Book = &b
	return &v, nil
}
