// Package repository holds what every store implementation shares: the
// sentinel errors services switch on and the transactional ledger port.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"libraryrental/model"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("unique constraint violated")
	ErrReference      = errors.New("foreign key constraint violated")
	ErrNoRowsAffected = errors.New("guarded update affected no rows")
	ErrCheck          = errors.New("check constraint violated")
)

// LedgerTx is one open transaction against the book/rental store. Every
// method runs inside the same transaction; the implementation commits only
// when the enclosing WithinTx callback returns nil.
type LedgerTx interface {
	// LockBook reads the book row and holds it until the transaction ends.
	LockBook(ctx context.Context, bookID uuid.UUID) (*model.Book, error)
	HasOpenRental(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	// TakeCopy decrements available copies; ErrNoRowsAffected when none are left.
	TakeCopy(ctx context.Context, bookID uuid.UUID) error
	// ReleaseCopy increments available copies, saturating at total copies.
	// capped is true when the increment was absorbed by the cap.
	ReleaseCopy(ctx context.Context, bookID uuid.UUID) (capped bool, err error)
	// InsertRental fills in r.ID; ErrDuplicate when the pair already has an open rental.
	InsertRental(ctx context.Context, r *model.Rental) error
	LockOpenRental(ctx context.Context, userID, bookID uuid.UUID) (*model.Rental, error)
	LockRental(ctx context.Context, rentalID uuid.UUID) (*model.Rental, error)
	// CloseRental sets return_date on an open rental; ErrNoRowsAffected when it was already closed.
	CloseRental(ctx context.Context, rentalID uuid.UUID, at time.Time) error
}

// MapPgError folds driver errors into the sentinels above.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return errors.Join(ErrDuplicate, err)
		case pgerrcode.ForeignKeyViolation:
			return errors.Join(ErrReference, err)
		case pgerrcode.CheckViolation:
			return errors.Join(ErrCheck, err)
		}
	}
	return err
}
