package rental

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"libraryrental/model"
	"libraryrental/repository"
	"libraryrental/service/svcerr"
)

const (
	DefaultRenewDays = 7
	MaxRenewDays     = 90
)

type Repo interface {
	WithinTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error

	Get(ctx context.Context, id uuid.UUID) (*model.RentalView, error)
	FindOpen(ctx context.Context, userID, bookID uuid.UUID) (*model.Rental, error)
	ExtendDue(ctx context.Context, id uuid.UUID, days int) (*model.Rental, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RentalView, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.RentalView, error)
	ListAll(ctx context.Context) ([]model.RentalView, error)
	ListOpenOverdue(ctx context.Context, now time.Time) ([]model.RentalView, error)
}

type BookReader interface {
	Detail(ctx context.Context, id uuid.UUID) (*model.Book, error)
}

// Notifier is told about committed ledger changes. Implementations must not
// block and must not fail the caller. NotifyOverdue reports whether the
// reminder was accepted for delivery.
type Notifier interface {
	NotifyRental(r model.Rental, b model.BookSummary)
	NotifyReturn(r model.Rental, b model.BookSummary)
	NotifyOverdue(r model.Rental, b model.BookSummary) bool
}

type Service interface {
	Rent(ctx context.Context, userID, bookID uuid.UUID, due *time.Time) (*model.Rental, error)
	Return(ctx context.Context, userID, bookID uuid.UUID) (*model.Rental, error)
	ReturnRental(ctx context.Context, rentalID uuid.UUID) (*model.Rental, error)
	Renew(ctx context.Context, rentalID uuid.UUID, additionalDays int) (*model.Rental, error)

	Status(ctx context.Context, userID, bookID uuid.UUID) (*model.BookStatus, error)
	Get(ctx context.Context, rentalID uuid.UUID) (*model.RentalView, error)
	MyRentals(ctx context.Context, userID uuid.UUID) ([]model.RentalView, error)
	ByUser(ctx context.Context, userID uuid.UUID) ([]model.RentalView, error)
	ByBook(ctx context.Context, bookID uuid.UUID) ([]model.RentalView, error)
	All(ctx context.Context) ([]model.RentalView, error)
	Overdue(ctx context.Context) ([]model.RentalView, error)
}

type Option func(*service)

// WithClock replaces time.Now; used by tests.
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

type service struct {
	r      Repo
	books  BookReader
	notify Notifier
	now    func() time.Time
	log    *slog.Logger
}

func New(r Repo, books BookReader, notify Notifier, opts ...Option) Service {
	s := &service{
		r:      r,
		books:  books,
		notify: notify,
		now:    func() time.Time { return time.Now().UTC() },
		log:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Rent takes one copy of the book for the user. The book row is locked for
// the whole check-and-write so concurrent rents of the last copy serialise.
func (s *service) Rent(ctx context.Context, userID, bookID uuid.UUID, due *time.Time) (*model.Rental, error) {
	now := s.now()
	dueDate := now.Add(model.DefaultLoanPeriod)
	if due != nil {
		if !due.After(now) {
			return nil, svcerr.NewInvalid("due date must be in the future")
		}
		dueDate = due.UTC()
	}

	var (
		rental *model.Rental
		book   model.BookSummary
	)
	err := s.r.WithinTx(ctx, func(tx repository.LedgerTx) error {
		b, err := tx.LockBook(ctx, bookID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return svcerr.NewNotFound("book not found")
			}
			return err
		}
		if !b.Loanable() {
			return svcerr.NewInvalid("book is not available for loan")
		}
		if b.AvailableCopies <= 0 {
			return svcerr.NewExhausted("no copies available")
		}
		open, err := tx.HasOpenRental(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if open {
			return svcerr.NewConflict("user already has this book rented")
		}

		if err := tx.TakeCopy(ctx, bookID); err != nil {
			if errors.Is(err, repository.ErrNoRowsAffected) {
				return svcerr.NewExhausted("no copies available")
			}
			return err
		}
		rt := &model.Rental{UserID: userID, BookID: bookID, RentalDate: now, DueDate: dueDate}
		if err := tx.InsertRental(ctx, rt); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return svcerr.NewConflict("user already has this book rented")
			case errors.Is(err, repository.ErrReference):
				return svcerr.NewNotFound("user not found")
			}
			return err
		}
		rental, book = rt, b.Summary()
		return nil
	})
	if err != nil {
		return nil, wrap("rent", err)
	}

	s.notify.NotifyRental(*rental, book)
	return rental, nil
}

// Return closes the user's open rental of the book and puts the copy back.
func (s *service) Return(ctx context.Context, userID, bookID uuid.UUID) (*model.Rental, error) {
	var (
		rental *model.Rental
		book   model.BookSummary
	)
	err := s.r.WithinTx(ctx, func(tx repository.LedgerTx) error {
		b, err := tx.LockBook(ctx, bookID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return svcerr.NewNotFound("no active rental found for this book")
			}
			return err
		}
		rt, err := tx.LockOpenRental(ctx, userID, bookID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return svcerr.NewNotFound("no active rental found for this book")
			}
			return err
		}
		if err := s.close(ctx, tx, b, rt); err != nil {
			return err
		}
		rental, book = rt, b.Summary()
		return nil
	})
	if err != nil {
		return nil, wrap("return", err)
	}

	s.notify.NotifyReturn(*rental, book)
	return rental, nil
}

// ReturnRental is the admin variant of Return addressed by rental id.
func (s *service) ReturnRental(ctx context.Context, rentalID uuid.UUID) (*model.Rental, error) {
	// The book id is needed first to keep the book-then-rental lock order.
	v, err := s.r.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcerr.NewNotFound("rental not found")
		}
		return nil, fmt.Errorf("return rental: %w", err)
	}
	if !v.IsOpen() {
		return nil, svcerr.NewInvalid("book already returned")
	}

	var (
		rental *model.Rental
		book   model.BookSummary
	)
	err = s.r.WithinTx(ctx, func(tx repository.LedgerTx) error {
		b, err := tx.LockBook(ctx, v.BookID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return svcerr.NewNotFound("rental not found")
			}
			return err
		}
		rt, err := tx.LockRental(ctx, rentalID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return svcerr.NewNotFound("rental not found")
			}
			return err
		}
		if !rt.IsOpen() {
			return svcerr.NewInvalid("book already returned")
		}
		if err := s.close(ctx, tx, b, rt); err != nil {
			return err
		}
		rental, book = rt, b.Summary()
		return nil
	})
	if err != nil {
		return nil, wrap("return rental", err)
	}

	s.notify.NotifyReturn(*rental, book)
	return rental, nil
}

func (s *service) close(ctx context.Context, tx repository.LedgerTx, b *model.Book, rt *model.Rental) error {
	at := s.now()
	if err := tx.CloseRental(ctx, rt.ID, at); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return svcerr.NewInvalid("book already returned")
		}
		return err
	}
	rt.ReturnDate = &at

	capped, err := tx.ReleaseCopy(ctx, b.ID)
	if err != nil {
		return err
	}
	if capped {
		s.log.Warn("return did not increment available copies: already at total",
			"book_id", b.ID, "rental_id", rt.ID, "total_copies", b.TotalCopies)
	}
	return nil
}

// Renew extends the due date of an open rental. Inventory is untouched.
func (s *service) Renew(ctx context.Context, rentalID uuid.UUID, additionalDays int) (*model.Rental, error) {
	if additionalDays <= 0 {
		additionalDays = DefaultRenewDays
	}
	if additionalDays > MaxRenewDays {
		return nil, svcerr.New(svcerr.InvalidOperation, "cannot renew for more than %d days", MaxRenewDays)
	}

	v, err := s.r.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcerr.NewNotFound("rental not found")
		}
		return nil, fmt.Errorf("renew: %w", err)
	}
	if !v.IsOpen() {
		return nil, svcerr.NewInvalid("cannot renew a returned rental")
	}

	rt, err := s.r.ExtendDue(ctx, rentalID, additionalDays)
	if err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return nil, svcerr.NewInvalid("cannot renew a returned rental")
		}
		return nil, fmt.Errorf("renew: %w", err)
	}
	return rt, nil
}

func (s *service) Status(ctx context.Context, userID, bookID uuid.UUID) (*model.BookStatus, error) {
	b, err := s.books.Detail(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcerr.NewNotFound("book not found")
		}
		return nil, fmt.Errorf("status: %w", err)
	}
	st := &model.BookStatus{Book: *b}

	rt, err := s.r.FindOpen(ctx, userID, bookID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return st, nil
	case err != nil:
		return nil, fmt.Errorf("status: %w", err)
	}
	st.IsRentedByUser = true
	st.RentalInfo = &model.RentalInfo{
		RentalID:   rt.ID,
		RentalDate: rt.RentalDate,
		DueDate:    rt.DueDate,
		IsOverdue:  rt.IsOverdue(s.now()),
	}
	return st, nil
}

func (s *service) Get(ctx context.Context, rentalID uuid.UUID) (*model.RentalView, error) {
	v, err := s.r.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcerr.NewNotFound("rental not found")
		}
		return nil, fmt.Errorf("get rental: %w", err)
	}
	v.IsOverdue = v.Rental.IsOverdue(s.now())
	return v, nil
}

func (s *service) MyRentals(ctx context.Context, userID uuid.UUID) ([]model.RentalView, error) {
	return s.ByUser(ctx, userID)
}

func (s *service) ByUser(ctx context.Context, userID uuid.UUID) ([]model.RentalView, error) {
	return s.views(s.r.ListByUser(ctx, userID))
}

func (s *service) ByBook(ctx context.Context, bookID uuid.UUID) ([]model.RentalView, error) {
	return s.views(s.r.ListByBook(ctx, bookID))
}

func (s *service) All(ctx context.Context) ([]model.RentalView, error) {
	return s.views(s.r.ListAll(ctx))
}

func (s *service) Overdue(ctx context.Context) ([]model.RentalView, error) {
	return s.views(s.r.ListOpenOverdue(ctx, s.now()))
}

// views stamps is_overdue against one clock reading.
func (s *service) views(vs []model.RentalView, err error) ([]model.RentalView, error) {
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	now := s.now()
	for i := range vs {
		vs[i].IsOverdue = vs[i].Rental.IsOverdue(now)
	}
	return vs, nil
}

// wrap keeps coded errors untouched and annotates the rest.
func wrap(op string, err error) error {
	if svcerr.Code(err) != "" {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
