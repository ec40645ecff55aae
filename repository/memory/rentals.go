package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"libraryrental/model"
	"libraryrental/repository"
)

type RentalRepo struct{ s *Store }

func (r *RentalRepo) WithinTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx := &ledgerTx{s: r.s}
	if err := fn(tx); err != nil {
		tx.undo.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.undo.rollback()
		return err
	}
	return nil
}

func (r *RentalRepo) Get(_ context.Context, id uuid.UUID) (*model.RentalView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rt, ok := r.s.rentals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := r.s.viewUnsafe(rt)
	return &v, nil
}

func (r *RentalRepo) FindOpen(_ context.Context, userID, bookID uuid.UUID) (*model.Rental, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rt := r.s.openRentalUnsafe(userID, bookID)
	if rt == nil {
		return nil, repository.ErrNotFound
	}
	return copyRental(rt), nil
}

func (r *RentalRepo) ExtendDue(_ context.Context, id uuid.UUID, days int) (*model.Rental, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rt, ok := r.s.rentals[id]
	if !ok || !rt.IsOpen() {
		return nil, repository.ErrNoRowsAffected
	}
	rt.DueDate = rt.DueDate.AddDate(0, 0, days)
	return copyRental(rt), nil
}

func (r *RentalRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.RentalView, error) {
	return r.list(func(rt *model.Rental) bool { return rt.UserID == userID }), nil
}

func (r *RentalRepo) ListByBook(_ context.Context, bookID uuid.UUID) ([]model.RentalView, error) {
	return r.list(func(rt *model.Rental) bool { return rt.BookID == bookID }), nil
}

func (r *RentalRepo) ListAll(_ context.Context) ([]model.RentalView, error) {
	return r.list(func(*model.Rental) bool { return true }), nil
}

func (r *RentalRepo) ListOpenOverdue(_ context.Context, now time.Time) ([]model.RentalView, error) {
	return r.list(func(rt *model.Rental) bool { return rt.IsOpen() && rt.DueDate.Before(now) }), nil
}

func (r *RentalRepo) list(match func(*model.Rental) bool) []model.RentalView {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.RentalView{}
	for _, rt := range r.s.rentals {
		if match(rt) {
			out = append(out, r.s.viewUnsafe(rt))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RentalDate.Equal(out[j].RentalDate) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].RentalDate.After(out[j].RentalDate)
	})
	return out
}

func (s *Store) viewUnsafe(rt *model.Rental) model.RentalView {
	v := model.RentalView{Rental: *copyRental(rt)}
	if b, ok := s.books[rt.BookID]; ok {
		sum := b.Summary()
		v.Book = &sum
	}
	return v
}

func (s *Store) openRentalUnsafe(userID, bookID uuid.UUID) *model.Rental {
	for _, rt := range s.rentals {
		if rt.UserID == userID && rt.BookID == bookID && rt.IsOpen() {
			return rt
		}
	}
	return nil
}

// ledgerTx runs with Store.mu held by WithinTx.
type ledgerTx struct {
	s    *Store
	undo undoLog
}

func (t *ledgerTx) LockBook(_ context.Context, bookID uuid.UUID) (*model.Book, error) {
	b, ok := t.s.books[bookID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyBook(b), nil
}

func (t *ledgerTx) HasOpenRental(_ context.Context, userID, bookID uuid.UUID) (bool, error) {
	return t.s.openRentalUnsafe(userID, bookID) != nil, nil
}

func (t *ledgerTx) TakeCopy(_ context.Context, bookID uuid.UUID) error {
	b, ok := t.s.books[bookID]
	if !ok || b.AvailableCopies <= 0 {
		return repository.ErrNoRowsAffected
	}
	b.AvailableCopies--
	t.undo.push(func() { b.AvailableCopies++ })
	return nil
}

func (t *ledgerTx) ReleaseCopy(_ context.Context, bookID uuid.UUID) (bool, error) {
	b, ok := t.s.books[bookID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if b.AvailableCopies >= b.TotalCopies {
		return true, nil
	}
	b.AvailableCopies++
	t.undo.push(func() { b.AvailableCopies-- })
	return false, nil
}

func (t *ledgerTx) InsertRental(_ context.Context, rt *model.Rental) error {
	if _, ok := t.s.books[rt.BookID]; !ok {
		return repository.ErrReference
	}
	if _, ok := t.s.users[rt.UserID]; !ok {
		return repository.ErrReference
	}
	if t.s.openRentalUnsafe(rt.UserID, rt.BookID) != nil {
		return repository.ErrDuplicate
	}
	rt.ID = uuid.New()
	t.s.rentals[rt.ID] = copyRental(rt)
	id := rt.ID
	t.undo.push(func() { delete(t.s.rentals, id) })
	return nil
}

func (t *ledgerTx) LockOpenRental(_ context.Context, userID, bookID uuid.UUID) (*model.Rental, error) {
	rt := t.s.openRentalUnsafe(userID, bookID)
	if rt == nil {
		return nil, repository.ErrNotFound
	}
	return copyRental(rt), nil
}

func (t *ledgerTx) LockRental(_ context.Context, rentalID uuid.UUID) (*model.Rental, error) {
	rt, ok := t.s.rentals[rentalID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyRental(rt), nil
}

func (t *ledgerTx) CloseRental(_ context.Context, rentalID uuid.UUID, at time.Time) error {
	rt, ok := t.s.rentals[rentalID]
	if !ok || !rt.IsOpen() {
		return repository.ErrNoRowsAffected
	}
	ts := at
	rt.ReturnDate = &ts
	t.undo.push(func() { rt.ReturnDate = nil })
	return nil
}
