// Package memory is an in-process store with the same contracts as the
// PostgreSQL repositories. One mutex guards all tables; a ledger transaction
// holds it for its whole lifetime, so transactions are serial and an undo log
// gives them rollback.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"libraryrental/model"
)

type Store struct {
	mu            sync.RWMutex
	books         map[uuid.UUID]*model.Book
	rentals       map[uuid.UUID]*model.Rental
	users         map[uuid.UUID]*model.User
	notifications map[uuid.UUID]*model.Notification
}

func NewStore() *Store {
	return &Store{
		books:         map[uuid.UUID]*model.Book{},
		rentals:       map[uuid.UUID]*model.Rental{},
		users:         map[uuid.UUID]*model.User{},
		notifications: map[uuid.UUID]*model.Notification{},
	}
}

func (s *Store) Books() *BookRepo                 { return &BookRepo{s: s} }
func (s *Store) Rentals() *RentalRepo             { return &RentalRepo{s: s} }
func (s *Store) Users() *UserRepo                 { return &UserRepo{s: s} }
func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{s: s} }

// undoLog records compensations in the order writes happened.
type undoLog []func()

func (u *undoLog) push(fn func()) { *u = append(*u, fn) }

func (u undoLog) rollback() {
	for i := len(u) - 1; i >= 0; i-- {
		u[i]()
	}
}

func copyBook(b *model.Book) *model.Book {
	c := *b
	if b.ImageURL != nil {
		s := *b.ImageURL
		c.ImageURL = &s
	}
	return &c
}

func copyRental(r *model.Rental) *model.Rental {
	c := *r
	if r.ReturnDate != nil {
		t := *r.ReturnDate
		c.ReturnDate = &t
	}
	return &c
}
