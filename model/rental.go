// model/rental.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLoanPeriod is used when a rent request carries no due date.
const DefaultLoanPeriod = 7 * 24 * time.Hour

type Rental struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	BookID     uuid.UUID  `json:"book_id"`
	RentalDate time.Time  `json:"rental_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
}

// IsOpen reports whether the copy is still checked out.
func (r Rental) IsOpen() bool { return r.ReturnDate == nil }

// IsOverdue is computed on read and never persisted.
func (r Rental) IsOverdue(now time.Time) bool {
	return r.IsOpen() && now.After(r.DueDate)
}

// RentalView is a rental row joined with its book, as returned by listings.
type RentalView struct {
	Rental
	Book      *BookSummary `json:"book,omitempty"`
	IsOverdue bool         `json:"is_overdue"`
}

func NewRentalView(r Rental, b *BookSummary, now time.Time) RentalView {
	return RentalView{Rental: r, Book: b, IsOverdue: r.IsOverdue(now)}
}

// RentReq is the body of POST /books/:id/rent.
// swagger:model RentReq
type RentReq struct {
	DueDate *time.Time `json:"due_date"`
}

// AdminRentReq is the body of POST /rentals.
// swagger:model AdminRentReq
type AdminRentReq struct {
	UserID  uuid.UUID  `json:"user_id" validate:"required"`
	BookID  uuid.UUID  `json:"book_id" validate:"required"`
	DueDate *time.Time `json:"due_date"`
}

// RenewReq is the body of PATCH /rentals/:id/renew; zero means the default period.
// swagger:model RenewReq
type RenewReq struct {
	AdditionalDays int `json:"additional_days" validate:"gte=0"`
}
