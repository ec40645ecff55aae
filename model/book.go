// model/book.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type Book struct {
	ID              uuid.UUID `json:"id"`
	AdminID         uuid.UUID `json:"admin_id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Description     string    `json:"description,omitempty"`
	ImageURL        *string   `json:"image_url,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	IsHidden        bool      `json:"is_hidden"`
	LoanEnabled     bool      `json:"loan_enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Loanable reports whether the flags allow the book to be rented at all.
func (b Book) Loanable() bool { return !b.IsHidden && b.LoanEnabled }

// BookSummary is the slice of a book embedded in rental views.
type BookSummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	ISBN   string    `json:"isbn"`
}

func (b Book) Summary() BookSummary {
	return BookSummary{ID: b.ID, Title: b.Title, Author: b.Author, ISBN: b.ISBN}
}

// BookStatus is a book as seen by one reader.
type BookStatus struct {
	Book
	IsRentedByUser bool        `json:"is_rented_by_user"`
	RentalInfo     *RentalInfo `json:"rental_info"`
}

type RentalInfo struct {
	RentalID   uuid.UUID `json:"rental_id"`
	RentalDate time.Time `json:"rental_date"`
	DueDate    time.Time `json:"due_date"`
	IsOverdue  bool      `json:"is_overdue"`
}

// CreateBookReq is the admin payload for a new catalog entry.
// swagger:model CreateBookReq
type CreateBookReq struct {
	Title           string `json:"title" validate:"required,max=255"`
	Author          string `json:"author" validate:"required,max=255"`
	ISBN            string `json:"isbn" validate:"required,max=32"`
	Description     string `json:"description" validate:"omitempty,max=4000"`
	TotalCopies     int    `json:"total_copies" validate:"gte=0"`
	AvailableCopies *int   `json:"available_copies" validate:"omitempty,gte=0"`
	IsHidden        bool   `json:"is_hidden"`
	LoanEnabled     *bool  `json:"loan_enabled"`
}

// UpdateBookReq carries only the fields being changed.
// swagger:model UpdateBookReq
type UpdateBookReq struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=255"`
	Author          *string `json:"author" validate:"omitempty,min=1,max=255"`
	ISBN            *string `json:"isbn" validate:"omitempty,min=1,max=32"`
	Description     *string `json:"description" validate:"omitempty,max=4000"`
	TotalCopies     *int    `json:"total_copies" validate:"omitempty,gte=0"`
	AvailableCopies *int    `json:"available_copies" validate:"omitempty,gte=0"`
}

// BookFlagsReq toggles visibility and lending.
// swagger:model BookFlagsReq
type BookFlagsReq struct {
	IsHidden    *bool `json:"is_hidden"`
	LoanEnabled *bool `json:"loan_enabled"`
}
