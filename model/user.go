package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type UserStatus string

const (
	UserActive UserStatus = "ACTIVE"
	UserBanned UserStatus = "BANNED"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Matricula    *string    `json:"matricula,omitempty"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (u *User) IsBanned() bool { return u.Status == UserBanned }

// UserProfile is the caller's account with their rental history.
type UserProfile struct {
	User
	Rentals []RentalView `json:"rentals"`
}

// UserStatusReq bans or reinstates an account.
// swagger:model UserStatusReq
type UserStatusReq struct {
	Status UserStatus `json:"status" validate:"required,oneof=ACTIVE BANNED"`
}

// model/user.go

// SignupReq represents user registration payload
// swagger:model SignupReq
type SignupReq struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Name      string `json:"name" validate:"omitempty,max=255"`
	Matricula string `json:"matricula" validate:"omitempty,max=64"`
}

// SigninReq represents login payload
// swagger:model SigninReq
type SigninReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
