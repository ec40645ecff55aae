package usersvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"libraryrental/model"
	"libraryrental/repository"
	"libraryrental/service/svcerr"
)

type Repo interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) (*model.User, error)
}

// RentalLister supplies a reader's rentals for the profile view.
type RentalLister interface {
	MyRentals(ctx context.Context, userID uuid.UUID) ([]model.RentalView, error)
}

type Service interface {
	Me(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error)
	List(ctx context.Context) ([]model.User, error)
	SetStatus(ctx context.Context, adminID, userID uuid.UUID, status model.UserStatus) (*model.User, error)
	// EnsureActive fails with Unauthorized for unknown accounts and
	// Forbidden for banned ones.
	EnsureActive(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	r       Repo
	rentals RentalLister
}

func New(r Repo, rentals RentalLister) Service {
	return &service{r: r, rentals: rentals}
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	u, err := s.byID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rentals, err := s.rentals.MyRentals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.UserProfile{User: *u, Rentals: rentals}, nil
}

func (s *service) List(ctx context.Context) ([]model.User, error) {
	users, err := s.r.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *service) SetStatus(ctx context.Context, adminID, userID uuid.UUID, status model.UserStatus) (*model.User, error) {
	if status != model.UserActive && status != model.UserBanned {
		return nil, svcerr.New(svcerr.InvalidOperation, "unknown user status %q", status)
	}
	if adminID == userID {
		return nil, svcerr.NewInvalid("cannot change your own status")
	}
	u, err := s.r.SetStatus(ctx, userID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcerr.NewNotFound("user not found")
		}
		return nil, fmt.Errorf("set user status: %w", err)
	}
	return u, nil
}

func (s *service) EnsureActive(ctx context.Context, userID uuid.UUID) error {
	u, err := s.r.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return svcerr.NewUnauthorized("user not found")
		}
		return fmt.Errorf("check user: %w", err)
	}
	if u.IsBanned() {
		return svcerr.NewForbidden("user is banned")
	}
	return nil
}

func (s *service) byID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcerr.NewNotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
