package usersvc

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"libraryrental/model"
	"libraryrental/repository/memory"
	"libraryrental/service/svcerr"
)

type rentalListerMock struct {
	myRentalsFn func(ctx context.Context, userID uuid.UUID) ([]model.RentalView, error)
}

func (m *rentalListerMock) MyRentals(ctx context.Context, userID uuid.UUID) ([]model.RentalView, error) {
	if m.myRentalsFn == nil {
		return []model.RentalView{}, nil
	}
	return m.myRentalsFn(ctx, userID)
}

func seedUser(t *testing.T, store *memory.Store, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: "u", Email: uuid.NewString() + "@example.com", Role: role}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	u := seedUser(t, store, model.RoleUser)
	rentalID := uuid.New()
	svc := New(store.Users(), &rentalListerMock{
		myRentalsFn: func(ctx context.Context, userID uuid.UUID) ([]model.RentalView, error) {
			require.Equal(t, u.ID, userID)
			return []model.RentalView{{Rental: model.Rental{ID: rentalID, UserID: userID}}}, nil
		},
	})

	p, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, p.Email)
	require.Equal(t, model.UserActive, p.Status)
	require.Len(t, p.Rentals, 1)
	require.Equal(t, rentalID, p.Rentals[0].ID)

	_, err = svc.Me(ctx, uuid.New())
	require.Equal(t, svcerr.NotFound, svcerr.Code(err))
}

func TestMe_RentalsError(t *testing.T) {
	store := memory.NewStore()
	u := seedUser(t, store, model.RoleUser)
	svc := New(store.Users(), &rentalListerMock{
		myRentalsFn: func(context.Context, uuid.UUID) ([]model.RentalView, error) {
			return nil, errors.New("db down")
		},
	})

	_, err := svc.Me(context.Background(), u.ID)
	require.Error(t, err)
}

func TestSetStatusAndEnsureActive(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	admin := seedUser(t, store, model.RoleAdmin)
	reader := seedUser(t, store, model.RoleUser)
	svc := New(store.Users(), &rentalListerMock{})

	require.NoError(t, svc.EnsureActive(ctx, reader.ID))

	u, err := svc.SetStatus(ctx, admin.ID, reader.ID, model.UserBanned)
	require.NoError(t, err)
	require.True(t, u.IsBanned())
	require.Equal(t, svcerr.Forbidden, svcerr.Code(svc.EnsureActive(ctx, reader.ID)))

	_, err = svc.SetStatus(ctx, admin.ID, reader.ID, model.UserActive)
	require.NoError(t, err)
	require.NoError(t, svc.EnsureActive(ctx, reader.ID))

	_, err = svc.SetStatus(ctx, admin.ID, admin.ID, model.UserBanned)
	require.Equal(t, svcerr.InvalidOperation, svcerr.Code(err))

	_, err = svc.SetStatus(ctx, admin.ID, reader.ID, "SUSPENDED")
	require.Equal(t, svcerr.InvalidOperation, svcerr.Code(err))

	_, err = svc.SetStatus(ctx, admin.ID, uuid.New(), model.UserBanned)
	require.Equal(t, svcerr.NotFound, svcerr.Code(err))

	require.Equal(t, svcerr.Unauthorized, svcerr.Code(svc.EnsureActive(ctx, uuid.New())))

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}
