package rentalrepo_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryrental/model"
	bookrepo "libraryrental/repository/book"
	rentalrepo "libraryrental/repository/rental"
	userrepo "libraryrental/repository/user"
	rentalsvc "libraryrental/service/rental"
	"libraryrental/service/svcerr"
	"libraryrental/util/database"
)

type nopNotifier struct{}

func (nopNotifier) NotifyRental(model.Rental, model.BookSummary)       {}
func (nopNotifier) NotifyReturn(model.Rental, model.BookSummary)       {}
func (nopNotifier) NotifyOverdue(model.Rental, model.BookSummary) bool { return true }

// openDB connects to TEST_DATABASE_URL or skips.
func openDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := database.New(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(db.Close)
	return db
}

func newUser(t *testing.T, db *database.DB, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: "u", Email: uuid.NewString() + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, userrepo.New(db).Create(context.Background(), u))
	return u
}

func newBook(t *testing.T, db *database.DB, copies int) *model.Book {
	t.Helper()
	admin := newUser(t, db, model.RoleAdmin)
	b := &model.Book{
		AdminID: admin.ID, Title: "Dune", Author: "Herbert", ISBN: uuid.NewString(),
		TotalCopies: copies, AvailableCopies: copies, LoanEnabled: true,
	}
	require.NoError(t, bookrepo.New(db).Create(context.Background(), b))
	return b
}

func TestConcurrentRentsOfLastCopies(t *testing.T) {
	db := openDB(t)
	books := bookrepo.New(db)
	svc := rentalsvc.New(rentalrepo.New(db), books, nopNotifier{})
	ctx := context.Background()

	const copies, readers = 3, 20
	b := newBook(t, db, copies)
	users := make([]*model.User, readers)
	for i := range users {
		users[i] = newUser(t, db, model.RoleUser)
	}

	var ok, exhausted atomic.Int32
	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u *model.User) {
			defer wg.Done()
			_, err := svc.Rent(ctx, u.ID, b.ID, nil)
			switch {
			case err == nil:
				ok.Add(1)
			case svcerr.Code(err) == svcerr.ResourceExhausted:
				exhausted.Add(1)
			default:
				assert.NoError(t, err)
			}
		}(u)
	}
	wg.Wait()

	require.EqualValues(t, copies, ok.Load())
	require.EqualValues(t, readers-copies, exhausted.Load())

	got, err := books.Detail(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.AvailableCopies)

	open, err := svc.ByBook(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, open, copies)
}

func TestConcurrentRentsBySameReader(t *testing.T) {
	db := openDB(t)
	books := bookrepo.New(db)
	svc := rentalsvc.New(rentalrepo.New(db), books, nopNotifier{})
	ctx := context.Background()

	b := newBook(t, db, 5)
	u := newUser(t, db, model.RoleUser)

	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Rent(ctx, u.ID, b.ID, nil)
			if err == nil {
				ok.Add(1)
				return
			}
			assert.Equal(t, svcerr.Conflict, svcerr.Code(err), err)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, ok.Load())
	got, err := books.Detail(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, 4, got.AvailableCopies)
}

func TestRentReturnRenew(t *testing.T) {
	db := openDB(t)
	books := bookrepo.New(db)
	svc := rentalsvc.New(rentalrepo.New(db), books, nopNotifier{})
	ctx := context.Background()

	b := newBook(t, db, 1)
	u := newUser(t, db, model.RoleUser)

	r, err := svc.Rent(ctx, u.ID, b.ID, nil)
	require.NoError(t, err)

	renewed, err := svc.Renew(ctx, r.ID, 3)
	require.NoError(t, err)
	require.WithinDuration(t, r.DueDate.AddDate(0, 0, 3), renewed.DueDate, time.Hour)

	_, err = svc.Rent(ctx, uuid.New(), b.ID, nil)
	require.Equal(t, svcerr.ResourceExhausted, svcerr.Code(err))

	returned, err := svc.Return(ctx, u.ID, b.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)

	_, err = svc.ReturnRental(ctx, r.ID)
	require.Equal(t, svcerr.InvalidOperation, svcerr.Code(err))

	got, err := books.Detail(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.AvailableCopies)
}

func TestRentUnknownUserRollsBack(t *testing.T) {
	db := openDB(t)
	books := bookrepo.New(db)
	svc := rentalsvc.New(rentalrepo.New(db), books, nopNotifier{})
	ctx := context.Background()

	b := newBook(t, db, 2)
	_, err := svc.Rent(ctx, uuid.New(), b.ID, nil)
	require.Equal(t, svcerr.NotFound, svcerr.Code(err))

	got, err := books.Detail(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.AvailableCopies)
}
