package authsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"libraryrental/model"
	"libraryrental/repository"
	"libraryrental/repository/memory"
	"libraryrental/service/svcerr"
	"libraryrental/util/hash"
	jwtutil "libraryrental/util/jwt"
)

type mockRepo struct {
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn  func(ctx context.Context, u *model.User) error
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, repository.ErrNotFound
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func TestSignup_Success(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = id
			return nil
		},
	}
	svc := New(m, "test-secret", time.Hour)

	u, tok, err := svc.Signup(ctx, model.SignupReq{
		Email:     "USER@Example.COM",
		Password:  "supersecret",
		Matricula: "2024001",
	})
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, "user", u.Name)
	require.Equal(t, model.RoleUser, u.Role)
	require.Equal(t, "2024001", *u.Matricula)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))

	claims, err := jwtutil.Parse(tok, "test-secret")
	require.NoError(t, err)
	require.Equal(t, id.String(), claims.Subject)
	require.Equal(t, "USER", claims.Role)
}

func TestSignup_BadInput(t *testing.T) {
	svc := New(&mockRepo{}, "test-secret", time.Hour)

	_, _, err := svc.Signup(context.Background(), model.SignupReq{Email: " ", Password: "123456"})
	require.Equal(t, svcerr.InvalidOperation, svcerr.Code(err))

	_, _, err = svc.Signup(context.Background(), model.SignupReq{Email: "a@b.c", Password: "123"})
	require.Equal(t, svcerr.InvalidOperation, svcerr.Code(err))
}

func TestSignup_Duplicates(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore().Users(), "test-secret", time.Hour)

	_, _, err := svc.Signup(ctx, model.SignupReq{Email: "taken@example.com", Password: "123456"})
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, model.SignupReq{Email: "Taken@Example.com", Password: "123456"})
	require.Equal(t, svcerr.Conflict, svcerr.Code(err))
	require.Equal(t, "email already registered", err.Error())

	pgDup := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return repository.MapPgError(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "users_matricula_key",
			})
		},
	}
	_, _, err = New(pgDup, "test-secret", time.Hour).Signup(ctx, model.SignupReq{
		Email: "new@example.com", Password: "123456", Matricula: "1",
	})
	require.Equal(t, svcerr.Conflict, svcerr.Code(err))
	require.Equal(t, "matricula already registered", err.Error())
}

func TestSignup_CreateError(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error { return errors.New("db down") },
	}
	_, _, err := New(m, "test-secret", time.Hour).Signup(context.Background(), model.SignupReq{
		Email: "ok@example.com", Password: "123456",
	})
	require.Error(t, err)
	require.Equal(t, svcerr.ErrCode(""), svcerr.Code(err))
}

func TestSignin(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	hashed := mustHash(t, "supersecret")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email != "user@example.com" {
				return nil, repository.ErrNotFound
			}
			return &model.User{ID: id, Email: email, PasswordHash: hashed, Role: model.RoleAdmin}, nil
		},
	}
	svc := New(m, "test-secret", time.Hour)

	u, tok, err := svc.Signin(ctx, model.SigninReq{Email: "User@Example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	claims, err := jwtutil.Parse(tok, "test-secret")
	require.NoError(t, err)
	require.Equal(t, "ADMIN", claims.Role)

	_, _, err = svc.Signin(ctx, model.SigninReq{Email: "user@example.com", Password: "wrong"})
	require.Equal(t, svcerr.Unauthorized, svcerr.Code(err))

	_, _, err = svc.Signin(ctx, model.SigninReq{Email: "missing@example.com", Password: "whatever"})
	require.Equal(t, svcerr.Unauthorized, svcerr.Code(err))

	_, _, err = svc.Signin(ctx, model.SigninReq{Email: " ", Password: ""})
	require.Equal(t, svcerr.InvalidOperation, svcerr.Code(err))
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore().Users(), "test-secret", time.Hour)

	u, err := svc.EnsureAdmin(ctx, "Admin@Library.local", "changeme")
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, u.Role)

	again, err := svc.EnsureAdmin(ctx, "admin@library.local", "ignored")
	require.NoError(t, err)
	require.Equal(t, u.ID, again.ID)

	_, tok, err := svc.Signin(ctx, model.SigninReq{Email: "admin@library.local", Password: "changeme"})
	require.NoError(t, err)
	claims, err := jwtutil.Parse(tok, "test-secret")
	require.NoError(t, err)
	require.Equal(t, "ADMIN", claims.Role)
}

func TestSignin_BannedUser(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: uuid.New(), Email: email, PasswordHash: mustHash(t, "secret123"),
				Role: model.RoleUser, Status: model.UserBanned}, nil
		},
	}
	svc := New(m, "test-secret", time.Hour)

	_, tok, err := svc.Signin(ctx, model.SigninReq{Email: "banned@example.com", Password: "secret123"})
	require.Equal(t, svcerr.Forbidden, svcerr.Code(err))
	require.Empty(t, tok)

	// a wrong password still reads as bad credentials
	_, _, err = svc.Signin(ctx, model.SigninReq{Email: "banned@example.com", Password: "wrongpass"})
	require.Equal(t, svcerr.Unauthorized, svcerr.Code(err))
}
