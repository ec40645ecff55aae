package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"libraryrental/model"
	"libraryrental/repository"
	"libraryrental/service/svcerr"
	"libraryrental/util/hash"
	jwtutil "libraryrental/util/jwt"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
}

type Service interface {
	Signup(ctx context.Context, req model.SignupReq) (*model.User, string, error)
	Signin(ctx context.Context, req model.SigninReq) (*model.User, string, error)
	// EnsureAdmin creates the bootstrap administrator when no account uses email.
	EnsureAdmin(ctx context.Context, email, password string) (*model.User, error)
}

type service struct {
	ur     Repo
	secret string
	ttl    time.Duration
}

func New(ur Repo, secret string, ttl time.Duration) Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{ur: ur, secret: secret, ttl: ttl}
}

func (s *service) Signup(ctx context.Context, req model.SignupReq) (*model.User, string, error) {
	u, err := s.create(ctx, req, model.RoleUser)
	if err != nil {
		return nil, "", err
	}
	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), s.ttl)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) create(ctx context.Context, req model.SignupReq, role model.Role) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(req.Password) < 6 {
		return nil, svcerr.NewInvalid("email and a password of at least 6 characters are required")
	}
	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Status:       model.UserActive,
	}
	if m := strings.TrimSpace(req.Matricula); m != "" {
		u.Matricula = &m
	}

	if err := s.ur.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, mapDuplicateErr(err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.Contains(strings.ToLower(pgErr.ConstraintName), "matricula") {
		return svcerr.NewConflict("matricula already registered")
	}
	return svcerr.NewConflict("email already registered")
}

func (s *service) Signin(ctx context.Context, req model.SigninReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", svcerr.NewInvalid("email and password are required")
	}
	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", svcerr.NewUnauthorized("invalid credentials")
		}
		return nil, "", fmt.Errorf("signin: %w", err)
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", svcerr.NewUnauthorized("invalid credentials")
	}
	if u.IsBanned() {
		return nil, "", svcerr.NewForbidden("user is banned")
	}
	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), s.ttl)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) EnsureAdmin(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.ur.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	switch {
	case err == nil:
		return u, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	return s.create(ctx, model.SignupReq{Email: email, Password: password, Name: "admin"}, model.RoleAdmin)
}
