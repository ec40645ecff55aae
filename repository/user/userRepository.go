package userrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"libraryrental/model"
	"libraryrental/repository"
	"libraryrental/util/database"
)

const userCols = `id, name, email, matricula, password_hash, role, status, created_at`

type Repo struct{ db *database.DB }

func New(db *database.DB) *Repo { return &Repo{db} }

func (r *Repo) Create(ctx context.Context, u *model.User) error {
	if u.Status == "" {
		u.Status = model.UserActive
	}
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO users(name, email, matricula, password_hash, role, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		u.Name, u.Email, u.Matricula, u.PasswordHash, string(u.Role), string(u.Status),
	).Scan(&u.ID, &u.CreatedAt)
	return repository.MapPgError(err)
}

func (r *Repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `
        SELECT `+userCols+`
        FROM users
        WHERE lower(email) = lower($1)`,
		email,
	))
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return u, nil
}

func (r *Repo) ByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return u, nil
}

func (r *Repo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *Repo) SetStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) (*model.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `
		UPDATE users SET status = $2
		WHERE id = $1
		RETURNING `+userCols,
		id, string(status),
	))
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var role, status string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Matricula, &u.PasswordHash, &role, &status, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role, u.Status = model.Role(role), model.UserStatus(status)
	return u, nil
}
