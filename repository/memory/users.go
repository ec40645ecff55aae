package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"libraryrental/model"
	"libraryrental/repository"
)

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return repository.ErrDuplicate
		}
		if u.Matricula != nil && other.Matricula != nil && *u.Matricula == *other.Matricula {
			return repository.ErrDuplicate
		}
	}
	if u.Status == "" {
		u.Status = model.UserActive
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

func (r *UserRepo) ByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) ByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *UserRepo) List(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *UserRepo) SetStatus(_ context.Context, id uuid.UUID, status model.UserStatus) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if status != model.UserActive && status != model.UserBanned {
		return nil, repository.ErrCheck
	}
	u.Status = status
	c := *u
	return &c, nil
}
