package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"libraryrental/model"
	"libraryrental/repository"
)

type BookRepo struct{ s *Store }

func (r *BookRepo) Create(_ context.Context, b *model.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if b.TotalCopies < 0 || b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return repository.ErrCheck
	}
	if r.s.isbnTakenUnsafe(b.ISBN, uuid.Nil) {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	b.ID = uuid.New()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.s.books[b.ID] = copyBook(b)
	return nil
}

func (r *BookRepo) List(_ context.Context, includeHidden bool) ([]model.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.Book{}
	for _, b := range r.s.books {
		if b.IsHidden && !includeHidden {
			continue
		}
		out = append(out, *copyBook(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *BookRepo) Detail(_ context.Context, id uuid.UUID) (*model.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.books[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyBook(b), nil
}

func (r *BookRepo) Update(_ context.Context, id uuid.UUID, mutate func(b *model.Book) error) (*model.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.books[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	next := copyBook(cur)
	if err := mutate(next); err != nil {
		return nil, err
	}
	if next.TotalCopies < 0 || next.AvailableCopies < 0 || next.AvailableCopies > next.TotalCopies {
		return nil, repository.ErrCheck
	}
	if next.ISBN != cur.ISBN && r.s.isbnTakenUnsafe(next.ISBN, id) {
		return nil, repository.ErrDuplicate
	}
	next.ID = cur.ID
	next.AdminID = cur.AdminID
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	r.s.books[id] = next
	return copyBook(next), nil
}

func (r *BookRepo) DeleteUnreferenced(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.books[id]; !ok {
		return 0, repository.ErrNotFound
	}
	var blocking int64
	for _, rt := range r.s.rentals {
		if rt.BookID == id {
			blocking++
		}
	}
	if blocking > 0 {
		return blocking, nil
	}
	delete(r.s.books, id)
	return 0, nil
}

// isbnTakenUnsafe matches books_isbn_key: ISBNs compare byte for byte.
func (s *Store) isbnTakenUnsafe(isbn string, except uuid.UUID) bool {
	for id, b := range s.books {
		if id != except && b.ISBN == isbn {
			return true
		}
	}
	return false
}
