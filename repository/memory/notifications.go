package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"libraryrental/model"
	"libraryrental/repository"
)

type NotificationRepo struct{ s *Store }

func (r *NotificationRepo) Insert(_ context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[n.UserID]; !ok {
		return repository.ErrReference
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now().UTC()
	if len(n.Data) == 0 {
		n.Data = []byte(`{}`)
	}
	c := *n
	r.s.notifications[n.ID] = &c
	return nil
}

func (r *NotificationRepo) ListForUser(_ context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) ([]model.Notification, int64, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []model.Notification
	var unread int64
	for _, n := range r.s.notifications {
		if n.UserID != userID {
			continue
		}
		if n.ReadAt == nil {
			unread++
		} else if unreadOnly {
			continue
		}
		matched = append(matched, *n)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() > matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	items := []model.Notification{}
	if offset < len(matched) {
		end := min(offset+limit, len(matched))
		items = append(items, matched[offset:end]...)
	}
	return items, total, unread, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, userID, id uuid.UUID, at time.Time) (*model.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if n.ReadAt == nil {
		ts := at
		n.ReadAt = &ts
	}
	c := *n
	return &c, nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, item := range r.s.notifications {
		if item.UserID == userID && item.ReadAt == nil {
			ts := at
			item.ReadAt = &ts
			n++
		}
	}
	return n, nil
}
