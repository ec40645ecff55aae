package rental

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const reminderCacheSize = 4096

type Reminder interface {
	// SendOverdueReminders notifies the owner of every open overdue rental
	// not yet reminded for its current due date. Returns how many were sent.
	SendOverdueReminders(ctx context.Context) (int, error)
}

type reminderKey struct {
	rentalID uuid.UUID
	due      int64
}

type reminder struct {
	r      Repo
	notify Notifier
	seen   *lru.Cache[reminderKey, struct{}]
	now    func() time.Time
	log    *slog.Logger
}

func NewReminder(r Repo, notify Notifier, log *slog.Logger, now func() time.Time) (Reminder, error) {
	seen, err := lru.New[reminderKey, struct{}](reminderCacheSize)
	if err != nil {
		return nil, fmt.Errorf("reminder cache: %w", err)
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if log == nil {
		log = slog.Default()
	}
	return &reminder{r: r, notify: notify, seen: seen, now: now, log: log}, nil
}

func (m *reminder) SendOverdueReminders(ctx context.Context) (int, error) {
	overdue, err := m.r.ListOpenOverdue(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("list overdue: %w", err)
	}

	sent := 0
	for _, v := range overdue {
		if v.Book == nil {
			continue
		}
		k := reminderKey{rentalID: v.ID, due: v.DueDate.Unix()}
		if m.seen.Contains(k) {
			continue
		}
		if !m.notify.NotifyOverdue(v.Rental, *v.Book) {
			continue
		}
		m.seen.Add(k, struct{}{})
		sent++
	}
	if sent > 0 {
		m.log.Info("overdue reminders sent", "count", sent)
	}
	return sent, nil
}

// RunReminders calls SendOverdueReminders every interval until ctx is done.
func RunReminders(ctx context.Context, m Reminder, every time.Duration, log *slog.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := m.SendOverdueReminders(ctx); err != nil {
				log.Error("overdue sweep failed", "err", err)
			}
		}
	}
}
