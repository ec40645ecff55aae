package notificationsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"libraryrental/model"
	"libraryrental/repository"
	"libraryrental/service/svcerr"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
	MaxTitleLength  = 120
)

type Repo interface {
	Insert(ctx context.Context, n *model.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) ([]model.Notification, int64, int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}

type Inbox interface {
	Create(ctx context.Context, req model.CreateNotificationReq) (*model.Notification, error)
	List(ctx context.Context, userID uuid.UUID, page, limit int, unreadOnly bool) (*model.NotificationPage, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type inbox struct {
	r   Repo
	now func() time.Time
}

func NewInbox(r Repo) Inbox {
	return &inbox{r: r, now: func() time.Time { return time.Now().UTC() }}
}

// Create writes a notification directly, bypassing the dispatcher queue.
func (s *inbox) Create(ctx context.Context, req model.CreateNotificationReq) (*model.Notification, error) {
	title, msg := strings.TrimSpace(req.Title), strings.TrimSpace(req.Message)
	if req.UserID == uuid.Nil || title == "" || msg == "" {
		return nil, svcerr.NewInvalid("user_id, title and message are required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, svcerr.New(svcerr.InvalidOperation, "title must be at most %d characters", MaxTitleLength)
	}
	typ := req.Type
	if typ == "" {
		typ = model.NotificationGeneric
	}
	if !typ.Valid() {
		return nil, svcerr.New(svcerr.InvalidOperation, "unknown notification type %q", typ)
	}
	if len(req.Data) > 0 && !json.Valid(req.Data) {
		return nil, svcerr.NewInvalid("data must be valid json")
	}

	n := &model.Notification{UserID: req.UserID, Title: title, Message: msg, Type: typ, Data: req.Data}
	if err := s.r.Insert(ctx, n); err != nil {
		if errors.Is(err, repository.ErrReference) {
			return nil, svcerr.NewNotFound("user not found")
		}
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

func (s *inbox) List(ctx context.Context, userID uuid.UUID, page, limit int, unreadOnly bool) (*model.NotificationPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)

	items, total, unread, err := s.r.ListForUser(ctx, userID, unreadOnly, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return &model.NotificationPage{
		Items:       items,
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  (total + int64(limit) - 1) / int64(limit),
		UnreadCount: unread,
	}, nil
}

func (s *inbox) MarkRead(ctx context.Context, userID, id uuid.UUID) (*model.Notification, error) {
	n, err := s.r.MarkRead(ctx, userID, id, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, svcerr.NewNotFound("notification not found")
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func (s *inbox) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.r.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return n, nil
}
