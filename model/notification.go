// model/notification.go
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationGeneric    NotificationType = "GENERIC"
	NotificationBookRental NotificationType = "BOOK_RENTAL"
	NotificationBookReturn NotificationType = "BOOK_RETURN"
	NotificationOverdue    NotificationType = "BOOK_OVERDUE"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationGeneric, NotificationBookRental, NotificationBookReturn, NotificationOverdue:
		return true
	}
	return false
}

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Data      json.RawMessage  `json:"data,omitempty"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// CreateNotificationReq is an admin message to one reader.
type CreateNotificationReq struct {
	UserID  uuid.UUID        `json:"user_id" validate:"required"`
	Title   string           `json:"title" validate:"required,max=120"`
	Message string           `json:"message" validate:"required"`
	Type    NotificationType `json:"type" validate:"omitempty,oneof=GENERIC BOOK_RENTAL BOOK_RETURN BOOK_OVERDUE"`
	Data    json.RawMessage  `json:"data,omitempty"`
}

type NotificationPage struct {
	Items       []Notification `json:"items"`
	Page        int            `json:"page"`
	Limit       int            `json:"limit"`
	Total       int64          `json:"total"`
	TotalPages  int64          `json:"total_pages"`
	UnreadCount int64          `json:"unread_count"`
}
