package notificationsvc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"libraryrental/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Writer interface {
	Insert(ctx context.Context, n *model.Notification) error
}

// Dispatcher persists notifications off the request path. Enqueue never
// blocks: a full queue drops the notification and logs it.
type Dispatcher struct {
	w       Writer
	queue   chan *model.Notification
	log     *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(w Writer, workers, queueSize int, log *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{
		w:       w,
		queue:   make(chan *model.Notification, queueSize),
		log:     log,
		timeout: 5 * time.Second,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	return d
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for n := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.w.Insert(ctx, n); err != nil {
			d.log.Error("notification write failed",
				"worker", id, "user_id", n.UserID, "type", n.Type, "err", err)
		}
		cancel()
	}
}

// Enqueue reports whether the notification was accepted.
func (d *Dispatcher) Enqueue(n *model.Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("notification dropped: dispatcher closed", "user_id", n.UserID, "type", n.Type)
		return false
	}
	select {
	case d.queue <- n:
		return true
	default:
		d.log.Warn("notification dropped: queue full", "user_id", n.UserID, "type", n.Type)
		return false
	}
}

// Close stops accepting work and waits for queued notifications to be written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) NotifyRental(r model.Rental, b model.BookSummary) {
	d.Enqueue(rentalNotification(r, b, model.NotificationBookRental, "Book rented",
		fmt.Sprintf("You rented %q. It is due on %s.", b.Title, r.DueDate.Format("2006-01-02"))))
}

func (d *Dispatcher) NotifyReturn(r model.Rental, b model.BookSummary) {
	d.Enqueue(rentalNotification(r, b, model.NotificationBookReturn, "Book returned",
		fmt.Sprintf("You returned %q. Thank you!", b.Title)))
}

func (d *Dispatcher) NotifyOverdue(r model.Rental, b model.BookSummary) bool {
	return d.Enqueue(rentalNotification(r, b, model.NotificationOverdue, "Book overdue",
		fmt.Sprintf("%q was due on %s. Please return or renew it.", b.Title, r.DueDate.Format("2006-01-02"))))
}

type rentalData struct {
	RentalID uuid.UUID `json:"rental_id"`
	BookID   uuid.UUID `json:"book_id"`
	DueDate  time.Time `json:"due_date"`
}

func rentalNotification(r model.Rental, b model.BookSummary, typ model.NotificationType, title, msg string) *model.Notification {
	data, _ := json.Marshal(rentalData{RentalID: r.ID, BookID: b.ID, DueDate: r.DueDate})
	return &model.Notification{
		UserID:  r.UserID,
		Title:   title,
		Message: msg,
		Type:    typ,
		Data:    data,
	}
}
