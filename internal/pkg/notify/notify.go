// Package notify delivers correction lifecycle events to people.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
)

// Event kinds
const (
	KindCorrectionCreated  = "correction.created"
	KindCorrectionApproved = "correction.approved"
	KindCorrectionRejected = "correction.rejected"
	KindCorrectionReminder = "correction.reminder"
)

// Message is addressed to a single user.
type Message struct {
	Kind        string    `json:"kind"`
	CompanyID   string    `json:"company_id"`
	RecipientID string    `json:"recipient_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Data        any       `json:"data,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Hub pushes messages to the recipient's open event streams.
type Hub struct {
	hub *sse.Hub
}

func NewHub(hub *sse.Hub) *Hub {
	return &Hub{hub: hub}
}

func (n *Hub) Notify(ctx context.Context, msg Message) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	n.hub.Publish(msg.RecipientID, sse.Event{Name: msg.Kind, Data: msg})
	return nil
}

// Multi sends every message through all notifiers and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards messages.
type Nop struct{}

func (Nop) Notify(context.Context, Message) error { return nil }
