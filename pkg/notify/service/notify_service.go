package service

import (
	"context"

	"soilwatch/entities"
	"soilwatch/pkg/alert"
)

// Result reports per-channel delivery for one dispatch. A failed channel
// never rolls back the others; the in-app row is the source of truth.
type Result struct {
	Created    bool   `json:"created"`
	PushSent   int    `json:"push_sent"`
	PushFailed int    `json:"push_failed"`
	EmailSent  bool   `json:"email_sent"`
	EmailError string `json:"email_error,omitempty"`
}

type Dispatcher interface {
	// Dispatch persists the alert (no-op when the breach episode is already
	// recorded) and fans out to push subscriptions and email.
	Dispatch(ctx context.Context, f *entities.Field, d alert.Decision) (*Result, error)
}

type NotificationService interface {
	List(uid string, unreadOnly bool) ([]entities.Notification, error)
	UnreadCount(uid string) (int64, error)
	MarkRead(uid string, ids []string, all bool) error
	Dismiss(uid string, ids []string, all bool) error

	Subscribe(uid string, sub *entities.PushSubscription) error
	Unsubscribe(uid, endpoint string) error
}
