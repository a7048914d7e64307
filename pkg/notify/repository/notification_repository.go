package repository

import "soilwatch/entities"

type NotificationRepository interface {
	// Insert persists a new alert; returns false (and no error) when a row
	// for the same (field, episode_start) already exists.
	Insert(n *entities.Notification) (bool, error)

	// List excludes dismissed rows unconditionally, newest first.
	List(uid string, unreadOnly bool) ([]entities.Notification, error)

	// UnreadCount is a live count, never a cached field.
	UnreadCount(uid string) (int64, error)

	// MarkRead / Dismiss only touch rows whose column is still NULL, which
	// makes repeated calls no-ops and keeps the timestamps monotonic.
	MarkRead(uid string, ids []string, all bool) error
	Dismiss(uid string, ids []string, all bool) error
}

type SubscriptionRepository interface {
	Save(s *entities.PushSubscription) error // upsert on endpoint
	ByUser(uid string) ([]entities.PushSubscription, error)
	DeleteByEndpoint(endpoint string) error
	DeleteByUserEndpoint(uid, endpoint string) (bool, error)
}
