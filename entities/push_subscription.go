package entities

import "time"

// PushSubscription is one browser's registered Web Push endpoint.
// Removed when the endpoint reports itself gone (404/410) or on unsubscribe.
type PushSubscription struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   string `gorm:"index" json:"user_id"`
	Endpoint string `gorm:"uniqueIndex;size:500" json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`

	CreatedAt time.Time `json:"created_at"`
}
