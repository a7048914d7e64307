package entities

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SeverityMild   = "mild"
	SeveritySevere = "severe"
)

// Notification is a persisted moisture alert. The unique index on
// (field_id, episode_start) makes concurrent evaluations of the same
// breach episode collapse into a single row.
type Notification struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	FieldID      uint           `gorm:"index;uniqueIndex:idx_notif_field_episode" json:"field_id"`
	UserID       string         `gorm:"index" json:"user_id"`
	EpisodeStart time.Time      `gorm:"uniqueIndex:idx_notif_field_episode" json:"episode_start"`
	Severity     string         `json:"severity"` // mild|severe
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	Payload      datatypes.JSON `json:"payload,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	ReadAt       *time.Time     `json:"read_at,omitempty"`
	DismissedAt  *time.Time     `json:"dismissed_at,omitempty"`
}
