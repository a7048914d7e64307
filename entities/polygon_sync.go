package entities

import "time"

// Sync status values. A field with no PolygonSync row is "not_synced";
// the value is never stored, only reported.
const (
	SyncNotSynced = "not_synced"
	SyncPending   = "pending"
	SyncSynced    = "synced"
	SyncError     = "error"
)

type PolygonSync struct {
	SyncID            uint      `gorm:"primaryKey" json:"sync_id"`
	FieldID           uint      `gorm:"uniqueIndex" json:"field_id"`
	ProviderPolygonID *string   `json:"provider_polygon_id"`
	Status            string    `gorm:"index" json:"status"` // pending|synced|error
	ErrorReason       string    `json:"error_reason,omitempty"`
	LastAttemptAt     time.Time `json:"last_attempt_at"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

var syncEdges = map[string][]string{
	SyncNotSynced: {SyncPending},
	SyncPending:   {SyncSynced, SyncError},
	SyncError:     {SyncPending},
	SyncSynced:    {SyncError},
}

// CanTransition reports whether from->to is an allowed sync edge.
func CanTransition(from, to string) bool {
	for _, t := range syncEdges[from] {
		if t == to {
			return true
		}
	}
	return false
}
