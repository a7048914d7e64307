package repository

import (
	"errors"

	"soilwatch/entities"
)

// ErrInvalidTransition is returned when a status change is not an allowed edge.
var ErrInvalidTransition = errors.New("invalid sync status transition")

type SyncRepository interface {
	FindByField(fieldID uint) (*entities.PolygonSync, error)
	Create(s *entities.PolygonSync) error

	// Transition moves the record from->to with a compare-and-set on the
	// current status. Returns false when the record was no longer in `from`
	// (a concurrent trigger won the race); callers treat that as a no-op.
	Transition(syncID uint, from, to string, updates map[string]any) (bool, error)
}
