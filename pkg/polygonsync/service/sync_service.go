package service

import (
	"context"

	"soilwatch/entities"
)

type SyncService interface {
	// EnsureSynced drives a field toward `synced`: creates the provider-side
	// polygon on first call, observes (does not re-trigger) while `pending`,
	// and retries an `error` record once its retry spacing has elapsed.
	// Provider failures are recorded on the sync row, not returned; the
	// returned record's status tells the caller where things stand.
	EnsureSynced(ctx context.Context, f *entities.Field) (*entities.PolygonSync, error)

	// Status is read-only and never mutates. Absent record -> "not_synced".
	Status(fieldID uint) (string, error)
}
