package service

import (
	"context"

	"soilwatch/entities"
)

// Moisture/vegetation state buckets for the current value.
const (
	StateCritical = "critical" // below LowCutoff
	StateWatch    = "watch"    // between cutoffs
	StateOptimal  = "optimal"  // at/above GoodCutoff
	StateNoData   = "no_data"
)

const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

const (
	LowCutoff    = 0.33
	GoodCutoff   = 0.66
	TrendEpsilon = 0.05

	DefaultWindowDays = 30
	MaxWindowDays     = 365
)

// Snapshot is the derived aggregate over a window. Never persisted,
// recomputed per request.
type Snapshot struct {
	NeedsSync bool                   `json:"needs_sync"`
	Count     int                    `json:"count"`
	Mean      float64                `json:"mean"`
	Current   *float64               `json:"current,omitempty"`
	State     string                 `json:"state"`
	Trend     string                 `json:"trend"`
	Images    []entities.Observation `json:"images"`
}

type StatsService interface {
	// Summary runs the full pipeline for one field: sync check, provider
	// fetch, idempotent ingestion, quality filter, aggregation, and alert
	// evaluation. An unsynced field yields NeedsSync, not an error.
	Summary(ctx context.Context, fieldID uint, uid string, days int) (*Snapshot, error)

	// SyncNow is the on-demand / reconnect trigger; it reuses the same
	// path EnsureSynced takes from Summary.
	SyncNow(ctx context.Context, fieldID uint, uid string) (*entities.PolygonSync, error)
}
