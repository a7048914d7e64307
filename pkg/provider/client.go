// pkg/provider/client.go

package provider

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured means no provider credentials are present; dependent
// endpoints degrade to 503 rather than failing opaquely.
var ErrNotConfigured = errors.New("satellite provider not configured")

// Image is one scalar observation the provider computed for a polygon.
type Image struct {
	Date          time.Time `json:"date"`
	MeanIndex     float64   `json:"mean_index"`
	MinIndex      float64   `json:"min_index"`
	MaxIndex      float64   `json:"max_index"`
	CloudCoverPct float64   `json:"cloud_cover_pct"`
	DataCoverPct  float64   `json:"data_cover_pct"`
	Source        string    `json:"source"`
}

type Client interface {
	Configured() bool

	// CreatePolygon registers a field boundary and returns the provider-side
	// polygon id. Must be idempotent by name: a polygon already registered
	// under the same name is returned, not duplicated.
	CreatePolygon(ctx context.Context, name string, boundary []byte) (string, error)

	// SearchImages returns observations for the polygon in [from, to].
	SearchImages(ctx context.Context, polygonID string, from, to time.Time) ([]Image, error)
}
