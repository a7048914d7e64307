package entities

import "time"

// Observation is one cached provider reading for a field on a calendar date.
// Rows are append-only; re-ingesting the same (field, date, source) is a no-op.
type Observation struct {
	ObsID         uint      `gorm:"primaryKey" json:"obs_id"`
	FieldID       uint      `gorm:"index;uniqueIndex:idx_obs_field_date_source" json:"field_id"`
	Date          time.Time `gorm:"uniqueIndex:idx_obs_field_date_source" json:"date"` // UTC midnight
	Source        string    `gorm:"size:50;uniqueIndex:idx_obs_field_date_source" json:"source"`
	MeanIndex     float64   `json:"mean_index"`
	MinIndex      float64   `json:"min_index"`
	MaxIndex      float64   `json:"max_index"`
	CloudCoverPct float64   `json:"cloud_cover_pct"`
	DataCoverPct  float64   `json:"data_cover_pct"`

	CreatedAt time.Time
}
