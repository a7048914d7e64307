package entities

import (
	"time"

	"gorm.io/datatypes"
)

type Field struct {
	FieldID        uint           `gorm:"primaryKey" json:"field_id"`
	UserID         string         `json:"user_id" gorm:"index"`
	Name           string         `json:"name"`
	Boundary       datatypes.JSON `json:"boundary"` // polygon ring [[lon,lat],...]
	AreaHa         *float64       `json:"area_ha"`
	Crop           string         `json:"crop"`            // wheat|corn|soybeans|...
	AlertThreshold float64        `json:"alert_threshold"` // fraction 0..1
	AlertsEnabled  bool           `json:"alerts_enabled"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
