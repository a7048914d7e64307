package service

import (
	"errors"

	"soilwatch/entities"
)

// ErrValidation wraps malformed input; controllers answer 400.
var ErrValidation = errors.New("validation failed")

type FieldPatch struct {
	Name           *string  `json:"name"`
	AlertThreshold *float64 `json:"alert_threshold"`
	AlertsEnabled  *bool    `json:"alerts_enabled"`
}

type FieldService interface {
	CreateField(f *entities.Field) (*entities.Field, error)
	GetFieldByID(id uint, uid string) (*entities.Field, error)
	ListFields(uid string) ([]entities.Field, error)
	UpdateField(id uint, uid string, p FieldPatch) (*entities.Field, error)
	DeleteField(id uint, uid string) (bool, error)
}
