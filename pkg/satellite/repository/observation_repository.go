package repository

import (
	"time"

	"soilwatch/entities"
)

type ObservationRepository interface {
	// Upsert inserts readings, silently skipping rows whose
	// (field, date, source) key already exists.
	Upsert(obs []entities.Observation) error

	// Window returns the field's cached readings on/after `from`,
	// newest first.
	Window(fieldID uint, from time.Time) ([]entities.Observation, error)

	// History returns every cached reading for the field, newest first.
	History(fieldID uint) ([]entities.Observation, error)
}
