package repositoryImp

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"soilwatch/entities"
	"soilwatch/pkg/satellite/repository"
)

type obsRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ObservationRepository { return &obsRepo{db} }

func (r *obsRepo) Upsert(obs []entities.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "field_id"}, {Name: "date"}, {Name: "source"}},
		DoNothing: true,
	}).Create(&obs).Error
}

func (r *obsRepo) Window(fieldID uint, from time.Time) ([]entities.Observation, error) {
	var out []entities.Observation
	if err := r.db.Where("field_id = ? AND date >= ?", fieldID, from).
		Order("date DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *obsRepo) History(fieldID uint) ([]entities.Observation, error) {
	var out []entities.Observation
	if err := r.db.Where("field_id = ?", fieldID).
		Order("date DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
