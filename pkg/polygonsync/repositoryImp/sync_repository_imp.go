package repositoryImp

import (
	"gorm.io/gorm"

	"soilwatch/entities"
	"soilwatch/pkg/polygonsync/repository"
)

type syncRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.SyncRepository { return &syncRepo{db} }

func (r *syncRepo) FindByField(fieldID uint) (*entities.PolygonSync, error) {
	var s entities.PolygonSync
	if err := r.db.Where("field_id = ?", fieldID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *syncRepo) Create(s *entities.PolygonSync) error { return r.db.Create(s).Error }

func (r *syncRepo) Transition(syncID uint, from, to string, updates map[string]any) (bool, error) {
	if !entities.CanTransition(from, to) {
		return false, repository.ErrInvalidTransition
	}
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to
	tx := r.db.Model(&entities.PolygonSync{}).
		Where("sync_id = ? AND status = ?", syncID, from).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}
