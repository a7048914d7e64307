package repositoryImp

import (
	"gorm.io/gorm"

	"soilwatch/entities"
	"soilwatch/pkg/field/repository"
)

type fieldRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.FieldRepository { return &fieldRepo{db} }

func (r *fieldRepo) Create(f *entities.Field) error { return r.db.Create(f).Error }

func (r *fieldRepo) FindByID(id uint, uid string) (*entities.Field, error) {
	var f entities.Field
	if err := r.db.Where("field_id = ? AND user_id = ?", id, uid).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fieldRepo) ListByUser(uid string) ([]entities.Field, error) {
	var out []entities.Field
	if err := r.db.Where("user_id = ?", uid).Order("field_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fieldRepo) Patch(id uint, uid string, updates map[string]any) (bool, error) {
	tx := r.db.Model(&entities.Field{}).Where("field_id = ? AND user_id = ?", id, uid).Updates(updates)
	return tx.RowsAffected == 1, tx.Error
}

func (r *fieldRepo) Delete(id uint, uid string) (bool, error) {
	tx := r.db.Where("field_id = ? AND user_id = ?", id, uid).Delete(&entities.Field{})
	return tx.RowsAffected == 1, tx.Error
}
