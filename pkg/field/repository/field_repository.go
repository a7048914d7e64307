package repository

import "soilwatch/entities"

type FieldRepository interface {
	Create(f *entities.Field) error
	FindByID(id uint, uid string) (*entities.Field, error)
	ListByUser(uid string) ([]entities.Field, error)
	Patch(id uint, uid string, updates map[string]any) (bool, error)
	Delete(id uint, uid string) (bool, error)
}
