package serviceImp

import (
	"encoding/json"
	"fmt"

	"soilwatch/entities"
	repo "soilwatch/pkg/field/repository"
	"soilwatch/pkg/field/service"
)

type fieldSvc struct{ r repo.FieldRepository }

func NewFieldService(r repo.FieldRepository) service.FieldService { return &fieldSvc{r} }

func (s *fieldSvc) CreateField(f *entities.Field) (*entities.Field, error) {
	if err := validateThreshold(f.AlertThreshold); err != nil {
		return nil, err
	}
	if err := validateBoundary(f.Boundary); err != nil {
		return nil, err
	}
	if err := s.r.Create(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *fieldSvc) GetFieldByID(id uint, uid string) (*entities.Field, error) {
	return s.r.FindByID(id, uid)
}

func (s *fieldSvc) ListFields(uid string) ([]entities.Field, error) { return s.r.ListByUser(uid) }

func (s *fieldSvc) UpdateField(id uint, uid string, p service.FieldPatch) (*entities.Field, error) {
	upd := map[string]any{}
	if p.Name != nil {
		upd["name"] = *p.Name
	}
	if p.AlertThreshold != nil {
		if err := validateThreshold(*p.AlertThreshold); err != nil {
			return nil, err
		}
		upd["alert_threshold"] = *p.AlertThreshold
	}
	if p.AlertsEnabled != nil {
		upd["alerts_enabled"] = *p.AlertsEnabled
	}
	if len(upd) > 0 {
		if _, err := s.r.Patch(id, uid, upd); err != nil {
			return nil, err
		}
	}
	// re-read so an unknown or unowned id surfaces as record-not-found
	return s.r.FindByID(id, uid)
}

func (s *fieldSvc) DeleteField(id uint, uid string) (bool, error) { return s.r.Delete(id, uid) }

func validateThreshold(t float64) error {
	if t < 0 || t > 1 {
		return fmt.Errorf("%w: alert_threshold must be within [0,1]", service.ErrValidation)
	}
	return nil
}

// validateBoundary requires a polygon ring of at least 3 vertices.
func validateBoundary(raw []byte) error {
	var ring [][]float64
	if err := json.Unmarshal(raw, &ring); err != nil {
		return fmt.Errorf("%w: boundary must be a [[lon,lat],...] ring", service.ErrValidation)
	}
	if len(ring) < 3 {
		return fmt.Errorf("%w: boundary needs at least 3 points", service.ErrValidation)
	}
	for _, pt := range ring {
		if len(pt) != 2 {
			return fmt.Errorf("%w: boundary points must be [lon,lat] pairs", service.ErrValidation)
		}
	}
	return nil
}
