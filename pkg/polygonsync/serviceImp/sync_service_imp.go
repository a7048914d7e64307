package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"soilwatch/entities"
	"soilwatch/pkg/polygonsync/repository"
	"soilwatch/pkg/polygonsync/service"
	"soilwatch/pkg/provider"
)

type syncSvc struct {
	r          repository.SyncRepository
	p          provider.Client
	retryAfter time.Duration
	log        *zap.Logger
	now        func() time.Time
}

func New(r repository.SyncRepository, p provider.Client, retryAfter time.Duration, log *zap.Logger) service.SyncService {
	return &syncSvc{r: r, p: p, retryAfter: retryAfter, log: log, now: time.Now}
}

func (s *syncSvc) Status(fieldID uint) (string, error) {
	rec, err := s.r.FindByField(fieldID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.SyncNotSynced, nil
	}
	if err != nil {
		return "", err
	}
	return rec.Status, nil
}

func (s *syncSvc) EnsureSynced(ctx context.Context, f *entities.Field) (*entities.PolygonSync, error) {
	rec, err := s.r.FindByField(f.FieldID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rec = &entities.PolygonSync{FieldID: f.FieldID, Status: entities.SyncPending, LastAttemptAt: s.now()}
		if err := s.r.Create(rec); err != nil {
			// a concurrent trigger created it first; observe theirs
			if existing, ferr := s.r.FindByField(f.FieldID); ferr == nil {
				return existing, nil
			}
			return nil, err
		}
		return s.attempt(ctx, f, rec)

	case err != nil:
		return nil, err
	}

	switch rec.Status {
	case entities.SyncSynced:
		return rec, nil
	case entities.SyncPending:
		// one in-flight attempt per field; observe, do not re-trigger
		return rec, nil
	case entities.SyncError:
		if s.now().Sub(rec.LastAttemptAt) < s.retryAfter {
			return rec, nil
		}
		ok, err := s.r.Transition(rec.SyncID, entities.SyncError, entities.SyncPending, map[string]any{
			"error_reason":    "",
			"last_attempt_at": s.now(),
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			// lost the retry race; observe current state
			return s.r.FindByField(f.FieldID)
		}
		rec.Status = entities.SyncPending
		return s.attempt(ctx, f, rec)
	}
	return rec, nil
}

// attempt registers the polygon with the provider and lands the record on
// synced or error. Runs to completion even if the client went away.
func (s *syncSvc) attempt(ctx context.Context, f *entities.Field, rec *entities.PolygonSync) (*entities.PolygonSync, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 20*time.Second)
	defer cancel()

	name := fmt.Sprintf("field-%d", f.FieldID)
	polyID, err := s.p.CreatePolygon(ctx, name, f.Boundary)
	if err != nil {
		s.log.Warn("polygon create failed", zap.Uint("field_id", f.FieldID), zap.Error(err))
		if _, terr := s.r.Transition(rec.SyncID, entities.SyncPending, entities.SyncError, map[string]any{
			"error_reason":    err.Error(),
			"last_attempt_at": s.now(),
		}); terr != nil {
			return nil, terr
		}
		return s.r.FindByField(f.FieldID)
	}

	if _, err := s.r.Transition(rec.SyncID, entities.SyncPending, entities.SyncSynced, map[string]any{
		"provider_polygon_id": polyID,
		"error_reason":        "",
		"last_attempt_at":     s.now(),
	}); err != nil {
		return nil, err
	}
	s.log.Info("field synced", zap.Uint("field_id", f.FieldID), zap.String("polygon_id", polyID))
	return s.r.FindByField(f.FieldID)
}
