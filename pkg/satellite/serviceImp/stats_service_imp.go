package serviceImp

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"soilwatch/entities"
	"soilwatch/pkg/alert"
	fieldrepo "soilwatch/pkg/field/repository"
	notifysvc "soilwatch/pkg/notify/service"
	syncsvc "soilwatch/pkg/polygonsync/service"
	"soilwatch/pkg/provider"
	"soilwatch/pkg/satellite/repository"
	"soilwatch/pkg/satellite/service"
)

type statsSvc struct {
	fields     fieldrepo.FieldRepository
	obs        repository.ObservationRepository
	sync       syncsvc.SyncService
	p          provider.Client
	dispatcher notifysvc.Dispatcher
	maxCloud   float64
	log        *zap.Logger
	now        func() time.Time
}

func New(
	fields fieldrepo.FieldRepository,
	obs repository.ObservationRepository,
	sync syncsvc.SyncService,
	p provider.Client,
	dispatcher notifysvc.Dispatcher,
	maxCloud float64,
	log *zap.Logger,
) service.StatsService {
	return &statsSvc{fields: fields, obs: obs, sync: sync, p: p, dispatcher: dispatcher, maxCloud: maxCloud, log: log, now: time.Now}
}

func clampDays(days int) int {
	if days <= 0 {
		return service.DefaultWindowDays
	}
	if days > service.MaxWindowDays {
		return service.MaxWindowDays
	}
	return days
}

func (s *statsSvc) SyncNow(ctx context.Context, fieldID uint, uid string) (*entities.PolygonSync, error) {
	f, err := s.fields.FindByID(fieldID, uid)
	if err != nil {
		return nil, err
	}
	return s.sync.EnsureSynced(ctx, f)
}

func (s *statsSvc) Summary(ctx context.Context, fieldID uint, uid string, days int) (*service.Snapshot, error) {
	f, err := s.fields.FindByID(fieldID, uid)
	if err != nil {
		return nil, err
	}
	days = clampDays(days)

	rec, err := s.sync.EnsureSynced(ctx, f)
	if err != nil {
		return nil, err
	}
	if rec.Status != entities.SyncSynced || rec.ProviderPolygonID == nil {
		return &service.Snapshot{
			NeedsSync: true,
			State:     service.StateNoData,
			Trend:     service.TrendStable,
			Images:    []entities.Observation{},
		}, nil
	}

	to := s.now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -days)

	imgs, err := s.p.SearchImages(ctx, *rec.ProviderPolygonID, from, to)
	if err != nil {
		return nil, fmt.Errorf("imagery search: %w", err)
	}
	rows := make([]entities.Observation, 0, len(imgs))
	for _, im := range imgs {
		rows = append(rows, entities.Observation{
			FieldID:       f.FieldID,
			Date:          im.Date.UTC().Truncate(24 * time.Hour),
			Source:        im.Source,
			MeanIndex:     im.MeanIndex,
			MinIndex:      im.MinIndex,
			MaxIndex:      im.MaxIndex,
			CloudCoverPct: im.CloudCoverPct,
			DataCoverPct:  im.DataCoverPct,
		})
	}
	if err := s.obs.Upsert(rows); err != nil {
		return nil, err
	}

	cached, err := s.obs.Window(f.FieldID, from)
	if err != nil {
		return nil, err
	}

	filtered := filterClouds(cached, s.maxCloud)
	snap := buildSnapshot(filtered)

	// breach check rides the same request; dispatch failures are logged,
	// never fail the statistics response
	if dec := alert.Evaluate(f.AlertThreshold, f.AlertsEnabled, filtered); dec.Breach {
		// EpisodeStart must not depend on the requested window: re-derive
		// it over the full cached history so an unbroken run keeps one
		// dedup key no matter how the caller slices the window
		hist, herr := s.obs.History(f.FieldID)
		if herr != nil {
			return nil, herr
		}
		dec = alert.Evaluate(f.AlertThreshold, f.AlertsEnabled, filterClouds(hist, s.maxCloud))
		if _, derr := s.dispatcher.Dispatch(ctx, f, dec); derr != nil {
			s.log.Warn("alert dispatch failed", zap.Uint("field_id", f.FieldID), zap.Error(derr))
		}
	}

	return snap, nil
}

// filterClouds drops observations whose cloud coverage strictly exceeds max.
func filterClouds(obs []entities.Observation, max float64) []entities.Observation {
	out := make([]entities.Observation, 0, len(obs))
	for _, o := range obs {
		if o.CloudCoverPct > max {
			continue
		}
		out = append(out, o)
	}
	return out
}

// buildSnapshot aggregates a newest-first, quality-filtered set.
func buildSnapshot(obs []entities.Observation) *service.Snapshot {
	snap := &service.Snapshot{
		State:  service.StateNoData,
		Trend:  service.TrendStable,
		Images: obs,
	}
	if len(obs) == 0 {
		return snap
	}

	var sum float64
	for _, o := range obs {
		sum += o.MeanIndex
	}
	cur := obs[0].MeanIndex
	snap.Count = len(obs)
	snap.Mean = sum / float64(len(obs))
	snap.Current = &cur
	snap.State = classify(cur)
	snap.Trend = trend(obs)
	return snap
}

func classify(v float64) string {
	switch {
	case v < service.LowCutoff:
		return service.StateCritical
	case v < service.GoodCutoff:
		return service.StateWatch
	default:
		return service.StateOptimal
	}
}

// trend compares the current value to the mean of the earliest third of
// the window; the epsilon band keeps sensor noise from flip-flopping the
// direction.
func trend(obs []entities.Observation) string {
	if len(obs) < 3 {
		return service.TrendStable
	}
	third := obs[len(obs)-len(obs)/3:] // oldest third (newest-first order)
	var sum float64
	for _, o := range third {
		sum += o.MeanIndex
	}
	baseline := sum / float64(len(third))
	diff := obs[0].MeanIndex - baseline
	switch {
	case diff > service.TrendEpsilon:
		return service.TrendRising
	case diff < -service.TrendEpsilon:
		return service.TrendFalling
	default:
		return service.TrendStable
	}
}
