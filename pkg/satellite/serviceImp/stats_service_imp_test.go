package serviceImp

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"soilwatch/entities"
	"soilwatch/pkg/alert"
	fieldRepoImp "soilwatch/pkg/field/repositoryImp"
	notifysvc "soilwatch/pkg/notify/service"
	syncRepoImp "soilwatch/pkg/polygonsync/repositoryImp"
	syncSvcImp "soilwatch/pkg/polygonsync/serviceImp"
	"soilwatch/pkg/provider"
	obsRepoImp "soilwatch/pkg/satellite/repositoryImp"
	"soilwatch/pkg/satellite/service"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.Field{}, &entities.PolygonSync{}, &entities.Observation{},
	))
	return db
}

// stubProvider serves canned imagery; createErr forces sync failures.
type stubProvider struct {
	images    []provider.Image
	createErr error
	searchErr error
}

func (s *stubProvider) Configured() bool { return true }
func (s *stubProvider) CreatePolygon(context.Context, string, []byte) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	return "poly-1", nil
}
func (s *stubProvider) SearchImages(context.Context, string, time.Time, time.Time) ([]provider.Image, error) {
	return s.images, s.searchErr
}

// recordingDispatcher captures breach decisions instead of delivering.
type recordingDispatcher struct{ decisions []alert.Decision }

func (d *recordingDispatcher) Dispatch(_ context.Context, _ *entities.Field, dec alert.Decision) (*notifysvc.Result, error) {
	d.decisions = append(d.decisions, dec)
	return &notifysvc.Result{Created: true}, nil
}

type fixture struct {
	svc  service.StatsService
	disp *recordingDispatcher
	prov *stubProvider
}

func setup(t *testing.T, f *entities.Field, prov *stubProvider) fixture {
	t.Helper()
	db := testDB(t)
	require.NoError(t, db.Create(f).Error)

	disp := &recordingDispatcher{}
	syncSvc := syncSvcImp.New(syncRepoImp.New(db), prov, 10*time.Minute, zap.NewNop())
	svc := New(fieldRepoImp.New(db), obsRepoImp.New(db), syncSvc, prov, disp, 20.0, zap.NewNop())
	return fixture{svc: svc, disp: disp, prov: prov}
}

func img(daysAgo int, mean, cloud float64) provider.Image {
	return provider.Image{
		Date:          time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -daysAgo),
		MeanIndex:     mean,
		CloudCoverPct: cloud,
		DataCoverPct:  100,
		Source:        "s2",
	}
}

func TestSummaryEmptyWindow(t *testing.T) {
	// scenario A: synced field, no observations
	f := &entities.Field{FieldID: 1, UserID: "u1", Name: "north", AlertThreshold: 0.3, AlertsEnabled: true, Boundary: []byte(`[[0,0],[0,1],[1,1]]`)}
	fx := setup(t, f, &stubProvider{})

	snap, err := fx.svc.Summary(context.Background(), 1, "u1", 30)
	require.NoError(t, err)
	assert.False(t, snap.NeedsSync)
	assert.Equal(t, 0, snap.Count)
	assert.Nil(t, snap.Current)
	assert.Equal(t, service.StateNoData, snap.State)
	assert.Empty(t, fx.disp.decisions)
}

func TestSummaryNeedsSync(t *testing.T) {
	// scenario B: provider rejects the polygon; no error, just needs_sync
	f := &entities.Field{FieldID: 1, UserID: "u1", Name: "north", Boundary: []byte(`[[0,0],[0,1],[1,1]]`)}
	fx := setup(t, f, &stubProvider{createErr: errors.New("bad polygon")})

	snap, err := fx.svc.Summary(context.Background(), 1, "u1", 30)
	require.NoError(t, err)
	assert.True(t, snap.NeedsSync)
	assert.Empty(t, snap.Images)
}

func TestSummaryUnknownField(t *testing.T) {
	f := &entities.Field{FieldID: 1, UserID: "u1", Boundary: []byte(`[[0,0],[0,1],[1,1]]`)}
	fx := setup(t, f, &stubProvider{})

	_, err := fx.svc.Summary(context.Background(), 99, "u1", 30)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// owned by someone else is indistinguishable from absent
	_, err = fx.svc.Summary(context.Background(), 1, "intruder", 30)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSummaryProviderOutage(t *testing.T) {
	f := &entities.Field{FieldID: 1, UserID: "u1", Boundary: []byte(`[[0,0],[0,1],[1,1]]`)}
	fx := setup(t, f, &stubProvider{})
	// sync succeeds first, then the search starts failing
	_, err := fx.svc.Summary(context.Background(), 1, "u1", 30)
	require.NoError(t, err)

	fx.prov.searchErr = errors.New("timeout")
	_, err = fx.svc.Summary(context.Background(), 1, "u1", 30)
	assert.Error(t, err)
}

func TestSummaryCloudFilterBoundary(t *testing.T) {
	f := &entities.Field{FieldID: 1, UserID: "u1", AlertsEnabled: false, Boundary: []byte(`[[0,0],[0,1],[1,1]]`)}
	fx := setup(t, f, &stubProvider{images: []provider.Image{
		img(2, 0.5, 20.0), // exactly at max: included
		img(1, 0.9, 20.1), // strictly above: excluded
	}})

	snap, err := fx.svc.Summary(context.Background(), 1, "u1", 30)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Count)
	assert.Equal(t, 0.5, *snap.Current)
}

func TestSummaryDispatchesOnBreach(t *testing.T) {
	// scenario C: 0.25 under tau=0.3 -> one mild dispatch
	f := &entities.Field{FieldID: 1, UserID: "u1", Name: "north", AlertThreshold: 0.3, AlertsEnabled: true, Boundary: []byte(`[[0,0],[0,1],[1,1]]`)}
	fx := setup(t, f, &stubProvider{images: []provider.Image{img(1, 0.25, 5)}})

	_, err := fx.svc.Summary(context.Background(), 1, "u1", 30)
	require.NoError(t, err)
	require.Len(t, fx.disp.decisions, 1)
	assert.Equal(t, entities.SeverityMild, fx.disp.decisions[0].Severity)
}

func TestSummaryNoDispatchWhenDisabled(t *testing.T) {
	f := &entities.Field{FieldID: 1, UserID: "u1", AlertThreshold: 0.3, AlertsEnabled: false, Boundary: []byte(`[[0,0],[0,1],[1,1]]`)}
	fx := setup(t, f, &stubProvider{images: []provider.Image{img(1, 0.1, 5)}})

	_, err := fx.svc.Summary(context.Background(), 1, "u1", 30)
	require.NoError(t, err)
	assert.Empty(t, fx.disp.decisions)
}

func TestSummaryEpisodeIdentityAcrossRuns(t *testing.T) {
	// scenario D: a sustained run keeps one episode; recovery then a new
	// dip starts another
	f := &entities.Field{FieldID: 1, UserID: "u1", AlertThreshold: 0.3, AlertsEnabled: true, Boundary: []byte(`[[0,0],[0,1],[1,1]]`)}
	prov := &stubProvider{images: []provider.Image{img(4, 0.25, 0)}}
	fx := setup(t, f, prov)

	_, err := fx.svc.Summary(context.Background(), 1, "u1", 30)
	require.NoError(t, err)

	prov.images = append(prov.images, img(3, 0.20, 0))
	_, err = fx.svc.Summary(context.Background(), 1, "u1", 30)
	require.NoError(t, err)

	require.Len(t, fx.disp.decisions, 2)
	assert.Equal(t, fx.disp.decisions[0].EpisodeStart, fx.disp.decisions[1].EpisodeStart)

	// recovery above tau, then a fresh dip
	prov.images = append(prov.images, img(2, 0.35, 0), img(1, 0.22, 0))
	_, err = fx.svc.Summary(context.Background(), 1, "u1", 30)
	require.NoError(t, err)

	require.Len(t, fx.disp.decisions, 3)
	assert.NotEqual(t, fx.disp.decisions[0].EpisodeStart, fx.disp.decisions[2].EpisodeStart)
}

func TestEpisodeIdentitySurvivesWindowChange(t *testing.T) {
	// one unbroken 10-day run; narrowing the window must not move the
	// episode key, or the same run would alert twice
	f := &entities.Field{FieldID: 1, UserID: "u1", AlertThreshold: 0.3, AlertsEnabled: true, Boundary: []byte(`[[0,0],[0,1],[1,1]]`)}
	var run []provider.Image
	for d := 10; d >= 1; d-- {
		run = append(run, img(d, 0.2, 0))
	}
	fx := setup(t, f, &stubProvider{images: run})

	_, err := fx.svc.Summary(context.Background(), 1, "u1", 30)
	require.NoError(t, err)
	_, err = fx.svc.Summary(context.Background(), 1, "u1", 7)
	require.NoError(t, err)

	require.Len(t, fx.disp.decisions, 2)
	assert.Equal(t, fx.disp.decisions[0].EpisodeStart, fx.disp.decisions[1].EpisodeStart)
}

func TestBuildSnapshotAggregates(t *testing.T) {
	day := func(n int) time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -n) }
	obs := []entities.Observation{
		{Date: day(0), MeanIndex: 0.7},
		{Date: day(1), MeanIndex: 0.5},
		{Date: day(2), MeanIndex: 0.3},
	}
	snap := buildSnapshot(obs)
	assert.Equal(t, 3, snap.Count)
	assert.InDelta(t, 0.5, snap.Mean, 1e-9)
	assert.Equal(t, 0.7, *snap.Current)
	assert.Equal(t, service.StateOptimal, snap.State)
	assert.Equal(t, service.TrendRising, snap.Trend)
}

func TestClassifyBuckets(t *testing.T) {
	assert.Equal(t, service.StateCritical, classify(0.32))
	assert.Equal(t, service.StateWatch, classify(0.33))
	assert.Equal(t, service.StateWatch, classify(0.65))
	assert.Equal(t, service.StateOptimal, classify(0.66))
}

func TestTrendEpsilonBand(t *testing.T) {
	day := func(n int) time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -n) }
	flat := []entities.Observation{
		{Date: day(0), MeanIndex: 0.52},
		{Date: day(1), MeanIndex: 0.50},
		{Date: day(2), MeanIndex: 0.50},
	}
	assert.Equal(t, service.TrendStable, trend(flat))

	falling := []entities.Observation{
		{Date: day(0), MeanIndex: 0.40},
		{Date: day(1), MeanIndex: 0.45},
		{Date: day(2), MeanIndex: 0.50},
	}
	assert.Equal(t, service.TrendFalling, trend(falling))
}

func TestClampDays(t *testing.T) {
	assert.Equal(t, service.DefaultWindowDays, clampDays(0))
	assert.Equal(t, service.DefaultWindowDays, clampDays(-5))
	assert.Equal(t, 90, clampDays(90))
	assert.Equal(t, service.MaxWindowDays, clampDays(1000))
}
