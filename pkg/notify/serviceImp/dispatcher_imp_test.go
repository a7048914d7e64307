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
	"soilwatch/pkg/notify/push"
	"soilwatch/pkg/notify/repositoryImp"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Notification{}, &entities.PushSubscription{}))
	return db
}

// fakePush fails the endpoints listed in gone with push.ErrGone and
// records successful deliveries.
type fakePush struct {
	gone      map[string]bool
	delivered []string
}

func (f *fakePush) Configured() bool { return true }
func (f *fakePush) Send(_ context.Context, sub *entities.PushSubscription, _ push.Payload) error {
	if f.gone[sub.Endpoint] {
		return push.ErrGone
	}
	f.delivered = append(f.delivered, sub.Endpoint)
	return nil
}

type fakeMailer struct {
	configured bool
	sendErr    error
	sentTo     []string
}

func (f *fakeMailer) Configured() bool { return f.configured }
func (f *fakeMailer) Send(to, _, _, _ string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentTo = append(f.sentTo, to)
	return nil
}

type fakeDir struct{ emails map[string]string }

func (f *fakeDir) EmailFor(_ context.Context, uid string) (string, error) {
	return f.emails[uid], nil
}

func breach(start time.Time) alert.Decision {
	return alert.Decision{Breach: true, Value: 0.22, Severity: entities.SeverityMild, EpisodeStart: start}
}

func TestDispatchPrunesGoneEndpoint(t *testing.T) {
	db := testDB(t)
	notifs := repositoryImp.NewNotifications(db)
	subs := repositoryImp.NewSubscriptions(db)
	require.NoError(t, subs.Save(&entities.PushSubscription{UserID: "u1", Endpoint: "https://push/dead"}))
	require.NoError(t, subs.Save(&entities.PushSubscription{UserID: "u1", Endpoint: "https://push/live"}))

	sender := &fakePush{gone: map[string]bool{"https://push/dead": true}}
	d := NewDispatcher(notifs, subs, sender, &fakeMailer{}, &fakeDir{}, zap.NewNop())

	f := &entities.Field{FieldID: 1, UserID: "u1", Name: "north", AlertThreshold: 0.3}
	res, err := d.Dispatch(context.Background(), f, breach(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, 1, res.PushSent)
	assert.Equal(t, 1, res.PushFailed)
	assert.Equal(t, []string{"https://push/live"}, sender.delivered)

	// the dead endpoint is gone from the store
	left, err := subs.ByUser("u1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "https://push/live", left[0].Endpoint)

	// the in-app row is there regardless of delivery
	rows, err := notifs.List("u1", false)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDispatchDeduplicatesEpisode(t *testing.T) {
	db := testDB(t)
	notifs := repositoryImp.NewNotifications(db)
	subs := repositoryImp.NewSubscriptions(db)
	require.NoError(t, subs.Save(&entities.PushSubscription{UserID: "u1", Endpoint: "https://push/live"}))

	sender := &fakePush{}
	d := NewDispatcher(notifs, subs, sender, &fakeMailer{}, &fakeDir{}, zap.NewNop())

	f := &entities.Field{FieldID: 1, UserID: "u1", Name: "north", AlertThreshold: 0.3}
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	res, err := d.Dispatch(context.Background(), f, breach(start))
	require.NoError(t, err)
	assert.True(t, res.Created)

	// same episode again: no new row, no deliveries
	res, err = d.Dispatch(context.Background(), f, breach(start))
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, 0, res.PushSent)
	assert.Len(t, sender.delivered, 1)

	rows, err := notifs.List("u1", false)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// a later episode is a fresh alert
	res, err = d.Dispatch(context.Background(), f, breach(start.AddDate(0, 0, 7)))
	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestDispatchEmailFailureIsRecorded(t *testing.T) {
	db := testDB(t)
	notifs := repositoryImp.NewNotifications(db)
	subs := repositoryImp.NewSubscriptions(db)

	mail := &fakeMailer{configured: true, sendErr: errors.New("smtp: connection refused")}
	dir := &fakeDir{emails: map[string]string{"u1": "farmer@example.com"}}
	d := NewDispatcher(notifs, subs, &fakePush{}, mail, dir, zap.NewNop())

	f := &entities.Field{FieldID: 1, UserID: "u1", Name: "north", AlertThreshold: 0.3}
	res, err := d.Dispatch(context.Background(), f, breach(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.False(t, res.EmailSent)
	assert.Contains(t, res.EmailError, "connection refused")
}

func TestDispatchEmailDelivery(t *testing.T) {
	db := testDB(t)
	notifs := repositoryImp.NewNotifications(db)
	subs := repositoryImp.NewSubscriptions(db)

	mail := &fakeMailer{configured: true}
	dir := &fakeDir{emails: map[string]string{"u1": "farmer@example.com"}}
	d := NewDispatcher(notifs, subs, &fakePush{}, mail, dir, zap.NewNop())

	f := &entities.Field{FieldID: 1, UserID: "u1", Name: "north", AlertThreshold: 0.3}
	res, err := d.Dispatch(context.Background(), f, breach(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	assert.True(t, res.EmailSent)
	assert.Equal(t, []string{"farmer@example.com"}, mail.sentTo)
}

func TestDispatchSkipsEmailWithoutAddress(t *testing.T) {
	db := testDB(t)
	d := NewDispatcher(repositoryImp.NewNotifications(db), repositoryImp.NewSubscriptions(db),
		&fakePush{}, &fakeMailer{configured: true}, &fakeDir{}, zap.NewNop())

	f := &entities.Field{FieldID: 1, UserID: "u1", Name: "north"}
	res, err := d.Dispatch(context.Background(), f, breach(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	assert.Empty(t, res.EmailError)
}
