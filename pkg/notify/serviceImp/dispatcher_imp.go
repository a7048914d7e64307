package serviceImp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"soilwatch/entities"
	"soilwatch/pkg/alert"
	"soilwatch/pkg/notify/mailer"
	"soilwatch/pkg/notify/push"
	"soilwatch/pkg/notify/repository"
	"soilwatch/pkg/notify/service"
	"soilwatch/pkg/userdir"
)

type dispatcher struct {
	notifs repository.NotificationRepository
	subs   repository.SubscriptionRepository
	push   push.Sender
	mail   mailer.Client
	dir    userdir.Client
	log    *zap.Logger
}

func NewDispatcher(
	notifs repository.NotificationRepository,
	subs repository.SubscriptionRepository,
	sender push.Sender,
	mail mailer.Client,
	dir userdir.Client,
	log *zap.Logger,
) service.Dispatcher {
	return &dispatcher{notifs: notifs, subs: subs, push: sender, mail: mail, dir: dir, log: log}
}

func (d *dispatcher) Dispatch(ctx context.Context, f *entities.Field, dec alert.Decision) (*service.Result, error) {
	res := &service.Result{}

	n := buildNotification(f, dec)

	// in-app row first, synchronously; it is the source of truth
	created, err := d.notifs.Insert(n)
	if err != nil {
		return nil, err
	}
	if !created {
		// this breach episode is already alerted; nothing to deliver
		return res, nil
	}
	res.Created = true

	d.fanOutPush(ctx, f, n, res)
	d.sendEmail(ctx, f, n, res)
	return res, nil
}

func buildNotification(f *entities.Field, dec alert.Decision) *entities.Notification {
	title := "Low moisture index"
	if dec.Severity == entities.SeveritySevere {
		title = "Critically low moisture index"
	}
	payload, _ := json.Marshal(map[string]any{
		"field_id":  f.FieldID,
		"value":     dec.Value,
		"threshold": f.AlertThreshold,
		"severity":  dec.Severity,
		"url":       fieldURL(f.FieldID),
	})
	return &entities.Notification{
		ID:           uuid.NewString(),
		FieldID:      f.FieldID,
		UserID:       f.UserID,
		EpisodeStart: dec.EpisodeStart,
		Severity:     dec.Severity,
		Title:        title,
		Message: fmt.Sprintf("%s: index %.2f dropped below your threshold of %.2f.",
			f.Name, dec.Value, f.AlertThreshold),
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

func fieldURL(id uint) string { return fmt.Sprintf("/fields/%d", id) }

// fanOutPush delivers to every subscription independently: a dead endpoint
// is pruned, a transient failure is counted and skipped, and neither stops
// the rest of the fan-out.
func (d *dispatcher) fanOutPush(ctx context.Context, f *entities.Field, n *entities.Notification, res *service.Result) {
	if !d.push.Configured() {
		return
	}
	subs, err := d.subs.ByUser(f.UserID)
	if err != nil {
		d.log.Warn("push fan-out: listing subscriptions failed", zap.Error(err))
		return
	}
	p := push.Payload{Title: n.Title, Body: n.Message, URL: fieldURL(f.FieldID), Severity: n.Severity}
	for i := range subs {
		sub := &subs[i]
		err := d.push.Send(ctx, sub, p)
		switch {
		case errors.Is(err, push.ErrGone):
			if derr := d.subs.DeleteByEndpoint(sub.Endpoint); derr != nil {
				d.log.Warn("pruning gone subscription failed", zap.Error(derr))
			}
			res.PushFailed++
		case err != nil:
			d.log.Warn("push delivery failed", zap.String("endpoint", sub.Endpoint), zap.Error(err))
			res.PushFailed++
		default:
			res.PushSent++
		}
	}
}

func (d *dispatcher) sendEmail(ctx context.Context, f *entities.Field, n *entities.Notification, res *service.Result) {
	if !d.mail.Configured() {
		return
	}
	to, err := d.dir.EmailFor(ctx, f.UserID)
	if err != nil {
		res.EmailError = err.Error()
		d.log.Warn("email lookup failed", zap.String("uid", f.UserID), zap.Error(err))
		return
	}
	if to == "" {
		return
	}
	html, text := mailer.Bodies(n, f.Name)
	if err := d.mail.Send(to, mailer.Subject(n.Severity, f.Name), html, text); err != nil {
		res.EmailError = err.Error()
		d.log.Warn("email delivery failed", zap.String("uid", f.UserID), zap.Error(err))
		return
	}
	res.EmailSent = true
}
