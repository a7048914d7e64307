// pkg/notify/push/push.go

package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"soilwatch/entities"
)

// ErrGone means the endpoint no longer exists; the subscription should be
// pruned, not retried.
var ErrGone = errors.New("push endpoint gone")

type Payload struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	URL      string `json:"url"`
	Severity string `json:"severity"`
}

type Sender interface {
	Configured() bool
	Send(ctx context.Context, sub *entities.PushSubscription, p Payload) error
}

type vapidSender struct {
	publicKey  string
	privateKey string
	subject    string
	timeout    time.Duration
}

func NewVAPID(publicKey, privateKey, subject string) Sender {
	return &vapidSender{publicKey: publicKey, privateKey: privateKey, subject: subject, timeout: 10 * time.Second}
}

func (s *vapidSender) Configured() bool { return s.publicKey != "" && s.privateKey != "" }

func (s *vapidSender) Send(ctx context.Context, sub *entities.PushSubscription, p Payload) error {
	if !s.Configured() {
		return errors.New("push sender not configured")
	}
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      s.subject,
		TTL:             60,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return ErrGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push endpoint returned %d", resp.StatusCode)
	}
	return nil
}
