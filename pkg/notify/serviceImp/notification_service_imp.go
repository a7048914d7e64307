package serviceImp

import (
	"soilwatch/entities"
	"soilwatch/pkg/notify/repository"
	"soilwatch/pkg/notify/service"
)

type notifySvc struct {
	notifs repository.NotificationRepository
	subs   repository.SubscriptionRepository
}

func NewNotificationService(notifs repository.NotificationRepository, subs repository.SubscriptionRepository) service.NotificationService {
	return &notifySvc{notifs: notifs, subs: subs}
}

func (s *notifySvc) List(uid string, unreadOnly bool) ([]entities.Notification, error) {
	return s.notifs.List(uid, unreadOnly)
}

func (s *notifySvc) UnreadCount(uid string) (int64, error) { return s.notifs.UnreadCount(uid) }

func (s *notifySvc) MarkRead(uid string, ids []string, all bool) error {
	return s.notifs.MarkRead(uid, ids, all)
}

func (s *notifySvc) Dismiss(uid string, ids []string, all bool) error {
	return s.notifs.Dismiss(uid, ids, all)
}

func (s *notifySvc) Subscribe(uid string, sub *entities.PushSubscription) error {
	sub.UserID = uid
	return s.subs.Save(sub)
}

func (s *notifySvc) Unsubscribe(uid, endpoint string) error {
	_, err := s.subs.DeleteByUserEndpoint(uid, endpoint)
	return err
}
