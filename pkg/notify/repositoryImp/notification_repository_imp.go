package repositoryImp

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"soilwatch/entities"
	"soilwatch/pkg/notify/repository"
)

type notifRepo struct{ db *gorm.DB }

func NewNotifications(db *gorm.DB) repository.NotificationRepository { return &notifRepo{db} }

func (r *notifRepo) Insert(n *entities.Notification) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "field_id"}, {Name: "episode_start"}},
		DoNothing: true,
	}).Create(n)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *notifRepo) List(uid string, unreadOnly bool) ([]entities.Notification, error) {
	q := r.db.Where("user_id = ? AND dismissed_at IS NULL", uid)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var out []entities.Notification
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notifRepo) UnreadCount(uid string) (int64, error) {
	var n int64
	err := r.db.Model(&entities.Notification{}).
		Where("user_id = ? AND read_at IS NULL AND dismissed_at IS NULL", uid).
		Count(&n).Error
	return n, err
}

func (r *notifRepo) MarkRead(uid string, ids []string, all bool) error {
	return r.stamp("read_at", uid, ids, all)
}

func (r *notifRepo) Dismiss(uid string, ids []string, all bool) error {
	return r.stamp("dismissed_at", uid, ids, all)
}

func (r *notifRepo) stamp(column, uid string, ids []string, all bool) error {
	q := r.db.Model(&entities.Notification{}).
		Where("user_id = ? AND "+column+" IS NULL", uid)
	if !all {
		if len(ids) == 0 {
			return nil
		}
		q = q.Where("id IN ?", ids)
	}
	return q.Update(column, time.Now()).Error
}

type subRepo struct{ db *gorm.DB }

func NewSubscriptions(db *gorm.DB) repository.SubscriptionRepository { return &subRepo{db} }

func (r *subRepo) Save(s *entities.PushSubscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(s).Error
}

func (r *subRepo) ByUser(uid string) ([]entities.PushSubscription, error) {
	var out []entities.PushSubscription
	if err := r.db.Where("user_id = ?", uid).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subRepo) DeleteByEndpoint(endpoint string) error {
	return r.db.Where("endpoint = ?", endpoint).Delete(&entities.PushSubscription{}).Error
}

func (r *subRepo) DeleteByUserEndpoint(uid, endpoint string) (bool, error) {
	tx := r.db.Where("user_id = ? AND endpoint = ?", uid, endpoint).Delete(&entities.PushSubscription{})
	return tx.RowsAffected == 1, tx.Error
}
