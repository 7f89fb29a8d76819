package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/quizdesk/quiz-service/internal/models"
)

type NotificationPostgreSQL struct {
	db *gorm.DB
}

func NewNotificationPostgreSQL(db *gorm.DB) *NotificationPostgreSQL {
	return &NotificationPostgreSQL{db: db}
}

func (n *NotificationPostgreSQL) Create(ctx context.Context, notification *models.Notification) error {
	return n.db.WithContext(ctx).Create(notification).Error
}

func (n *NotificationPostgreSQL) MarkSent(ctx context.Context, id uint) error {
	now := time.Now().UTC()
	return n.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sent_at":    &now,
			"last_error": "",
		}).Error
}

func (n *NotificationPostgreSQL) MarkFailed(ctx context.Context, id uint, sendErr string) error {
	return n.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("last_error", sendErr).Error
}

func (n *NotificationPostgreSQL) GetByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	query := n.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}
