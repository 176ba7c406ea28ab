package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/donatetrack/donatetrack/internal/notification/domain"
	"github.com/donatetrack/donatetrack/pkg/contextx"
)

// NotificationRepository 通知仓储的 GORM 实现
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Save(ctx context.Context, notification *domain.Notification) error {
	return contextx.DBFromContext(ctx, r.db).Save(notification).Error
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]*domain.Notification, int64, error) {
	db := contextx.DBFromContext(ctx, r.db).Model(&domain.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []*domain.Notification
	err := db.Order("created_at desc").Limit(limit).Offset(offset).Find(&notifications).Error
	return notifications, total, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID string, id uint) (bool, error) {
	res := contextx.DBFromContext(ctx, r.db).Model(&domain.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	return res.RowsAffected > 0, res.Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	return contextx.DBFromContext(ctx, r.db).Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := contextx.DBFromContext(ctx, r.db).Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}
