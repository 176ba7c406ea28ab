package application

import (
	"context"
	"fmt"
	"time"

	"github.com/donatetrack/donatetrack/internal/notification/domain"
	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/donatetrack/donatetrack/pkg/metrics"
	"github.com/donatetrack/donatetrack/pkg/utils"
)

// NotificationService 信箱读写
type NotificationService struct {
	notifications domain.NotificationRepository
	metrics       *metrics.Metrics
}

// NewNotificationService 创建服务实例
func NewNotificationService(notifications domain.NotificationRepository, m *metrics.Metrics) *NotificationService {
	return &NotificationService{notifications: notifications, metrics: m}
}

// Notify 写入一条通知
func (s *NotificationService) Notify(ctx context.Context, notification *domain.Notification) error {
	if err := s.notifications.Save(ctx, notification); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.NotificationsSent.Inc()
	}
	logger.Debug(ctx, "Notification created",
		"recipient_id", notification.RecipientID, "type", string(notification.Type))
	return nil
}

// NotificationDTO 通知数据传输对象
type NotificationDTO struct {
	ID            uint      `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Body          string    `json:"body,omitempty"`
	IsRead        bool      `json:"is_read"`
	TransactionID string    `json:"transaction_id,omitempty"`
	ProjectID     string    `json:"project_id,omitempty"`
	ProofID       string    `json:"proof_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListResult 信箱分页结果
type ListResult struct {
	Notifications []*NotificationDTO `json:"notifications"`
	Total         int64              `json:"total"`
	Unread        int64              `json:"unread"`
	Page          int                `json:"page"`
	PageSize      int                `json:"page_size"`
}

// ListMy 轮询信箱
func (s *NotificationService) ListMy(ctx context.Context, recipientID string, unreadOnly bool, page, pageSize int) (*ListResult, error) {
	p := utils.NewPagination(page, pageSize, 0)

	notifications, total, err := s.notifications.ListByRecipient(ctx, recipientID, unreadOnly, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	unread, err := s.notifications.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, &NotificationDTO{
			ID:            n.ID,
			Type:          string(n.Type),
			Title:         n.Title,
			Body:          n.Body,
			IsRead:        n.IsRead,
			TransactionID: n.TransactionID,
			ProjectID:     n.ProjectID,
			ProofID:       n.ProofID,
			CreatedAt:     n.CreatedAt,
		})
	}

	return &ListResult{
		Notifications: dtos,
		Total:         total,
		Unread:        unread,
		Page:          p.Page,
		PageSize:      p.PageSize,
	}, nil
}

// MarkRead 标记单条已读
func (s *NotificationService) MarkRead(ctx context.Context, recipientID string, id uint) error {
	hit, err := s.notifications.MarkRead(ctx, recipientID, id)
	if err != nil {
		return err
	}
	if !hit {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead 全部标记已读
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) error {
	return s.notifications.MarkAllRead(ctx, recipientID)
}

// FormatAmount 通知文案里的金额展示
func FormatAmount(amount string) string {
	return fmt.Sprintf("₹%s", amount)
}
