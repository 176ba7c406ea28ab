package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// NotificationType 通知类型
type NotificationType string

const (
	TypeDonationReceived NotificationType = "donation_received"
	TypeDonationRefunded NotificationType = "donation_refunded"
	TypeProofUploaded    NotificationType = "proof_uploaded"
	TypeNGOVerified      NotificationType = "ngo_verified"
)

// Notification 用户信箱里的一条通知。只写入一次，
// 读取靠轮询，没有投递确认和过期机制。
type Notification struct {
	gorm.Model
	// RecipientID 收件人业务 ID
	RecipientID string `gorm:"column:recipient_id;type:varchar(64);index;not null" json:"recipient_id"`
	// Type 通知类型
	Type NotificationType `gorm:"column:type;type:varchar(32);not null" json:"type"`
	// Title 标题
	Title string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	// Body 内容
	Body string `gorm:"column:body;type:varchar(1024)" json:"body"`
	// IsRead 已读标记
	IsRead bool `gorm:"column:is_read;index;not null;default:false" json:"is_read"`

	// 触发通知的关联对象
	TransactionID string `gorm:"column:transaction_id;type:varchar(64)" json:"transaction_id,omitempty"`
	ProjectID     string `gorm:"column:project_id;type:varchar(64)" json:"project_id,omitempty"`
	ProofID       string `gorm:"column:proof_id;type:varchar(64)" json:"proof_id,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}

// NotificationRepository 通知仓储接口
type NotificationRepository interface {
	// Save 写入通知
	Save(ctx context.Context, notification *Notification) error
	// ListByRecipient 分页列出，unreadOnly 为真时只取未读
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]*Notification, int64, error)
	// MarkRead 标记单条已读，返回是否命中收件人自己的通知
	MarkRead(ctx context.Context, recipientID string, id uint) (bool, error)
	// MarkAllRead 全部标记已读
	MarkAllRead(ctx context.Context, recipientID string) error
	// CountUnread 未读数
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

// ErrNotificationNotFound 通知不存在或不属于该用户
var ErrNotificationNotFound = errors.New("notification not found")
