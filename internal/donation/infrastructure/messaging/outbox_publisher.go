package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/donatetrack/donatetrack/internal/donation/domain"
	"github.com/donatetrack/donatetrack/pkg/contextx"
)

// 事件主题
const (
	TopicDonationCompleted = "donation.completed"
	TopicDonationRefunded  = "donation.refunded"
)

// OutboxMessage 待投递事件记录。与业务写操作同事务落库，
// 由后台 relay 投递到 Kafka，保证事件不随事务回滚而丢失。
type OutboxMessage struct {
	ID        string    `gorm:"type:varchar(36);primary_key"`
	Topic     string    `gorm:"type:varchar(100);index"`
	Key       string    `gorm:"type:varchar(64)"`
	Payload   string    `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(20);index;default:'pending'"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "donation_outbox_messages"
}

// OutboxEventPublisher 实现 domain.EventPublisher，使用 Outbox 模式
type OutboxEventPublisher struct {
	db *gorm.DB
}

// NewOutboxEventPublisher 创建发布器实例
func NewOutboxEventPublisher(db *gorm.DB) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: db}
}

// PublishDonationCompleted 发布捐赠完成事件
func (p *OutboxEventPublisher) PublishDonationCompleted(ctx context.Context, event domain.DonationCompletedEvent) error {
	return p.publish(ctx, TopicDonationCompleted, event.TransactionID, event)
}

// PublishDonationRefunded 发布捐赠退款事件
func (p *OutboxEventPublisher) PublishDonationRefunded(ctx context.Context, event domain.DonationRefundedEvent) error {
	return p.publish(ctx, TopicDonationRefunded, event.TransactionID, event)
}

func (p *OutboxEventPublisher) publish(ctx context.Context, topic, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	message := OutboxMessage{
		ID:      uuid.NewString(),
		Topic:   topic,
		Key:     key,
		Payload: string(payload),
		Status:  "pending",
	}
	return contextx.DBFromContext(ctx, p.db).Create(&message).Error
}
