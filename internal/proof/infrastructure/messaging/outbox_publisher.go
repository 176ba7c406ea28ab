package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/donatetrack/donatetrack/internal/proof/domain"
	"github.com/donatetrack/donatetrack/pkg/contextx"
)

// TopicProofUploaded 证明上传事件主题
const TopicProofUploaded = "proof.uploaded"

// OutboxMessage 待投递事件记录
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
	return "proof_outbox_messages"
}

// OutboxEventPublisher 实现 domain.EventPublisher，使用 Outbox 模式
type OutboxEventPublisher struct {
	db *gorm.DB
}

// NewOutboxEventPublisher 创建发布器实例
func NewOutboxEventPublisher(db *gorm.DB) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: db}
}

// PublishProofUploaded 发布证明上传事件
func (p *OutboxEventPublisher) PublishProofUploaded(ctx context.Context, event domain.ProofUploadedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	message := OutboxMessage{
		ID:      uuid.NewString(),
		Topic:   TopicProofUploaded,
		Key:     event.ProofID,
		Payload: string(payload),
		Status:  "pending",
	}
	return contextx.DBFromContext(ctx, p.db).Create(&message).Error
}
