// Package outbox 提供 outbox 表的统一投递 relay。
// 各上下文的发布器只负责与业务同事务写入自己的 outbox 表，
// relay 在后台把所有表里的待投递消息搬到 Kafka。
package outbox

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/donatetrack/donatetrack/pkg/mq"
)

// messageRow 所有 outbox 表共享的行结构
type messageRow struct {
	ID      string
	Topic   string
	Key     string
	Payload string
}

// Relay 轮询多张 outbox 表并投递到 Kafka，
// 已投递的消息保留 retention 时长后由后台清理。
type Relay struct {
	db              *gorm.DB
	producer        *mq.KafkaProducer
	tables          []string
	interval        time.Duration
	batch           int
	cleanupInterval time.Duration
	retention       time.Duration
}

// NewRelay 创建 relay 实例
func NewRelay(db *gorm.DB, producer *mq.KafkaProducer, tables ...string) *Relay {
	return &Relay{
		db:              db,
		producer:        producer,
		tables:          tables,
		interval:        time.Second,
		batch:           100,
		cleanupInterval: time.Hour,
		retention:       24 * time.Hour,
	}
}

// Run 循环投递直到上下文取消
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	cleanupTicker := time.NewTicker(r.cleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, table := range r.tables {
				if err := r.relayTable(ctx, table); err != nil {
					logger.Error(ctx, "Outbox relay batch failed", "table", table, "error", err)
				}
			}
		case <-cleanupTicker.C:
			if err := r.Cleanup(ctx, time.Now().Add(-r.retention)); err != nil {
				logger.Error(ctx, "Outbox cleanup failed", "error", err)
			}
		}
	}
}

func (r *Relay) relayTable(ctx context.Context, table string) error {
	var messages []messageRow
	if err := r.db.WithContext(ctx).Table(table).
		Where("status = ?", "pending").
		Order("created_at asc").
		Limit(r.batch).
		Find(&messages).Error; err != nil {
		return err
	}

	for _, message := range messages {
		if err := r.producer.SendRaw(ctx, message.Topic, message.Key, []byte(message.Payload)); err != nil {
			// 失败保留 pending，下一轮重试
			logger.Warn(ctx, "Outbox message delivery failed",
				"table", table, "id", message.ID, "topic", message.Topic, "error", err)
			continue
		}
		if err := r.db.WithContext(ctx).Table(table).
			Where("id = ?", message.ID).
			Updates(map[string]interface{}{"status": "sent", "updated_at": time.Now()}).Error; err != nil {
			return err
		}
	}
	return nil
}

// Cleanup 清理所有表里已投递的旧消息
func (r *Relay) Cleanup(ctx context.Context, before time.Time) error {
	for _, table := range r.tables {
		if err := r.db.WithContext(ctx).
			Exec("DELETE FROM "+table+" WHERE status = ? AND updated_at < ?", "sent", before).Error; err != nil {
			return err
		}
	}
	return nil
}
