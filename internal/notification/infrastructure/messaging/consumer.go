package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"

	donationdomain "github.com/donatetrack/donatetrack/internal/donation/domain"
	identitydomain "github.com/donatetrack/donatetrack/internal/identity/domain"
	"github.com/donatetrack/donatetrack/internal/notification/application"
	"github.com/donatetrack/donatetrack/internal/notification/domain"
	proofdomain "github.com/donatetrack/donatetrack/internal/proof/domain"
	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/donatetrack/donatetrack/pkg/mq"
)

// 消费的事件主题
const (
	TopicDonationCompleted = "donation.completed"
	TopicDonationRefunded  = "donation.refunded"
	TopicProofUploaded     = "proof.uploaded"
	TopicNGOVerified       = "ngo.verified"
)

// Consumer 消费领域事件并写入用户信箱。
// 每个主题一个 reader，处理失败的消息发往死信队列。
type Consumer struct {
	cfg       mq.KafkaConfig
	svc       *application.NotificationService
	donations donationdomain.DonationRepository
	dlq       *mq.DeadLetterQueue
}

// NewConsumer 创建消费者实例
func NewConsumer(
	cfg mq.KafkaConfig,
	svc *application.NotificationService,
	donations donationdomain.DonationRepository,
	dlq *mq.DeadLetterQueue,
) *Consumer {
	return &Consumer{cfg: cfg, svc: svc, donations: donations, dlq: dlq}
}

// Run 为每个主题启动一个消费循环，阻塞直到上下文取消
func (c *Consumer) Run(ctx context.Context) {
	topics := map[string]func(context.Context, *mq.Message) error{
		TopicDonationCompleted: c.onDonationCompleted,
		TopicDonationRefunded:  c.onDonationRefunded,
		TopicProofUploaded:     c.onProofUploaded,
		TopicNGOVerified:       c.onNGOVerified,
	}

	for topic, handle := range topics {
		go c.consume(ctx, topic, handle)
	}

	<-ctx.Done()
}

func (c *Consumer) consume(ctx context.Context, topic string, handle func(context.Context, *mq.Message) error) {
	consumer, err := mq.NewConsumer(c.cfg, topic)
	if err != nil {
		logger.Error(ctx, "Failed to create notification consumer", "topic", topic, "error", err)
		return
	}
	defer consumer.Close()

	for {
		message, err := consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			logger.Error(ctx, "Failed to read notification event", "topic", topic, "error", err)
			continue
		}

		if err := handle(ctx, message); err != nil {
			logger.Error(ctx, "Failed to handle notification event",
				"topic", topic, "key", message.Key, "error", err)
			if c.dlq != nil {
				if dlqErr := c.dlq.Send(ctx, message, "notification handler failed", err); dlqErr != nil {
					logger.Error(ctx, "Failed to send to dead letter queue", "error", dlqErr)
				}
			}
		}
	}
}

// onDonationCompleted 捐赠完成后通知收款 NGO
func (c *Consumer) onDonationCompleted(ctx context.Context, message *mq.Message) error {
	var event donationdomain.DonationCompletedEvent
	if err := message.UnmarshalPayload(&event); err != nil {
		return err
	}

	donor := "An anonymous donor"
	if !event.IsAnonymous {
		donor = event.DonorID
	}

	return c.svc.Notify(ctx, &domain.Notification{
		RecipientID:   event.NGOID,
		Type:          domain.TypeDonationReceived,
		Title:         "New donation received",
		Body:          fmt.Sprintf("%s donated %s (net %s) to your project, receipt %s", donor, application.FormatAmount(event.Amount.String()), application.FormatAmount(event.NetAmount.String()), event.ReceiptNumber),
		TransactionID: event.TransactionID,
		ProjectID:     event.ProjectID,
	})
}

// onDonationRefunded 退款后通知捐赠人
func (c *Consumer) onDonationRefunded(ctx context.Context, message *mq.Message) error {
	var event donationdomain.DonationRefundedEvent
	if err := message.UnmarshalPayload(&event); err != nil {
		return err
	}

	return c.svc.Notify(ctx, &domain.Notification{
		RecipientID:   event.DonorID,
		Type:          domain.TypeDonationRefunded,
		Title:         "Refund processed",
		Body:          fmt.Sprintf("Your donation of %s to project %s has been refunded", application.FormatAmount(event.Amount.String()), event.ProjectID),
		TransactionID: event.TransactionID,
		ProjectID:     event.ProjectID,
	})
}

// onProofUploaded 证明上传后通知关联捐赠的捐赠人
func (c *Consumer) onProofUploaded(ctx context.Context, message *mq.Message) error {
	var event proofdomain.ProofUploadedEvent
	if err := message.UnmarshalPayload(&event); err != nil {
		return err
	}

	// 同一捐赠人关联多笔捐赠时只通知一次
	notified := make(map[string]bool, len(event.TransactionIDs))
	for _, txnID := range event.TransactionIDs {
		donation, err := c.donations.GetByTransactionID(ctx, txnID)
		if err != nil {
			return err
		}
		if donation == nil || notified[donation.DonorID] {
			continue
		}
		notified[donation.DonorID] = true

		if err := c.svc.Notify(ctx, &domain.Notification{
			RecipientID:   donation.DonorID,
			Type:          domain.TypeProofUploaded,
			Title:         "Impact proof added for your donation",
			Body:          fmt.Sprintf("The NGO uploaded proof material %q", event.Title),
			TransactionID: txnID,
			ProjectID:     event.ProjectID,
			ProofID:       event.ProofID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// onNGOVerified 认证结果通知 NGO
func (c *Consumer) onNGOVerified(ctx context.Context, message *mq.Message) error {
	var event identitydomain.NGOVerifiedEvent
	if err := message.UnmarshalPayload(&event); err != nil {
		return err
	}

	return c.svc.Notify(ctx, &domain.Notification{
		RecipientID: event.NGOID,
		Type:        domain.TypeNGOVerified,
		Title:       "Verification status updated",
		Body:        fmt.Sprintf("Your organization verification level is now %s (compliance score %d)", string(event.Level), event.ComplianceScore),
	})
}
