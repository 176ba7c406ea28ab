package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ListFilter 捐赠列表过滤条件
type ListFilter struct {
	DonorID   string
	ProjectID string
	Status    DonationStatus
	// MinRiskScore 大于 0 时只返回风险分不低于该值的捐赠
	MinRiskScore int
	// Unreviewed 只返回未复核的捐赠
	Unreviewed bool
}

// DonorSummary 捐赠人汇总
type DonorSummary struct {
	TotalAmount   decimal.Decimal
	TotalNet      decimal.Decimal
	DonationCount int64
}

// DonationRepository 捐赠仓储接口
type DonationRepository interface {
	// Save 保存或更新捐赠
	Save(ctx context.Context, donation *Donation) error
	// GetByTransactionID 根据交易号获取
	GetByTransactionID(ctx context.Context, transactionID string) (*Donation, error)
	// GetByReceipt 根据收据号获取
	GetByReceipt(ctx context.Context, receiptNumber string) (*Donation, error)
	// List 分页查询
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Donation, int64, error)
	// SummarizeDonor 汇总捐赠人的完成捐赠
	SummarizeDonor(ctx context.Context, donorID string) (*DonorSummary, error)
	// CountRecentByDonor 统计窗口内创建的捐赠数，风控速率输入
	CountRecentByDonor(ctx context.Context, donorID string, since time.Time) (int64, error)
}

// DonationCompletedEvent 捐赠完成事件
type DonationCompletedEvent struct {
	TransactionID string          `json:"transaction_id"`
	DonorID       string          `json:"donor_id"`
	ProjectID     string          `json:"project_id"`
	NGOID         string          `json:"ngo_id"`
	Amount        decimal.Decimal `json:"amount"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	ReceiptNumber string          `json:"receipt_number"`
	IsAnonymous   bool            `json:"is_anonymous"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// DonationRefundedEvent 捐赠退款事件
type DonationRefundedEvent struct {
	TransactionID string          `json:"transaction_id"`
	DonorID       string          `json:"donor_id"`
	ProjectID     string          `json:"project_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	RefundedAt    time.Time       `json:"refunded_at"`
}

// EventPublisher 捐赠事件发布接口
type EventPublisher interface {
	PublishDonationCompleted(ctx context.Context, event DonationCompletedEvent) error
	PublishDonationRefunded(ctx context.Context, event DonationRefundedEvent) error
}
