package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	frauddomain "github.com/donatetrack/donatetrack/internal/fraud/domain"
	"github.com/donatetrack/donatetrack/pkg/utils"
)

// DonationStatus 捐赠状态
type DonationStatus string

const (
	StatusPending    DonationStatus = "pending"
	StatusProcessing DonationStatus = "processing"
	StatusCompleted  DonationStatus = "completed"
	StatusFailed     DonationStatus = "failed"
	StatusCancelled  DonationStatus = "cancelled"
	StatusRefunded   DonationStatus = "refunded"
)

// PaymentStatus 支付侧状态，独立于捐赠状态记录网关进度
type PaymentStatus string

const (
	PaymentInitiated  PaymentStatus = "initiated"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentCaptured   PaymentStatus = "captured"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
)

var (
	// MinAmount 单笔最小捐赠额
	MinAmount = decimal.NewFromInt(1)
	// MaxAmount 单笔最大捐赠额
	MaxAmount = decimal.NewFromInt(1000000)

	// feeRate 手续费率
	feeRate = decimal.NewFromFloat(0.025)
	// feeFixed 固定手续费
	feeFixed = decimal.NewFromInt(3)
)

// ValidAmount 金额必须在 [1, 1000000] 闭区间内
func ValidAmount(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(MinAmount) && amount.LessThanOrEqual(MaxAmount)
}

// ProcessingFee 手续费 = round(amount * 0.025 + 3)，四舍五入到整数
func ProcessingFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(feeRate).Add(feeFixed).Round(0)
}

// Donation 捐赠记录。创建时为 pending，网关确认后进入终态，
// completed 之后只允许单向转为 refunded。
type Donation struct {
	gorm.Model
	// TransactionID 全局唯一交易号
	TransactionID string `gorm:"column:transaction_id;type:varchar(64);uniqueIndex;not null" json:"transaction_id"`
	// DonorID 捐赠人业务 ID
	DonorID string `gorm:"column:donor_id;type:varchar(64);index;not null" json:"donor_id"`
	// ProjectID 项目业务 ID
	ProjectID string `gorm:"column:project_id;type:varchar(64);index;not null" json:"project_id"`
	// Amount 捐赠总额
	Amount decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	// ProcessingFee 平台手续费
	ProcessingFee decimal.Decimal `gorm:"column:processing_fee;type:decimal(18,2);not null" json:"processing_fee"`
	// NetAmount 项目实际入账净额
	NetAmount decimal.Decimal `gorm:"column:net_amount;type:decimal(18,2);not null" json:"net_amount"`
	// Status 捐赠状态
	Status DonationStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	// PaymentStatus 支付状态
	PaymentStatus PaymentStatus `gorm:"column:payment_status;type:varchar(20);not null" json:"payment_status"`
	// PaymentMethod 支付方式
	PaymentMethod string `gorm:"column:payment_method;type:varchar(32)" json:"payment_method"`
	// GatewayOrderID 网关侧订单号
	GatewayOrderID string `gorm:"column:gateway_order_id;type:varchar(64);index" json:"gateway_order_id"`
	// GatewayPaymentID 网关侧支付号，确认后写入
	GatewayPaymentID string `gorm:"column:gateway_payment_id;type:varchar(64)" json:"gateway_payment_id"`
	// ReceiptNumber 收据号，仅完成的捐赠持有。
	// 列可空：唯一索引只约束已签发的收据，未完成捐赠不占用索引。
	ReceiptNumber *string `gorm:"column:receipt_number;type:varchar(20);uniqueIndex" json:"receipt_number,omitempty"`
	// RiskScore 创建时计算的风险分
	RiskScore int `gorm:"column:risk_score;not null;default:0" json:"risk_score"`
	// RiskFlags 风险标记，JSON 数组
	RiskFlags string `gorm:"column:risk_flags;type:varchar(512)" json:"risk_flags"`
	// IsAnonymous 匿名捐赠
	IsAnonymous bool `gorm:"column:is_anonymous;not null;default:false" json:"is_anonymous"`
	// Message 捐赠附言
	Message string `gorm:"column:message;type:varchar(512)" json:"message"`
	// FraudReviewed 高风险捐赠的人工复核标记
	FraudReviewed bool `gorm:"column:fraud_reviewed;not null;default:false" json:"fraud_reviewed"`
	// CompletedAt 完成时间
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`

	// 退款子记录
	RefundAmount    decimal.Decimal `gorm:"column:refund_amount;type:decimal(18,2);not null;default:0" json:"refund_amount"`
	RefundReason    string          `gorm:"column:refund_reason;type:varchar(512)" json:"refund_reason"`
	RefundProcessor string          `gorm:"column:refund_processor;type:varchar(64)" json:"refund_processor"`
	RefundedAt      *time.Time      `gorm:"column:refunded_at" json:"refunded_at"`
}

// TableName 指定表名
func (Donation) TableName() string {
	return "donations"
}

// NewReceiptNumber 生成收据号，格式 DT<年><月><6 位大写字母数字>
func NewReceiptNumber(now time.Time) string {
	return fmt.Sprintf("DT%04d%02d%s", now.Year(), int(now.Month()), utils.RandUpperAlnum(6))
}

// Complete 将待支付捐赠标记为完成并签发收据。
// 转换只允许从 pending/processing 发起，幂等保护由调用方负责。
func (d *Donation) Complete(paymentID string, now time.Time) error {
	if d.Status != StatusPending && d.Status != StatusProcessing {
		return ErrInvalidStatus
	}
	d.Status = StatusCompleted
	d.PaymentStatus = PaymentCaptured
	d.GatewayPaymentID = paymentID
	receipt := NewReceiptNumber(now)
	d.ReceiptNumber = &receipt
	d.CompletedAt = &now
	return nil
}

// Fail 标记支付校验失败
func (d *Donation) Fail() error {
	if d.Status != StatusPending && d.Status != StatusProcessing {
		return ErrInvalidStatus
	}
	d.Status = StatusFailed
	d.PaymentStatus = PaymentFailed
	return nil
}

// Cancel 取消未支付的捐赠
func (d *Donation) Cancel() error {
	if d.Status != StatusPending && d.Status != StatusProcessing {
		return ErrInvalidStatus
	}
	d.Status = StatusCancelled
	d.PaymentStatus = PaymentCancelled
	return nil
}

// Refund 将完成的捐赠转为退款。退款金额为捐赠总额，
// 已入账的项目和捐赠人累计数不回滚。
func (d *Donation) Refund(reason, processor string, now time.Time) error {
	if d.Status != StatusCompleted {
		return ErrNotRefundable
	}
	d.Status = StatusRefunded
	d.PaymentStatus = PaymentRefunded
	d.RefundAmount = d.Amount
	d.RefundReason = reason
	d.RefundProcessor = processor
	d.RefundedAt = &now
	return nil
}

// Receipt 收据号的展示值，未签发时为空串
func (d *Donation) Receipt() string {
	if d.ReceiptNumber == nil {
		return ""
	}
	return *d.ReceiptNumber
}

// HighRisk 创建时的风险分是否达到高风险阈值
func (d *Donation) HighRisk() bool {
	return d.RiskScore >= frauddomain.HighRiskThreshold
}
