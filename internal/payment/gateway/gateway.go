package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrGatewayUnavailable 网关不可用（熔断或超时）
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrSignatureMismatch 支付回执签名校验失败
	ErrSignatureMismatch = errors.New("payment signature mismatch")
)

// Order 网关侧的支付订单
type Order struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"` // 最小货币单位
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// RefundResult 退款结果
type RefundResult struct {
	RefundID string `json:"refund_id"`
	Status   string `json:"status"`
}

// Gateway 支付网关适配器。这是系统里唯一的外部失败边界，
// 所有调用都必须带超时上下文。
type Gateway interface {
	// CreateOrder 为一笔捐赠创建支付订单
	CreateOrder(ctx context.Context, receipt string, amount decimal.Decimal, currency string) (*Order, error)
	// VerifySignature 校验支付完成回执，impl 必须是纯本地计算
	VerifySignature(orderID, paymentID, signature string) error
	// Refund 向网关发起退款
	Refund(ctx context.Context, paymentID string, amount decimal.Decimal) (*RefundResult, error)
}
