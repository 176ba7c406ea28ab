package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// MockGateway 本地开发和测试用的网关实现。
// 订单号本地生成，签名校验用与真实网关相同的 HMAC 规则，
// 方便测试端自行构造合法签名。
type MockGateway struct {
	keySecret string
	seq       atomic.Int64
}

// NewMockGateway 创建本地网关
func NewMockGateway(keySecret string) *MockGateway {
	return &MockGateway{keySecret: keySecret}
}

// CreateOrder 本地生成订单
func (g *MockGateway) CreateOrder(ctx context.Context, receipt string, amount decimal.Decimal, currency string) (*Order, error) {
	n := g.seq.Add(1)
	return &Order{
		OrderID:  fmt.Sprintf("order_mock_%d", n),
		Amount:   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency: currency,
		Status:   "created",
	}, nil
}

// VerifySignature 与 RazorpayGateway 使用相同的签名规则
func (g *MockGateway) VerifySignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

// Sign 按网关规则生成签名，供种子脚本和测试使用
func (g *MockGateway) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Refund 本地退款，总是成功
func (g *MockGateway) Refund(ctx context.Context, paymentID string, amount decimal.Decimal) (*RefundResult, error) {
	n := g.seq.Add(1)
	return &RefundResult{
		RefundID: fmt.Sprintf("rfnd_mock_%d", n),
		Status:   "processed",
	}, nil
}
