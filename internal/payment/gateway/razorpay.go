package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/donatetrack/donatetrack/pkg/config"
	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/donatetrack/donatetrack/pkg/metrics"
)

// RazorpayGateway Razorpay 风格的网关实现。
// HTTP 调用包在熔断器里，网关连续失败时快速失败而不是阻塞请求。
type RazorpayGateway struct {
	client    *resty.Client
	breaker   *gobreaker.CircuitBreaker
	metrics   *metrics.Metrics
	keySecret string
}

// NewRazorpayGateway 创建网关客户端
func NewRazorpayGateway(cfg config.PaymentConfig, m *metrics.Metrics) *RazorpayGateway {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(200 * time.Millisecond)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "razorpay",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "payment gateway breaker state changed",
				"gateway", name, "from", from.String(), "to", to.String())
		},
	})

	return &RazorpayGateway{
		client:    client,
		breaker:   breaker,
		metrics:   m,
		keySecret: cfg.KeySecret,
	}
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// CreateOrder 创建支付订单，金额转换为最小货币单位（paise）
func (g *RazorpayGateway) CreateOrder(ctx context.Context, receipt string, amount decimal.Decimal, currency string) (*Order, error) {
	paise := amount.Mul(decimal.NewFromInt(100)).IntPart()

	start := time.Now()
	result, err := g.breaker.Execute(func() (interface{}, error) {
		var out razorpayOrderResponse
		resp, err := g.client.R().
			SetContext(ctx).
			SetBody(razorpayOrderRequest{Amount: paise, Currency: currency, Receipt: receipt}).
			SetResult(&out).
			Post("/v1/orders")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode(), resp.String())
		}
		return &out, nil
	})
	g.observe("create_order", start, err)

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, ErrGatewayUnavailable
		}
		return nil, err
	}

	out := result.(*razorpayOrderResponse)
	return &Order{
		OrderID:  out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Status:   out.Status,
	}, nil
}

// VerifySignature 校验网关回执签名。
// 签名是 HMAC-SHA256(orderID + "|" + paymentID, keySecret) 的十六进制。
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

type razorpayRefundRequest struct {
	Amount int64 `json:"amount"`
}

type razorpayRefundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Refund 发起退款
func (g *RazorpayGateway) Refund(ctx context.Context, paymentID string, amount decimal.Decimal) (*RefundResult, error) {
	paise := amount.Mul(decimal.NewFromInt(100)).IntPart()

	start := time.Now()
	result, err := g.breaker.Execute(func() (interface{}, error) {
		var out razorpayRefundResponse
		resp, err := g.client.R().
			SetContext(ctx).
			SetBody(razorpayRefundRequest{Amount: paise}).
			SetResult(&out).
			Post(fmt.Sprintf("/v1/payments/%s/refund", paymentID))
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode(), resp.String())
		}
		return &out, nil
	})
	g.observe("refund", start, err)

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, ErrGatewayUnavailable
		}
		return nil, err
	}

	out := result.(*razorpayRefundResponse)
	return &RefundResult{RefundID: out.ID, Status: out.Status}, nil
}

func (g *RazorpayGateway) observe(op string, start time.Time, err error) {
	if g.metrics == nil {
		return
	}
	g.metrics.GatewayCallSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		g.metrics.PaymentGatewayErrs.Inc()
		logger.Error(context.Background(), "payment gateway call failed", "op", op, "error", err)
	}
}
