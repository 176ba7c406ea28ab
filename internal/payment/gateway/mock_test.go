package gateway

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGateway_CreateOrder(t *testing.T) {
	g := NewMockGateway("test-secret")
	ctx := context.Background()

	order, err := g.CreateOrder(ctx, "DT202603ABCDEF", decimal.NewFromInt(5000), "INR")
	require.NoError(t, err)

	// 金额换算为最小货币单位
	assert.Equal(t, int64(500000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "created", order.Status)
	assert.NotEmpty(t, order.OrderID)

	// 订单号递增不重复
	second, err := g.CreateOrder(ctx, "DT202603GHIJKL", decimal.NewFromInt(100), "INR")
	require.NoError(t, err)
	assert.NotEqual(t, order.OrderID, second.OrderID)
}

func TestMockGateway_SignatureRoundTrip(t *testing.T) {
	g := NewMockGateway("test-secret")

	signature := g.Sign("order_mock_1", "pay_42")
	assert.NoError(t, g.VerifySignature("order_mock_1", "pay_42", signature))

	t.Run("tampered payment id", func(t *testing.T) {
		err := g.VerifySignature("order_mock_1", "pay_43", signature)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewMockGateway("other-secret")
		err := other.VerifySignature("order_mock_1", "pay_42", signature)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("empty signature", func(t *testing.T) {
		err := g.VerifySignature("order_mock_1", "pay_42", "")
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})
}

func TestMockGateway_Refund(t *testing.T) {
	g := NewMockGateway("test-secret")

	result, err := g.Refund(context.Background(), "pay_42", decimal.NewFromInt(5000))
	require.NoError(t, err)
	assert.Equal(t, "processed", result.Status)
	assert.NotEmpty(t, result.RefundID)
}
