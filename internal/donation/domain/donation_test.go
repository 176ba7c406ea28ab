package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingFee(t *testing.T) {
	cases := []struct {
		amount string
		fee    string
	}{
		{"1", "3"},      // 0.025 + 3 = 3.025 -> 3
		{"100", "6"},    // 2.5 + 3 = 5.5 -> 6
		{"1000", "28"},  // 25 + 3 = 28
		{"5000", "128"}, // 125 + 3 = 128
		{"999", "28"},   // 24.975 + 3 = 27.975 -> 28
		{"1000000", "25003"},
	}
	for _, tc := range cases {
		amount := decimal.RequireFromString(tc.amount)
		assert.Equal(t, tc.fee, ProcessingFee(amount).String(), "amount %s", tc.amount)
	}
}

func TestValidAmount(t *testing.T) {
	assert.False(t, ValidAmount(decimal.RequireFromString("0.99")))
	assert.True(t, ValidAmount(decimal.NewFromInt(1)))
	assert.True(t, ValidAmount(decimal.NewFromInt(1000000)))
	assert.False(t, ValidAmount(decimal.RequireFromString("1000000.01")))
	assert.False(t, ValidAmount(decimal.Zero))
	assert.False(t, ValidAmount(decimal.NewFromInt(-500)))
}

func TestNewReceiptNumber(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^DT202603[A-Z0-9]{6}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		receipt := NewReceiptNumber(now)
		assert.Regexp(t, pattern, receipt)
		seen[receipt] = true
	}
	// 随机后缀应当几乎不重复
	assert.Greater(t, len(seen), 45)
}

func newPendingDonation() *Donation {
	amount := decimal.NewFromInt(5000)
	fee := ProcessingFee(amount)
	return &Donation{
		TransactionID: "TXN-1",
		DonorID:       "USR-1",
		ProjectID:     "PRJ-1",
		Amount:        amount,
		ProcessingFee: fee,
		NetAmount:     amount.Sub(fee),
		Status:        StatusPending,
		PaymentStatus: PaymentInitiated,
	}
}

func TestDonation_ReceiptOnlyOnCompletion(t *testing.T) {
	// 未完成的捐赠不持有收据号，列为 NULL，
	// 多笔待支付记录才能共存于唯一索引之下。
	first := newPendingDonation()
	second := newPendingDonation()
	second.TransactionID = "TXN-2"

	assert.Nil(t, first.ReceiptNumber)
	assert.Nil(t, second.ReceiptNumber)
	assert.Empty(t, first.Receipt())

	require.NoError(t, first.Complete("pay_1", time.Now()))
	require.NotNil(t, first.ReceiptNumber)
	assert.Nil(t, second.ReceiptNumber)
}

func TestDonation_Complete(t *testing.T) {
	now := time.Now()

	t.Run("from pending", func(t *testing.T) {
		d := newPendingDonation()
		require.NoError(t, d.Complete("pay_123", now))

		assert.Equal(t, StatusCompleted, d.Status)
		assert.Equal(t, PaymentCaptured, d.PaymentStatus)
		assert.Equal(t, "pay_123", d.GatewayPaymentID)
		require.NotNil(t, d.ReceiptNumber)
		assert.NotEmpty(t, d.Receipt())
		require.NotNil(t, d.CompletedAt)
		assert.True(t, d.CompletedAt.Equal(now))
	})

	t.Run("from processing", func(t *testing.T) {
		d := newPendingDonation()
		d.Status = StatusProcessing
		assert.NoError(t, d.Complete("pay_123", now))
	})

	t.Run("terminal states rejected", func(t *testing.T) {
		for _, status := range []DonationStatus{StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded} {
			d := newPendingDonation()
			d.Status = status
			assert.ErrorIs(t, d.Complete("pay_123", now), ErrInvalidStatus, "status %s", status)
		}
	})
}

func TestDonation_FailAndCancel(t *testing.T) {
	d := newPendingDonation()
	require.NoError(t, d.Fail())
	assert.Equal(t, StatusFailed, d.Status)
	assert.Equal(t, PaymentFailed, d.PaymentStatus)

	// 终态不可再取消
	assert.ErrorIs(t, d.Cancel(), ErrInvalidStatus)

	d2 := newPendingDonation()
	require.NoError(t, d2.Cancel())
	assert.Equal(t, StatusCancelled, d2.Status)
}

func TestDonation_Refund(t *testing.T) {
	now := time.Now()

	t.Run("only completed is refundable", func(t *testing.T) {
		d := newPendingDonation()
		assert.ErrorIs(t, d.Refund("duplicate payment", "razorpay", now), ErrNotRefundable)
	})

	t.Run("refund captures full amount", func(t *testing.T) {
		d := newPendingDonation()
		require.NoError(t, d.Complete("pay_123", now))
		require.NoError(t, d.Refund("duplicate payment", "razorpay", now))

		assert.Equal(t, StatusRefunded, d.Status)
		assert.Equal(t, PaymentRefunded, d.PaymentStatus)
		assert.True(t, d.RefundAmount.Equal(d.Amount))
		assert.Equal(t, "duplicate payment", d.RefundReason)
		require.NotNil(t, d.RefundedAt)

		// 退款不可重复
		assert.ErrorIs(t, d.Refund("again", "razorpay", now), ErrNotRefundable)
	})
}

func TestDonation_HighRisk(t *testing.T) {
	d := newPendingDonation()
	d.RiskScore = 69
	assert.False(t, d.HighRisk())
	d.RiskScore = 70
	assert.True(t, d.HighRisk())
}
