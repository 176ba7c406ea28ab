package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// trustedInput 老账号、普通金额、常规支付方式，不应触发任何加分项
func trustedInput() Input {
	return Input{
		Amount:          decimal.NewFromInt(500),
		PaymentMethod:   "upi",
		AccountAge:      90 * 24 * time.Hour,
		DonationCount:   12,
		RecentDonations: 1,
		IsAnonymous:     false,
	}
}

func TestPolicy_Score_Baseline(t *testing.T) {
	policy := DefaultPolicy()
	result := policy.Score(trustedInput())

	assert.Equal(t, 0, result.RiskScore)
	assert.Empty(t, result.Flags)
	assert.False(t, result.HighRisk())
}

func TestPolicy_Score_Deterministic(t *testing.T) {
	policy := DefaultPolicy()
	in := Input{
		Amount:          decimal.NewFromInt(60000),
		PaymentMethod:   "wallet",
		AccountAge:      2 * 24 * time.Hour,
		DonationCount:   0,
		RecentDonations: 8,
		IsAnonymous:     true,
	}

	first := policy.Score(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, policy.Score(in))
	}
}

func TestPolicy_Score_Flags(t *testing.T) {
	policy := DefaultPolicy()

	t.Run("large amount", func(t *testing.T) {
		in := trustedInput()
		in.Amount = decimal.NewFromInt(50000)
		result := policy.Score(in)
		assert.Equal(t, 20, result.RiskScore)
		assert.Contains(t, result.Flags, "large_amount")
	})

	t.Run("very large amount supersedes large", func(t *testing.T) {
		in := trustedInput()
		in.Amount = decimal.NewFromInt(200000)
		result := policy.Score(in)
		assert.Equal(t, 45, result.RiskScore)
		assert.Contains(t, result.Flags, "very_large_amount")
		assert.NotContains(t, result.Flags, "large_amount")
	})

	t.Run("new account and first donation stack", func(t *testing.T) {
		in := trustedInput()
		in.AccountAge = 24 * time.Hour
		in.DonationCount = 0
		result := policy.Score(in)
		assert.Equal(t, 30, result.RiskScore)
		assert.Contains(t, result.Flags, "new_account")
		assert.Contains(t, result.Flags, "first_donation")
	})

	t.Run("velocity over limit", func(t *testing.T) {
		in := trustedInput()
		in.RecentDonations = 6
		result := policy.Score(in)
		assert.Equal(t, 25, result.RiskScore)
		assert.Contains(t, result.Flags, "high_velocity")

		// 正好等于上限不触发
		in.RecentDonations = 5
		assert.Equal(t, 0, policy.Score(in).RiskScore)
	})

	t.Run("risky payment method", func(t *testing.T) {
		for _, method := range []string{"wallet", "crypto", "prepaid"} {
			in := trustedInput()
			in.PaymentMethod = method
			result := policy.Score(in)
			assert.Equal(t, 10, result.RiskScore, "method %s", method)
			assert.Contains(t, result.Flags, "risky_payment_method")
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		in := trustedInput()
		in.IsAnonymous = true
		result := policy.Score(in)
		assert.Equal(t, 5, result.RiskScore)
		assert.Contains(t, result.Flags, "anonymous")
	})
}

func TestPolicy_Score_ClampedAt100(t *testing.T) {
	policy := DefaultPolicy()
	in := Input{
		Amount:          decimal.NewFromInt(500000),
		PaymentMethod:   "crypto",
		AccountAge:      time.Hour,
		DonationCount:   0,
		RecentDonations: 20,
		IsAnonymous:     true,
	}
	// 45 + 20 + 10 + 25 + 10 + 5 = 115，封顶 100
	result := policy.Score(in)
	assert.Equal(t, 100, result.RiskScore)
	assert.True(t, result.HighRisk())
}

func TestAssessment_HighRisk(t *testing.T) {
	assert.False(t, Assessment{RiskScore: 69}.HighRisk())
	assert.True(t, Assessment{RiskScore: 70}.HighRisk())
	assert.True(t, Assessment{RiskScore: 100}.HighRisk())
}
