package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskLevel 风险等级
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// HighRiskThreshold 达到该分数的捐赠在审核队列中标记为高风险
const HighRiskThreshold = 70

// Policy 风控打分策略表。所有阈值可配置，打分本身是确定性的：
// 相同输入永远得到相同分数，不依赖外部信号。
type Policy struct {
	LargeAmount        decimal.Decimal // 超过该金额加分
	VeryLargeAmount    decimal.Decimal // 超过该金额额外加分
	LargeAmountScore   int
	VeryLargeScore     int
	NewAccountAge      time.Duration // 账号年龄低于该值视为新账号
	NewAccountScore    int
	FirstDonationScore int
	VelocityWindow     time.Duration // 速率统计窗口
	VelocityLimit      int           // 窗口内捐赠次数超过该值加分
	VelocityScore      int
	AnonymousScore     int
	RiskyMethodScore   int
}

// DefaultPolicy 返回默认策略表
func DefaultPolicy() Policy {
	return Policy{
		LargeAmount:        decimal.NewFromInt(50000),
		VeryLargeAmount:    decimal.NewFromInt(200000),
		LargeAmountScore:   20,
		VeryLargeScore:     25,
		NewAccountAge:      7 * 24 * time.Hour,
		NewAccountScore:    20,
		FirstDonationScore: 10,
		VelocityWindow:     time.Hour,
		VelocityLimit:      5,
		VelocityScore:      25,
		AnonymousScore:     5,
		RiskyMethodScore:   10,
	}
}

// riskyMethods 相对容易被滥用的支付方式
var riskyMethods = map[string]bool{
	"wallet":  true,
	"crypto":  true,
	"prepaid": true,
}

// Input 打分输入，全部在捐赠创建时采集
type Input struct {
	Amount          decimal.Decimal
	PaymentMethod   string
	AccountAge      time.Duration
	DonationCount   int64 // 捐赠人历史完成捐赠数
	RecentDonations int   // 速率窗口内的捐赠次数
	IsAnonymous     bool
}

// Assessment 打分结果
type Assessment struct {
	RiskScore int      `json:"risk_score"`
	Flags     []string `json:"flags"`
}

// HighRisk 分数达到阈值即为高风险
func (a Assessment) HighRisk() bool {
	return a.RiskScore >= HighRiskThreshold
}

// Score 按策略表对捐赠属性打分，结果限制在 [0, 100]。
// 只在创建时计算一次，之后不再重新评估。
func (p Policy) Score(in Input) Assessment {
	score := 0
	var flags []string

	if in.Amount.GreaterThanOrEqual(p.VeryLargeAmount) {
		score += p.LargeAmountScore + p.VeryLargeScore
		flags = append(flags, "very_large_amount")
	} else if in.Amount.GreaterThanOrEqual(p.LargeAmount) {
		score += p.LargeAmountScore
		flags = append(flags, "large_amount")
	}

	if in.AccountAge < p.NewAccountAge {
		score += p.NewAccountScore
		flags = append(flags, "new_account")
	}
	if in.DonationCount == 0 {
		score += p.FirstDonationScore
		flags = append(flags, "first_donation")
	}

	if in.RecentDonations > p.VelocityLimit {
		score += p.VelocityScore
		flags = append(flags, "high_velocity")
	}

	if riskyMethods[in.PaymentMethod] {
		score += p.RiskyMethodScore
		flags = append(flags, "risky_payment_method")
	}

	if in.IsAnonymous {
		score += p.AnonymousScore
		flags = append(flags, "anonymous")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return Assessment{RiskScore: score, Flags: flags}
}
