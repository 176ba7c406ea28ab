package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Overview 平台总览
type Overview struct {
	TotalRaised     decimal.Decimal `json:"total_raised"`
	TotalDonations  int64           `json:"total_donations"`
	TotalDonors     int64           `json:"total_donors"`
	TotalNGOs       int64           `json:"total_ngos"`
	ActiveProjects  int64           `json:"active_projects"`
	RefundedAmount  decimal.Decimal `json:"refunded_amount"`
	HighRiskPending int64           `json:"high_risk_pending"`
}

// CategorySum 按类目汇总
type CategorySum struct {
	Category string          `json:"category"`
	Raised   decimal.Decimal `json:"raised"`
	Count    int64           `json:"count"`
}

// TimeBucket 时间序列桶
type TimeBucket struct {
	Bucket string          `json:"bucket"`
	Raised decimal.Decimal `json:"raised"`
	Count  int64           `json:"count"`
}

// NGORank 筹款排行
type NGORank struct {
	NGOID   string          `json:"ngo_id"`
	OrgName string          `json:"org_name"`
	Raised  decimal.Decimal `json:"raised"`
}

// DonorSummary 捐赠人仪表盘
type DonorSummary struct {
	TotalDonated  decimal.Decimal `json:"total_donated"`
	DonationCount int64           `json:"donation_count"`
	ByCategory    []CategorySum   `json:"by_category"`
}

// ProjectStat NGO 仪表盘里的单项目统计
type ProjectStat struct {
	ProjectID     string          `json:"project_id"`
	Title         string          `json:"title"`
	Raised        decimal.Decimal `json:"raised"`
	Target        decimal.Decimal `json:"target"`
	DonationCount int64           `json:"donation_count"`
	ProofCount    int64           `json:"proof_count"`
	VerifiedProof int64           `json:"verified_proof"`
}

// AnalyticsQueries 仪表盘聚合查询接口。全部只读，
// 每次请求重算，与账本保持最终一致。
type AnalyticsQueries interface {
	Overview(ctx context.Context, from, to time.Time) (*Overview, error)
	SumByCategory(ctx context.Context, from, to time.Time) ([]CategorySum, error)
	DonationSeries(ctx context.Context, from, to time.Time, bucket string) ([]TimeBucket, error)
	TopNGOs(ctx context.Context, limit int) ([]NGORank, error)
	DonorSummary(ctx context.Context, donorID string) (*DonorSummary, error)
	NGOProjectStats(ctx context.Context, ngoID string) ([]ProjectStat, error)
}
