package mysql

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/donatetrack/donatetrack/internal/analytics/domain"
)

// AnalyticsQueries 仪表盘聚合查询的 GORM 实现。
// 跨上下文读 donations/projects/users 表，只做 SELECT。
type AnalyticsQueries struct {
	db *gorm.DB
}

func NewAnalyticsQueries(db *gorm.DB) *AnalyticsQueries {
	return &AnalyticsQueries{db: db}
}

func (q *AnalyticsQueries) Overview(ctx context.Context, from, to time.Time) (*domain.Overview, error) {
	db := q.db.WithContext(ctx)
	overview := &domain.Overview{}

	var sums struct {
		TotalRaised    decimal.Decimal
		TotalDonations int64
	}
	err := db.Table("donations").
		Select("COALESCE(SUM(net_amount), 0) AS total_raised, COUNT(*) AS total_donations").
		Where("status = ? AND created_at BETWEEN ? AND ?", "completed", from, to).
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	overview.TotalRaised = sums.TotalRaised
	overview.TotalDonations = sums.TotalDonations

	var refunded decimal.Decimal
	err = db.Table("donations").
		Select("COALESCE(SUM(refund_amount), 0)").
		Where("status = ? AND refunded_at BETWEEN ? AND ?", "refunded", from, to).
		Scan(&refunded).Error
	if err != nil {
		return nil, err
	}
	overview.RefundedAmount = refunded

	if err := db.Table("users").Where("role = ?", "donor").Count(&overview.TotalDonors).Error; err != nil {
		return nil, err
	}
	if err := db.Table("users").Where("role = ?", "ngo").Count(&overview.TotalNGOs).Error; err != nil {
		return nil, err
	}
	if err := db.Table("projects").
		Where("status = ? AND admin_status = ?", "active", "approved").
		Count(&overview.ActiveProjects).Error; err != nil {
		return nil, err
	}
	if err := db.Table("donations").
		Where("risk_score >= ? AND fraud_reviewed = ?", 70, false).
		Count(&overview.HighRiskPending).Error; err != nil {
		return nil, err
	}

	return overview, nil
}

func (q *AnalyticsQueries) SumByCategory(ctx context.Context, from, to time.Time) ([]domain.CategorySum, error) {
	var sums []domain.CategorySum
	err := q.db.WithContext(ctx).Table("donations").
		Select("projects.category AS category, COALESCE(SUM(donations.net_amount), 0) AS raised, COUNT(*) AS count").
		Joins("JOIN projects ON projects.project_id = donations.project_id").
		Where("donations.status = ? AND donations.created_at BETWEEN ? AND ?", "completed", from, to).
		Group("projects.category").
		Order("raised DESC").
		Scan(&sums).Error
	return sums, err
}

// DonationSeries 按日或按月的捐赠时间序列
func (q *AnalyticsQueries) DonationSeries(ctx context.Context, from, to time.Time, bucket string) ([]domain.TimeBucket, error) {
	format := "%Y-%m-%d"
	if bucket == "month" {
		format = "%Y-%m"
	}

	var series []domain.TimeBucket
	err := q.db.WithContext(ctx).Table("donations").
		Select("DATE_FORMAT(created_at, ?) AS bucket, COALESCE(SUM(net_amount), 0) AS raised, COUNT(*) AS count", format).
		Where("status = ? AND created_at BETWEEN ? AND ?", "completed", from, to).
		Group("bucket").
		Order("bucket ASC").
		Scan(&series).Error
	return series, err
}

func (q *AnalyticsQueries) TopNGOs(ctx context.Context, limit int) ([]domain.NGORank, error) {
	var ranks []domain.NGORank
	err := q.db.WithContext(ctx).Table("ngo_profiles").
		Select("user_id AS ngo_id, org_name, total_raised AS raised").
		Order("total_raised DESC").
		Limit(limit).
		Scan(&ranks).Error
	return ranks, err
}

func (q *AnalyticsQueries) DonorSummary(ctx context.Context, donorID string) (*domain.DonorSummary, error) {
	summary := &domain.DonorSummary{}

	var totals struct {
		TotalDonated  decimal.Decimal
		DonationCount int64
	}
	err := q.db.WithContext(ctx).Table("donations").
		Select("COALESCE(SUM(net_amount), 0) AS total_donated, COUNT(*) AS donation_count").
		Where("donor_id = ? AND status = ?", donorID, "completed").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	summary.TotalDonated = totals.TotalDonated
	summary.DonationCount = totals.DonationCount

	err = q.db.WithContext(ctx).Table("donations").
		Select("projects.category AS category, COALESCE(SUM(donations.net_amount), 0) AS raised, COUNT(*) AS count").
		Joins("JOIN projects ON projects.project_id = donations.project_id").
		Where("donations.donor_id = ? AND donations.status = ?", donorID, "completed").
		Group("projects.category").
		Scan(&summary.ByCategory).Error
	return summary, err
}

func (q *AnalyticsQueries) NGOProjectStats(ctx context.Context, ngoID string) ([]domain.ProjectStat, error) {
	var stats []domain.ProjectStat
	err := q.db.WithContext(ctx).Table("projects").
		Select(`projects.project_id,
			projects.title,
			projects.raised_amount AS raised,
			projects.target_amount AS target,
			projects.donation_count,
			COUNT(DISTINCT proofs.id) AS proof_count,
			COUNT(DISTINCT CASE WHEN proofs.verification_status = 'verified' THEN proofs.id END) AS verified_proof`).
		Joins("LEFT JOIN proofs ON proofs.project_id = projects.project_id").
		Where("projects.ngo_id = ?", ngoID).
		Group("projects.id").
		Order("projects.created_at DESC").
		Scan(&stats).Error
	return stats, err
}
