package application

import (
	"context"
	"time"

	"github.com/donatetrack/donatetrack/internal/analytics/domain"
)

// defaultRange 未指定日期范围时取最近 30 天
const defaultRange = 30 * 24 * time.Hour

// AnalyticsService 仪表盘查询，不做缓存，每次请求重新聚合
type AnalyticsService struct {
	queries domain.AnalyticsQueries
}

// NewAnalyticsService 创建服务实例
func NewAnalyticsService(queries domain.AnalyticsQueries) *AnalyticsService {
	return &AnalyticsService{queries: queries}
}

// AdminDashboard 管理端总览
type AdminDashboard struct {
	Overview   *domain.Overview     `json:"overview"`
	ByCategory []domain.CategorySum `json:"by_category"`
	Series     []domain.TimeBucket  `json:"series"`
	TopNGOs    []domain.NGORank     `json:"top_ngos"`
}

// AdminOverview 管理端仪表盘，bucket 支持 day/month
func (s *AnalyticsService) AdminOverview(ctx context.Context, from, to time.Time, bucket string, topN int) (*AdminDashboard, error) {
	from, to = normalizeRange(from, to)
	if bucket != "month" {
		bucket = "day"
	}
	if topN <= 0 || topN > 50 {
		topN = 10
	}

	overview, err := s.queries.Overview(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.queries.SumByCategory(ctx, from, to)
	if err != nil {
		return nil, err
	}
	series, err := s.queries.DonationSeries(ctx, from, to, bucket)
	if err != nil {
		return nil, err
	}
	topNGOs, err := s.queries.TopNGOs(ctx, topN)
	if err != nil {
		return nil, err
	}

	return &AdminDashboard{
		Overview:   overview,
		ByCategory: byCategory,
		Series:     series,
		TopNGOs:    topNGOs,
	}, nil
}

// DonorSummary 捐赠人仪表盘
func (s *AnalyticsService) DonorSummary(ctx context.Context, donorID string) (*domain.DonorSummary, error) {
	return s.queries.DonorSummary(ctx, donorID)
}

// NGODashboard NGO 仪表盘
func (s *AnalyticsService) NGODashboard(ctx context.Context, ngoID string) ([]domain.ProjectStat, error) {
	return s.queries.NGOProjectStats(ctx, ngoID)
}

func normalizeRange(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() || from.After(to) {
		from = to.Add(-defaultRange)
	}
	return from, to
}
