package application

import (
	"context"

	"github.com/donatetrack/donatetrack/internal/donation/domain"
	"github.com/donatetrack/donatetrack/pkg/utils"
)

// DonationQueryService 捐赠读操作
type DonationQueryService struct {
	donations domain.DonationRepository
}

// NewDonationQueryService 创建捐赠查询服务实例
func NewDonationQueryService(donations domain.DonationRepository) *DonationQueryService {
	return &DonationQueryService{donations: donations}
}

// MyDonationsResult 捐赠人历史查询结果，附带汇总
type MyDonationsResult struct {
	Donations []*DonationDTO `json:"donations"`
	Total     int64          `json:"total"`
	Page      int            `json:"page"`
	PageSize  int            `json:"page_size"`
	Summary   SummaryDTO     `json:"summary"`
}

// SummaryDTO 捐赠汇总
type SummaryDTO struct {
	TotalAmount   string `json:"total_amount"`
	TotalNet      string `json:"total_net"`
	DonationCount int64  `json:"donation_count"`
}

// ListMy 分页查询捐赠人自己的捐赠历史
func (s *DonationQueryService) ListMy(ctx context.Context, donorID, status string, page, pageSize int) (*MyDonationsResult, error) {
	p := utils.NewPagination(page, pageSize, 0)

	donations, total, err := s.donations.List(ctx, domain.ListFilter{
		DonorID: donorID,
		Status:  domain.DonationStatus(status),
	}, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}

	summary, err := s.donations.SummarizeDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*DonationDTO, 0, len(donations))
	for _, d := range donations {
		dtos = append(dtos, toDonationDTO(d))
	}

	return &MyDonationsResult{
		Donations: dtos,
		Total:     total,
		Page:      p.Page,
		PageSize:  p.PageSize,
		Summary: SummaryDTO{
			TotalAmount:   summary.TotalAmount.String(),
			TotalNet:      summary.TotalNet.String(),
			DonationCount: summary.DonationCount,
		},
	}, nil
}

// GetByReceipt 根据收据号查询，捐赠本人或管理员可见
func (s *DonationQueryService) GetByReceipt(ctx context.Context, receiptNumber string) (*DonationDTO, error) {
	donation, err := s.donations.GetByReceipt(ctx, receiptNumber)
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, domain.ErrDonationNotFound
	}
	return toDonationDTO(donation), nil
}

// Get 根据交易号查询
func (s *DonationQueryService) Get(ctx context.Context, transactionID string) (*DonationDTO, error) {
	donation, err := s.donations.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, domain.ErrDonationNotFound
	}
	return toDonationDTO(donation), nil
}

// ListForProjectResult 项目捐赠列表
type ListForProjectResult struct {
	Donations []*PublicDonationDTO `json:"donations"`
	Total     int64                `json:"total"`
	Page      int                  `json:"page"`
	PageSize  int                  `json:"page_size"`
}

// ListForProject 项目页的公开捐赠列表，只含完成的捐赠，匿名捐赠隐藏捐赠人
func (s *DonationQueryService) ListForProject(ctx context.Context, projectID string, page, pageSize int) (*ListForProjectResult, error) {
	p := utils.NewPagination(page, pageSize, 0)

	donations, total, err := s.donations.List(ctx, domain.ListFilter{
		ProjectID: projectID,
		Status:    domain.StatusCompleted,
	}, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}

	dtos := make([]*PublicDonationDTO, 0, len(donations))
	for _, d := range donations {
		dtos = append(dtos, toPublicDonationDTO(d))
	}

	return &ListForProjectResult{
		Donations: dtos,
		Total:     total,
		Page:      p.Page,
		PageSize:  p.PageSize,
	}, nil
}

// HighRiskResult 高风险复核队列
type HighRiskResult struct {
	Donations []*DonationDTO `json:"donations"`
	Total     int64          `json:"total"`
	Page      int            `json:"page"`
	PageSize  int            `json:"page_size"`
}

// ListHighRisk 管理员复核队列，只含未复核的高风险捐赠
func (s *DonationQueryService) ListHighRisk(ctx context.Context, minScore int, page, pageSize int) (*HighRiskResult, error) {
	p := utils.NewPagination(page, pageSize, 0)

	donations, total, err := s.donations.List(ctx, domain.ListFilter{
		MinRiskScore: minScore,
		Unreviewed:   true,
	}, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}

	dtos := make([]*DonationDTO, 0, len(donations))
	for _, d := range donations {
		dtos = append(dtos, toDonationDTO(d))
	}

	return &HighRiskResult{
		Donations: dtos,
		Total:     total,
		Page:      p.Page,
		PageSize:  p.PageSize,
	}, nil
}
