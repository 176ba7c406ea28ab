package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/donatetrack/donatetrack/internal/beneficiary/domain"
	projectdomain "github.com/donatetrack/donatetrack/internal/project/domain"
	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/donatetrack/donatetrack/pkg/utils"
)

// AddBeneficiaryCommand 添加受助对象命令
type AddBeneficiaryCommand struct {
	NGOID     string
	ProjectID string
	Name      string
	Details   string
	Location  string
}

// AddAidCommand 登记援助发放命令
type AddAidCommand struct {
	NGOID         string
	BeneficiaryID string
	TransactionID string
	Amount        decimal.Decimal
	Purpose       string
	DisbursedAt   time.Time
}

// BeneficiaryService 受助对象与援助记录管理
type BeneficiaryService struct {
	beneficiaries domain.BeneficiaryRepository
	projects      projectdomain.ProjectRepository
	idgen         *utils.SnowflakeID
}

// NewBeneficiaryService 创建服务实例
func NewBeneficiaryService(
	beneficiaries domain.BeneficiaryRepository,
	projects projectdomain.ProjectRepository,
	idgen *utils.SnowflakeID,
) *BeneficiaryService {
	return &BeneficiaryService{
		beneficiaries: beneficiaries,
		projects:      projects,
		idgen:         idgen,
	}
}

// Add NGO 为自己的项目添加受助对象
func (s *BeneficiaryService) Add(ctx context.Context, cmd AddBeneficiaryCommand) (*BeneficiaryDTO, error) {
	if err := s.checkProjectOwner(ctx, cmd.ProjectID, cmd.NGOID); err != nil {
		return nil, err
	}

	beneficiary := &domain.Beneficiary{
		BeneficiaryID: fmt.Sprintf("BNF-%d", s.idgen.Generate()),
		ProjectID:     cmd.ProjectID,
		Name:          cmd.Name,
		Details:       cmd.Details,
		Location:      cmd.Location,
	}
	if err := s.beneficiaries.Save(ctx, beneficiary); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Beneficiary added",
		"beneficiary_id", beneficiary.BeneficiaryID, "project_id", cmd.ProjectID)
	return toBeneficiaryDTO(beneficiary, nil, decimal.Zero), nil
}

// AddAid 登记一笔援助发放
func (s *BeneficiaryService) AddAid(ctx context.Context, cmd AddAidCommand) error {
	if !cmd.Amount.IsPositive() {
		return domain.ErrInvalidAidAmount
	}

	beneficiary, err := s.beneficiaries.GetByID(ctx, cmd.BeneficiaryID)
	if err != nil {
		return err
	}
	if beneficiary == nil {
		return domain.ErrBeneficiaryNotFound
	}
	if err := s.checkProjectOwner(ctx, beneficiary.ProjectID, cmd.NGOID); err != nil {
		return err
	}

	disbursedAt := cmd.DisbursedAt
	if disbursedAt.IsZero() {
		disbursedAt = time.Now()
	}

	return s.beneficiaries.AddAidRecord(ctx, &domain.AidRecord{
		BeneficiaryID: cmd.BeneficiaryID,
		TransactionID: cmd.TransactionID,
		Amount:        cmd.Amount,
		Purpose:       cmd.Purpose,
		DisbursedAt:   disbursedAt,
	})
}

// ListResult 受助对象列表
type ListResult struct {
	Beneficiaries []*BeneficiaryDTO `json:"beneficiaries"`
	Total         int64             `json:"total"`
	Page          int               `json:"page"`
	PageSize      int               `json:"page_size"`
}

// ListByProject 项目页的受助对象列表，逐个计算累计援助额
func (s *BeneficiaryService) ListByProject(ctx context.Context, projectID string, page, pageSize int) (*ListResult, error) {
	p := utils.NewPagination(page, pageSize, 0)

	beneficiaries, total, err := s.beneficiaries.ListByProject(ctx, projectID, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}

	dtos := make([]*BeneficiaryDTO, 0, len(beneficiaries))
	for _, b := range beneficiaries {
		totalAid, err := s.beneficiaries.TotalAidReceived(ctx, b.BeneficiaryID)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, toBeneficiaryDTO(b, nil, totalAid))
	}

	return &ListResult{
		Beneficiaries: dtos,
		Total:         total,
		Page:          p.Page,
		PageSize:      p.PageSize,
	}, nil
}

// Get 受助对象详情，含援助记录
func (s *BeneficiaryService) Get(ctx context.Context, beneficiaryID string) (*BeneficiaryDTO, error) {
	beneficiary, err := s.beneficiaries.GetByID(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	if beneficiary == nil {
		return nil, domain.ErrBeneficiaryNotFound
	}

	records, err := s.beneficiaries.ListAidRecords(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	totalAid, err := s.beneficiaries.TotalAidReceived(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	return toBeneficiaryDTO(beneficiary, records, totalAid), nil
}

func (s *BeneficiaryService) checkProjectOwner(ctx context.Context, projectID, ngoID string) error {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return projectdomain.ErrProjectNotFound
	}
	if project.NGOID != ngoID {
		return projectdomain.ErrNotOwner
	}
	return nil
}
