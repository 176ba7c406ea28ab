package application

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	projectdomain "github.com/donatetrack/donatetrack/internal/project/domain"
	"github.com/donatetrack/donatetrack/internal/proof/domain"
	"github.com/donatetrack/donatetrack/pkg/contextx"
	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/donatetrack/donatetrack/pkg/utils"
)

// UploadCommand 上传证明命令
type UploadCommand struct {
	NGOID          string
	ProjectID      string
	Type           domain.ProofType
	Title          string
	Description    string
	FileURL        string
	FileMeta       string
	TransactionIDs []string
}

// ProofService 证明的上传、审核与查询
type ProofService struct {
	proofs    domain.ProofRepository
	projects  projectdomain.ProjectRepository
	publisher domain.EventPublisher
	idgen     *utils.SnowflakeID
	db        *gorm.DB
}

// NewProofService 创建证明服务实例
func NewProofService(
	proofs domain.ProofRepository,
	projects projectdomain.ProjectRepository,
	publisher domain.EventPublisher,
	idgen *utils.SnowflakeID,
	db *gorm.DB,
) *ProofService {
	return &ProofService{
		proofs:    proofs,
		projects:  projects,
		publisher: publisher,
		idgen:     idgen,
		db:        db,
	}
}

// Upload NGO 上传证明。证明记录、捐赠关联和上传事件在同一事务落库。
func (s *ProofService) Upload(ctx context.Context, cmd UploadCommand) (*ProofDTO, error) {
	if !domain.ValidType(cmd.Type) {
		return nil, domain.ErrInvalidProofType
	}

	project, err := s.projects.Get(ctx, cmd.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, projectdomain.ErrProjectNotFound
	}
	if project.NGOID != cmd.NGOID {
		return nil, domain.ErrNotProjectOwner
	}

	proof := &domain.Proof{
		ProofID:            fmt.Sprintf("PRF-%d", s.idgen.Generate()),
		ProjectID:          cmd.ProjectID,
		NGOID:              cmd.NGOID,
		Type:               cmd.Type,
		Title:              cmd.Title,
		Description:        cmd.Description,
		FileURL:            cmd.FileURL,
		FileMeta:           cmd.FileMeta,
		VerificationStatus: domain.VerificationPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.proofs.Save(txCtx, proof); err != nil {
			return err
		}
		if len(cmd.TransactionIDs) > 0 {
			if err := s.proofs.LinkDonations(txCtx, proof.ProofID, cmd.TransactionIDs); err != nil {
				return err
			}
		}
		return s.publisher.PublishProofUploaded(txCtx, domain.ProofUploadedEvent{
			ProofID:        proof.ProofID,
			ProjectID:      proof.ProjectID,
			NGOID:          proof.NGOID,
			Title:          proof.Title,
			TransactionIDs: cmd.TransactionIDs,
			UploadedAt:     time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Proof uploaded",
		"proof_id", proof.ProofID, "project_id", proof.ProjectID, "linked", len(cmd.TransactionIDs))
	return toProofDTO(proof, cmd.TransactionIDs), nil
}

// Verify 管理员审核通过
func (s *ProofService) Verify(ctx context.Context, proofID, reviewer, notes string) error {
	return s.review(ctx, proofID, func(p *domain.Proof) error {
		return p.Verify(reviewer, notes, time.Now())
	})
}

// Reject 管理员审核驳回
func (s *ProofService) Reject(ctx context.Context, proofID, reviewer, notes string) error {
	return s.review(ctx, proofID, func(p *domain.Proof) error {
		return p.Reject(reviewer, notes, time.Now())
	})
}

func (s *ProofService) review(ctx context.Context, proofID string, apply func(*domain.Proof) error) error {
	proof, err := s.proofs.GetByID(ctx, proofID)
	if err != nil {
		return err
	}
	if proof == nil {
		return domain.ErrProofNotFound
	}

	if err := apply(proof); err != nil {
		return err
	}
	if err := s.proofs.Save(ctx, proof); err != nil {
		return err
	}

	logger.Info(ctx, "Proof reviewed",
		"proof_id", proofID, "status", string(proof.VerificationStatus))
	return nil
}

// ProofListResult 证明列表
type ProofListResult struct {
	Proofs   []*ProofDTO `json:"proofs"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// ListByProject 项目页的证明列表
func (s *ProofService) ListByProject(ctx context.Context, projectID, status string, page, pageSize int) (*ProofListResult, error) {
	p := utils.NewPagination(page, pageSize, 0)

	proofs, total, err := s.proofs.ListByProject(ctx, projectID, domain.VerificationStatus(status), p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	return s.toListResult(proofs, total, p.Page, p.PageSize), nil
}

// ListMine 捐赠人查看与自己捐赠关联的证明
func (s *ProofService) ListMine(ctx context.Context, donorID string, page, pageSize int) (*ProofListResult, error) {
	p := utils.NewPagination(page, pageSize, 0)

	proofs, total, err := s.proofs.ListForDonor(ctx, donorID, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	return s.toListResult(proofs, total, p.Page, p.PageSize), nil
}

// ListPending 管理员待审队列
func (s *ProofService) ListPending(ctx context.Context, page, pageSize int) (*ProofListResult, error) {
	p := utils.NewPagination(page, pageSize, 0)

	proofs, total, err := s.proofs.ListByStatus(ctx, domain.VerificationPending, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	return s.toListResult(proofs, total, p.Page, p.PageSize), nil
}

// Get 获取证明详情，含关联交易号
func (s *ProofService) Get(ctx context.Context, proofID string) (*ProofDTO, error) {
	proof, err := s.proofs.GetByID(ctx, proofID)
	if err != nil {
		return nil, err
	}
	if proof == nil {
		return nil, domain.ErrProofNotFound
	}

	linked, err := s.proofs.LinkedTransactions(ctx, proofID)
	if err != nil {
		return nil, err
	}
	return toProofDTO(proof, linked), nil
}

func (s *ProofService) toListResult(proofs []*domain.Proof, total int64, page, pageSize int) *ProofListResult {
	dtos := make([]*ProofDTO, 0, len(proofs))
	for _, p := range proofs {
		dtos = append(dtos, toProofDTO(p, nil))
	}
	return &ProofListResult{Proofs: dtos, Total: total, Page: page, PageSize: pageSize}
}
