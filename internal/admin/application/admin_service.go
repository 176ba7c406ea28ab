package application

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	identitydomain "github.com/donatetrack/donatetrack/internal/identity/domain"
	projectdomain "github.com/donatetrack/donatetrack/internal/project/domain"
	"github.com/donatetrack/donatetrack/pkg/contextx"
	"github.com/donatetrack/donatetrack/pkg/logger"
)

var (
	// ErrInvalidLevel 非法信任等级
	ErrInvalidLevel = errors.New("invalid verification level")
	// ErrNotNGO 目标用户不是公益组织
	ErrNotNGO = errors.New("user is not an ngo")
	// ErrInvalidDecision 审核结论必须是 approve 或 reject
	ErrInvalidDecision = errors.New("moderation decision must be approve or reject")
)

// AdminService 管理端操作：NGO 认证与项目审核
type AdminService struct {
	ngos      identitydomain.NGOProfileRepository
	projects  projectdomain.ProjectRepository
	publisher identitydomain.EventPublisher
	db        *gorm.DB
}

// NewAdminService 创建管理服务实例
func NewAdminService(
	ngos identitydomain.NGOProfileRepository,
	projects projectdomain.ProjectRepository,
	publisher identitydomain.EventPublisher,
	db *gorm.DB,
) *AdminService {
	return &AdminService{
		ngos:      ngos,
		projects:  projects,
		publisher: publisher,
		db:        db,
	}
}

// VerifyNGO 设置 NGO 信任等级，合规分随等级查表更新，
// 档案更新与认证事件在同一事务落库。
func (s *AdminService) VerifyNGO(ctx context.Context, ngoID string, level identitydomain.VerificationLevel, notes string) error {
	if !level.Valid() {
		return ErrInvalidLevel
	}

	profile, err := s.ngos.GetByUser(ctx, ngoID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrNotNGO
	}

	profile.ApplyVerification(level, notes)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.ngos.Save(txCtx, profile); err != nil {
			return err
		}
		return s.publisher.PublishNGOVerified(txCtx, identitydomain.NGOVerifiedEvent{
			NGOID:           ngoID,
			OrgName:         profile.OrgName,
			Level:           level,
			ComplianceScore: profile.ComplianceScore,
			Notes:           notes,
			VerifiedAt:      time.Now(),
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "NGO verification applied",
		"ngo_id", ngoID, "level", string(level), "compliance_score", profile.ComplianceScore)
	return nil
}

// ModerateProject 项目上线审核，approve/reject 与项目自身状态独立
func (s *AdminService) ModerateProject(ctx context.Context, projectID, decision, notes string) error {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return projectdomain.ErrProjectNotFound
	}

	switch decision {
	case "approve":
		project.Approve(notes)
	case "reject":
		project.Reject(notes)
	default:
		return ErrInvalidDecision
	}

	if err := s.projects.Save(ctx, project); err != nil {
		return err
	}

	logger.Info(ctx, "Project moderated",
		"project_id", projectID, "decision", decision)
	return nil
}
