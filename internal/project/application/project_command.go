package application

import (
	"context"
	"fmt"
	"time"

	identitydomain "github.com/donatetrack/donatetrack/internal/identity/domain"
	"github.com/donatetrack/donatetrack/internal/project/domain"
	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/donatetrack/donatetrack/pkg/utils"
	"github.com/shopspring/decimal"
)

// CreateProjectCommand 创建项目命令
type CreateProjectCommand struct {
	NGOID        string
	Title        string
	Description  string
	Category     domain.Category
	TargetAmount decimal.Decimal
	StartDate    time.Time
	EndDate      time.Time
}

// UpdateProjectCommand 更新项目命令
type UpdateProjectCommand struct {
	ProjectID   string
	NGOID       string
	Title       string
	Description string
	EndDate     *time.Time
}

// AddMilestoneCommand 添加里程碑命令
type AddMilestoneCommand struct {
	ProjectID    string
	NGOID        string
	Title        string
	Description  string
	TargetAmount decimal.Decimal
}

// ProjectCommandService 处理项目相关的写操作
type ProjectCommandService struct {
	projects   domain.ProjectRepository
	milestones domain.MilestoneRepository
	updates    domain.UpdateRepository
	ngos       identitydomain.NGOProfileRepository
	idgen      *utils.SnowflakeID
}

// NewProjectCommandService 创建项目命令服务实例
func NewProjectCommandService(
	projects domain.ProjectRepository,
	milestones domain.MilestoneRepository,
	updates domain.UpdateRepository,
	ngos identitydomain.NGOProfileRepository,
	idgen *utils.SnowflakeID,
) *ProjectCommandService {
	return &ProjectCommandService{
		projects:   projects,
		milestones: milestones,
		updates:    updates,
		ngos:       ngos,
		idgen:      idgen,
	}
}

// Create 创建草稿项目
func (s *ProjectCommandService) Create(ctx context.Context, cmd CreateProjectCommand) (*ProjectDTO, error) {
	project := &domain.Project{
		ProjectID:       fmt.Sprintf("PRJ-%d", s.idgen.Generate()),
		NGOID:           cmd.NGOID,
		Title:           cmd.Title,
		Description:     cmd.Description,
		Category:        cmd.Category,
		TargetAmount:    cmd.TargetAmount,
		RaisedAmount:    decimal.Zero,
		AverageDonation: decimal.Zero,
		Status:          domain.StatusDraft,
		AdminStatus:     domain.AdminPending,
		StartDate:       cmd.StartDate,
		EndDate:         cmd.EndDate,
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	if err := s.projects.Save(ctx, project); err != nil {
		return nil, err
	}
	if err := s.ngos.IncrementProjectCount(ctx, cmd.NGOID); err != nil {
		logger.Warn(ctx, "Failed to bump ngo project count", "ngo_id", cmd.NGOID, "error", err)
	}

	logger.Info(ctx, "Project created", "project_id", project.ProjectID, "ngo_id", cmd.NGOID)
	return toProjectDTO(project, time.Now()), nil
}

// Update 更新项目，仅所属 NGO 可操作
func (s *ProjectCommandService) Update(ctx context.Context, cmd UpdateProjectCommand) error {
	project, err := s.ownedProject(ctx, cmd.ProjectID, cmd.NGOID)
	if err != nil {
		return err
	}

	if cmd.Title != "" {
		project.Title = cmd.Title
	}
	if cmd.Description != "" {
		project.Description = cmd.Description
	}
	if cmd.EndDate != nil {
		project.EndDate = *cmd.EndDate
	}

	if err := project.Validate(); err != nil {
		return err
	}
	return s.projects.Save(ctx, project)
}

// Submit 提交平台审核
func (s *ProjectCommandService) Submit(ctx context.Context, projectID, ngoID string) error {
	project, err := s.ownedProject(ctx, projectID, ngoID)
	if err != nil {
		return err
	}

	if err := project.Submit(); err != nil {
		return err
	}
	return s.projects.Save(ctx, project)
}

// Cancel 取消项目
func (s *ProjectCommandService) Cancel(ctx context.Context, projectID, ngoID string) error {
	project, err := s.ownedProject(ctx, projectID, ngoID)
	if err != nil {
		return err
	}

	if err := project.Cancel(); err != nil {
		return err
	}
	return s.projects.Save(ctx, project)
}

// AddMilestone 添加里程碑
func (s *ProjectCommandService) AddMilestone(ctx context.Context, cmd AddMilestoneCommand) error {
	if _, err := s.ownedProject(ctx, cmd.ProjectID, cmd.NGOID); err != nil {
		return err
	}

	return s.milestones.Save(ctx, &domain.Milestone{
		ProjectID:    cmd.ProjectID,
		Title:        cmd.Title,
		Description:  cmd.Description,
		TargetAmount: cmd.TargetAmount,
	})
}

// PostUpdate 发布项目动态
func (s *ProjectCommandService) PostUpdate(ctx context.Context, projectID, ngoID, title, content string) error {
	if _, err := s.ownedProject(ctx, projectID, ngoID); err != nil {
		return err
	}

	return s.updates.Save(ctx, &domain.ProjectUpdate{
		ProjectID: projectID,
		Title:     title,
		Content:   content,
	})
}

func (s *ProjectCommandService) ownedProject(ctx context.Context, projectID, ngoID string) (*domain.Project, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrProjectNotFound
	}
	if project.NGOID != ngoID {
		return nil, domain.ErrNotOwner
	}
	return project, nil
}
