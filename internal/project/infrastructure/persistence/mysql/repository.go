package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/donatetrack/donatetrack/internal/project/domain"
	"github.com/donatetrack/donatetrack/pkg/contextx"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProjectRepository 项目仓储的 GORM 实现
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Save(ctx context.Context, project *domain.Project) error {
	return contextx.DBFromContext(ctx, r.db).Save(project).Error
}

func (r *ProjectRepository) Get(ctx context.Context, projectID string) (*domain.Project, error) {
	var project domain.Project
	err := contextx.DBFromContext(ctx, r.db).Where("project_id = ?", projectID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &project, err
}

func (r *ProjectRepository) List(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]*domain.Project, int64, error) {
	db := contextx.DBFromContext(ctx, r.db).Model(&domain.Project{})

	if filter.PublicOnly {
		db = db.Where("status = ? AND admin_status = ?", domain.StatusActive, domain.AdminApproved)
	} else if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.NGOID != "" {
		db = db.Where("ngo_id = ?", filter.NGOID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []*domain.Project
	err := db.Order("created_at desc").Limit(limit).Offset(offset).Find(&projects).Error
	return projects, total, err
}

// ApplyDonation 以数据库侧自增累加捐赠净额，再重新读取并刷新完成状态。
// 自增本身是单行原子更新；达标检查与并发捐赠之间没有 compare-and-set，
// 临近目标的并发完成可能超募，这与产品行为一致。
func (r *ProjectRepository) ApplyDonation(ctx context.Context, projectID string, netAmount decimal.Decimal, at time.Time) error {
	db := contextx.DBFromContext(ctx, r.db)

	res := db.Model(&domain.Project{}).
		Where("project_id = ?", projectID).
		Updates(map[string]interface{}{
			"raised_amount":    gorm.Expr("raised_amount + ?", netAmount),
			"donation_count":   gorm.Expr("donation_count + 1"),
			"average_donation": gorm.Expr("(raised_amount + ?) / (donation_count + 1)", netAmount),
			"last_donation_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProjectNotFound
	}

	var project domain.Project
	if err := db.Where("project_id = ?", projectID).First(&project).Error; err != nil {
		return err
	}
	project.RefreshCompletion()
	return db.Save(&project).Error
}

func (r *ProjectRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := contextx.DBFromContext(ctx, r.db).Model(&domain.Project{}).
		Where("status = ? AND admin_status = ?", domain.StatusActive, domain.AdminApproved).
		Count(&count).Error
	return count, err
}

// MilestoneRepository 里程碑仓储的 GORM 实现
type MilestoneRepository struct {
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

func (r *MilestoneRepository) Save(ctx context.Context, milestone *domain.Milestone) error {
	return contextx.DBFromContext(ctx, r.db).Save(milestone).Error
}

func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Milestone, error) {
	var milestones []*domain.Milestone
	err := contextx.DBFromContext(ctx, r.db).
		Where("project_id = ?", projectID).
		Order("target_amount asc").
		Find(&milestones).Error
	return milestones, err
}

// UpdateRepository 项目动态仓储的 GORM 实现
type UpdateRepository struct {
	db *gorm.DB
}

func NewUpdateRepository(db *gorm.DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

func (r *UpdateRepository) Save(ctx context.Context, update *domain.ProjectUpdate) error {
	return contextx.DBFromContext(ctx, r.db).Save(update).Error
}

func (r *UpdateRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.ProjectUpdate, error) {
	var updates []*domain.ProjectUpdate
	err := contextx.DBFromContext(ctx, r.db).
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&updates).Error
	return updates, err
}
