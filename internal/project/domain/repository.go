package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ListFilter 公开列表过滤条件
type ListFilter struct {
	Category Category
	Status   ProjectStatus
	NGOID    string
	Search   string
	// PublicOnly 仅返回 active + approved 的项目
	PublicOnly bool
}

// ProjectRepository 项目仓储接口
type ProjectRepository interface {
	// Save 保存或更新项目
	Save(ctx context.Context, project *Project) error
	// Get 根据业务 ID 获取项目
	Get(ctx context.Context, projectID string) (*Project, error)
	// List 按过滤条件分页列出项目
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Project, int64, error)
	// ApplyDonation 以原子自增方式累加捐赠净额与笔数，并刷新完成状态。
	// 自增在数据库侧执行，避免读-改-写丢失更新；达标判断仍可能超募。
	ApplyDonation(ctx context.Context, projectID string, netAmount decimal.Decimal, at time.Time) error
	// CountActive 统计 active + approved 的项目数
	CountActive(ctx context.Context) (int64, error)
}

// MilestoneRepository 里程碑仓储接口
type MilestoneRepository interface {
	Save(ctx context.Context, milestone *Milestone) error
	ListByProject(ctx context.Context, projectID string) ([]*Milestone, error)
}

// UpdateRepository 项目动态仓储接口
type UpdateRepository interface {
	Save(ctx context.Context, update *ProjectUpdate) error
	ListByProject(ctx context.Context, projectID string) ([]*ProjectUpdate, error)
}
