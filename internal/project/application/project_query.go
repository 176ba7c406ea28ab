package application

import (
	"context"
	"fmt"
	"time"

	"github.com/donatetrack/donatetrack/internal/project/domain"
	"github.com/donatetrack/donatetrack/pkg/cache"
	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/donatetrack/donatetrack/pkg/utils"
)

// 公开列表缓存 TTL，看板允许短暂滞后
const listCacheTTL = 30 * time.Second

// ProjectQueryService 处理项目相关的读操作
type ProjectQueryService struct {
	projects   domain.ProjectRepository
	milestones domain.MilestoneRepository
	updates    domain.UpdateRepository
	cache      *cache.RedisCache
}

// NewProjectQueryService 创建项目查询服务实例。cache 可为 nil，此时不走缓存。
func NewProjectQueryService(
	projects domain.ProjectRepository,
	milestones domain.MilestoneRepository,
	updates domain.UpdateRepository,
	redisCache *cache.RedisCache,
) *ProjectQueryService {
	return &ProjectQueryService{
		projects:   projects,
		milestones: milestones,
		updates:    updates,
		cache:      redisCache,
	}
}

// ListQuery 公开列表查询参数
type ListQuery struct {
	Category string
	Status   string
	Search   string
	NGOID    string
	Page     int
	PageSize int
	// PublicOnly 公开列表只展示 active + approved
	PublicOnly bool
}

// ListResult 列表结果
type ListResult struct {
	Projects   []*ProjectDTO     `json:"projects"`
	Pagination *utils.Pagination `json:"pagination"`
}

// List 分页列出项目，公开无过滤条件的首页列表走 Redis 缓存
func (s *ProjectQueryService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	cacheKey := ""
	if s.cache != nil && q.PublicOnly && q.Category == "" && q.Status == "" && q.Search == "" && q.NGOID == "" {
		cacheKey = listCacheKey(q.Page, q.PageSize)
		var cached ListResult
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	filter := domain.ListFilter{
		Category:   domain.Category(q.Category),
		Status:     domain.ProjectStatus(q.Status),
		NGOID:      q.NGOID,
		Search:     q.Search,
		PublicOnly: q.PublicOnly,
	}

	p := utils.NewPagination(q.Page, q.PageSize, 0)
	projects, total, err := s.projects.List(ctx, filter, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dtos := make([]*ProjectDTO, 0, len(projects))
	for _, project := range projects {
		dtos = append(dtos, toProjectDTO(project, now))
	}

	result := &ListResult{
		Projects:   dtos,
		Pagination: utils.NewPagination(q.Page, q.PageSize, total),
	}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, result, listCacheTTL); err != nil {
			logger.Warn(ctx, "Failed to cache project list", "error", err)
		}
	}
	return result, nil
}

// Get 获取项目详情，含里程碑与动态
func (s *ProjectQueryService) Get(ctx context.Context, projectID string) (*ProjectDetailDTO, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrProjectNotFound
	}

	milestones, err := s.milestones.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	updates, err := s.updates.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	detail := &ProjectDetailDTO{Project: *toProjectDTO(project, now)}
	for _, m := range milestones {
		detail.Milestones = append(detail.Milestones, toMilestoneDTO(m))
	}
	for _, u := range updates {
		detail.Updates = append(detail.Updates, toUpdateDTO(u))
	}
	return detail, nil
}

func listCacheKey(page, pageSize int) string {
	return fmt.Sprintf("projects:public:%d:%d", page, pageSize)
}
