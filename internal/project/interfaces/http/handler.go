package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/donatetrack/donatetrack/internal/project/application"
	"github.com/donatetrack/donatetrack/internal/project/domain"
	"github.com/donatetrack/donatetrack/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Handler 项目服务的 HTTP 接口
type Handler struct {
	cmd   *application.ProjectCommandService
	query *application.ProjectQueryService
}

func NewHandler(cmd *application.ProjectCommandService, query *application.ProjectQueryService) *Handler {
	return &Handler{cmd: cmd, query: query}
}

// RegisterPublicRoutes 注册公开路由
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	g := r.Group("/projects")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

// RegisterNGORoutes 注册 NGO 角色路由
func (h *Handler) RegisterNGORoutes(r *gin.RouterGroup) {
	g := r.Group("/projects")
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.POST("/:id/submit", h.Submit)
	g.POST("/:id/cancel", h.Cancel)
	g.POST("/:id/milestones", h.AddMilestone)
	g.POST("/:id/updates", h.PostUpdate)
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.query.List(c.Request.Context(), application.ListQuery{
		Category:   c.Query("category"),
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
		PublicOnly: true,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Get(c *gin.Context) {
	detail, err := h.query.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *Handler) Create(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		Title        string `json:"title" binding:"required"`
		Description  string `json:"description"`
		Category     string `json:"category" binding:"required"`
		TargetAmount string `json:"target_amount" binding:"required"`
		StartDate    string `json:"start_date" binding:"required"`
		EndDate      string `json:"end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := decimal.NewFromString(req.TargetAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_amount"})
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	project, err := h.cmd.Create(c.Request.Context(), application.CreateProjectCommand{
		NGOID:        p.UserID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     domain.Category(req.Category),
		TargetAmount: target,
		StartDate:    startDate,
		EndDate:      endDate,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

func (h *Handler) Update(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		EndDate     string `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := application.UpdateProjectCommand{
		ProjectID:   c.Param("id"),
		NGOID:       p.UserID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.EndDate != "" {
		endDate, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		cmd.EndDate = &endDate
	}

	if err := h.cmd.Update(c.Request.Context(), cmd); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) Submit(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	if err := h.cmd.Submit(c.Request.Context(), c.Param("id"), p.UserID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submitted": true})
}

func (h *Handler) Cancel(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	if err := h.cmd.Cancel(c.Request.Context(), c.Param("id"), p.UserID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

func (h *Handler) AddMilestone(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		Title        string `json:"title" binding:"required"`
		Description  string `json:"description"`
		TargetAmount string `json:"target_amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := decimal.NewFromString(req.TargetAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_amount"})
		return
	}

	err = h.cmd.AddMilestone(c.Request.Context(), application.AddMilestoneCommand{
		ProjectID:    c.Param("id"),
		NGOID:        p.UserID,
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: target,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created": true})
}

func (h *Handler) PostUpdate(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cmd.PostUpdate(c.Request.Context(), c.Param("id"), p.UserID, req.Title, req.Content); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created": true})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTarget),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
