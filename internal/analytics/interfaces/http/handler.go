package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/donatetrack/donatetrack/internal/analytics/application"
	"github.com/donatetrack/donatetrack/pkg/middleware"
)

// Handler 仪表盘的 HTTP 接口
type Handler struct {
	svc *application.AnalyticsService
}

func NewHandler(svc *application.AnalyticsService) *Handler {
	return &Handler{svc: svc}
}

// RegisterDonorRoutes 注册捐赠人仪表盘路由
func (h *Handler) RegisterDonorRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard/donor", h.DonorSummary)
}

// RegisterNGORoutes 注册 NGO 仪表盘路由
func (h *Handler) RegisterNGORoutes(r *gin.RouterGroup) {
	r.GET("/dashboard/ngo", h.NGODashboard)
}

// RegisterAdminRoutes 注册管理端仪表盘路由
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.AdminOverview)
}

func (h *Handler) AdminOverview(c *gin.Context) {
	var from, to time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		to = t
	}
	topN, _ := strconv.Atoi(c.DefaultQuery("top", "10"))

	dashboard, err := h.svc.AdminOverview(c.Request.Context(), from, to, c.Query("bucket"), topN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) DonorSummary(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	summary, err := h.svc.DonorSummary(c.Request.Context(), p.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) NGODashboard(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	stats, err := h.svc.NGODashboard(c.Request.Context(), p.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": stats})
}
