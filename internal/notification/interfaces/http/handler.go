package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/donatetrack/donatetrack/internal/notification/application"
	"github.com/donatetrack/donatetrack/internal/notification/domain"
	"github.com/donatetrack/donatetrack/pkg/middleware"
)

// Handler 通知信箱的 HTTP 接口
type Handler struct {
	svc *application.NotificationService
}

func NewHandler(svc *application.NotificationService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册登录用户路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/notifications")
	g.GET("", h.ListMy)
	g.PUT("/:id/read", h.MarkRead)
	g.PUT("/read-all", h.MarkAllRead)
}

func (h *Handler) ListMy(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	unreadOnly := c.Query("unread") == "true"

	result, err := h.svc.ListMy(c.Request.Context(), p.UserID, unreadOnly, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) MarkRead(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), p.UserID, uint(id)); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"read": true})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	if err := h.svc.MarkAllRead(c.Request.Context(), p.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"read": true})
}
