package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	adminapp "github.com/donatetrack/donatetrack/internal/admin/application"
	donationapp "github.com/donatetrack/donatetrack/internal/donation/application"
	donationdomain "github.com/donatetrack/donatetrack/internal/donation/domain"
	frauddomain "github.com/donatetrack/donatetrack/internal/fraud/domain"
	identityapp "github.com/donatetrack/donatetrack/internal/identity/application"
	identitydomain "github.com/donatetrack/donatetrack/internal/identity/domain"
	projectdomain "github.com/donatetrack/donatetrack/internal/project/domain"
)

// Handler 管理端 HTTP 接口。角色校验在路由组边界完成，
// 这里只负责参数解析和服务编排。
type Handler struct {
	admin         *adminapp.AdminService
	identityCmd   *identityapp.IdentityCommandService
	identityQuery *identityapp.IdentityQueryService
	donationCmd   *donationapp.DonationCommandService
	donationQuery *donationapp.DonationQueryService
}

func NewHandler(
	admin *adminapp.AdminService,
	identityCmd *identityapp.IdentityCommandService,
	identityQuery *identityapp.IdentityQueryService,
	donationCmd *donationapp.DonationCommandService,
	donationQuery *donationapp.DonationQueryService,
) *Handler {
	return &Handler{
		admin:         admin,
		identityCmd:   identityCmd,
		identityQuery: identityQuery,
		donationCmd:   donationCmd,
		donationQuery: donationQuery,
	}
}

// RegisterRoutes 注册管理员角色路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.PUT("/ngos/:id/verify", h.VerifyNGO)
	r.PUT("/projects/:id/moderate", h.ModerateProject)
	r.GET("/users", h.ListUsers)
	r.PUT("/users/:id/status", h.SetUserStatus)
	r.GET("/fraud/review", h.FraudReviewQueue)
	r.PUT("/fraud/:id/review", h.MarkFraudReviewed)
}

func (h *Handler) VerifyNGO(c *gin.Context) {
	var req struct {
		Level string `json:"level" binding:"required"`
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.admin.VerifyNGO(c.Request.Context(), c.Param("id"), identitydomain.VerificationLevel(req.Level), req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, adminapp.ErrInvalidLevel):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, adminapp.ErrNotNGO):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true})
}

func (h *Handler) ModerateProject(c *gin.Context) {
	var req struct {
		Decision string `json:"decision" binding:"required"`
		Notes    string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.admin.ModerateProject(c.Request.Context(), c.Param("id"), req.Decision, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, projectdomain.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, adminapp.ErrInvalidDecision):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"moderated": true})
}

func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, pagination, err := h.identityQuery.ListUsers(c.Request.Context(), identitydomain.UserRole(c.Query("role")), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "pagination": pagination})
}

func (h *Handler) SetUserStatus(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.identityCmd.SetUserStatus(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		if errors.Is(err, identitydomain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) FraudReviewQueue(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	minScore, _ := strconv.Atoi(c.DefaultQuery("min_score", strconv.Itoa(frauddomain.HighRiskThreshold)))

	result, err := h.donationQuery.ListHighRisk(c.Request.Context(), minScore, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) MarkFraudReviewed(c *gin.Context) {
	if err := h.donationCmd.MarkFraudReviewed(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, donationdomain.ErrDonationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviewed": true})
}
