package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/donatetrack/donatetrack/internal/donation/application"
	"github.com/donatetrack/donatetrack/internal/donation/domain"
	"github.com/donatetrack/donatetrack/pkg/middleware"
)

// Handler 捐赠服务的 HTTP 接口
type Handler struct {
	cmd   *application.DonationCommandService
	query *application.DonationQueryService
}

func NewHandler(cmd *application.DonationCommandService, query *application.DonationQueryService) *Handler {
	return &Handler{cmd: cmd, query: query}
}

// RegisterPublicRoutes 注册公开路由
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/projects/:id/donations", h.ListForProject)
}

// RegisterDonorRoutes 注册捐赠人角色路由
func (h *Handler) RegisterDonorRoutes(r *gin.RouterGroup) {
	g := r.Group("/donations")
	g.POST("/intent", h.CreateIntent)
	g.POST("/:id/confirm", h.Confirm)
	g.POST("/:id/refund", h.RequestRefund)
	g.GET("/my", h.ListMy)
	g.GET("/receipt/:receipt", h.GetByReceipt)
}

func (h *Handler) CreateIntent(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		ProjectID     string `json:"project_id" binding:"required"`
		Amount        string `json:"amount" binding:"required"`
		PaymentMethod string `json:"payment_method" binding:"required"`
		IsAnonymous   bool   `json:"is_anonymous"`
		Message       string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	result, err := h.cmd.CreateIntent(c.Request.Context(), application.CreateIntentCommand{
		DonorID:       p.UserID,
		ProjectID:     req.ProjectID,
		Amount:        amount,
		PaymentMethod: req.PaymentMethod,
		IsAnonymous:   req.IsAnonymous,
		Message:       req.Message,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handler) Confirm(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		PaymentID string `json:"payment_id" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	donation, err := h.cmd.Confirm(c.Request.Context(), application.ConfirmCommand{
		TransactionID: c.Param("id"),
		DonorID:       p.UserID,
		PaymentID:     req.PaymentID,
		Signature:     req.Signature,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"donation": donation})
}

func (h *Handler) RequestRefund(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	donation, err := h.cmd.RequestRefund(c.Request.Context(), application.RefundCommand{
		TransactionID: c.Param("id"),
		DonorID:       p.UserID,
		Reason:        req.Reason,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"donation": donation})
}

func (h *Handler) ListMy(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.query.ListMy(c.Request.Context(), p.UserID, c.Query("status"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetByReceipt(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	donation, err := h.query.GetByReceipt(c.Request.Context(), c.Param("receipt"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if donation.DonorID != p.UserID && p.Role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": domain.ErrNotDonor.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"donation": donation})
}

func (h *Handler) ListForProject(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.query.ListForProject(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrDonationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotDonor):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrProjectUnavailable),
		errors.Is(err, domain.ErrNotRefundable),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrPaymentVerificationFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPaymentGateway):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
