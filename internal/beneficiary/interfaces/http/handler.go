package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/donatetrack/donatetrack/internal/beneficiary/application"
	"github.com/donatetrack/donatetrack/internal/beneficiary/domain"
	projectdomain "github.com/donatetrack/donatetrack/internal/project/domain"
	"github.com/donatetrack/donatetrack/pkg/middleware"
)

// Handler 受助对象服务的 HTTP 接口
type Handler struct {
	svc *application.BeneficiaryService
}

func NewHandler(svc *application.BeneficiaryService) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes 注册公开路由
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/projects/:id/beneficiaries", h.ListByProject)
	r.GET("/beneficiaries/:id", h.Get)
}

// RegisterNGORoutes 注册 NGO 角色路由
func (h *Handler) RegisterNGORoutes(r *gin.RouterGroup) {
	r.POST("/projects/:id/beneficiaries", h.Add)
	r.POST("/beneficiaries/:id/aid", h.AddAid)
}

func (h *Handler) Add(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		Name     string `json:"name" binding:"required"`
		Details  string `json:"details"`
		Location string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	beneficiary, err := h.svc.Add(c.Request.Context(), application.AddBeneficiaryCommand{
		NGOID:     p.UserID,
		ProjectID: c.Param("id"),
		Name:      req.Name,
		Details:   req.Details,
		Location:  req.Location,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"beneficiary": beneficiary})
}

func (h *Handler) AddAid(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		TransactionID string `json:"transaction_id"`
		Amount        string `json:"amount" binding:"required"`
		Purpose       string `json:"purpose"`
		DisbursedAt   string `json:"disbursed_at"`
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

	cmd := application.AddAidCommand{
		NGOID:         p.UserID,
		BeneficiaryID: c.Param("id"),
		TransactionID: req.TransactionID,
		Amount:        amount,
		Purpose:       req.Purpose,
	}
	if req.DisbursedAt != "" {
		at, err := time.Parse("2006-01-02", req.DisbursedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid disbursed_at"})
			return
		}
		cmd.DisbursedAt = at
	}

	if err := h.svc.AddAid(c.Request.Context(), cmd); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created": true})
}

func (h *Handler) ListByProject(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.svc.ListByProject(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Get(c *gin.Context) {
	beneficiary, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"beneficiary": beneficiary})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrBeneficiaryNotFound),
		errors.Is(err, projectdomain.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, projectdomain.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidAidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
