package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	projectdomain "github.com/donatetrack/donatetrack/internal/project/domain"
	"github.com/donatetrack/donatetrack/internal/proof/application"
	"github.com/donatetrack/donatetrack/internal/proof/domain"
	"github.com/donatetrack/donatetrack/pkg/middleware"
)

// Handler 证明服务的 HTTP 接口
type Handler struct {
	svc *application.ProofService
}

func NewHandler(svc *application.ProofService) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes 注册公开路由
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/projects/:id/proofs", h.ListByProject)
}

// RegisterNGORoutes 注册 NGO 角色路由
func (h *Handler) RegisterNGORoutes(r *gin.RouterGroup) {
	r.POST("/proofs", h.Upload)
}

// RegisterDonorRoutes 注册捐赠人角色路由
func (h *Handler) RegisterDonorRoutes(r *gin.RouterGroup) {
	r.GET("/proofs/mine", h.ListMine)
}

// RegisterAdminRoutes 注册管理员审核路由
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	g := r.Group("/proofs")
	g.GET("/pending", h.ListPending)
	g.PUT("/:id/verify", h.Verify)
	g.PUT("/:id/reject", h.Reject)
}

func (h *Handler) Upload(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		ProjectID      string   `json:"project_id" binding:"required"`
		Type           string   `json:"type" binding:"required"`
		Title          string   `json:"title" binding:"required"`
		Description    string   `json:"description"`
		FileURL        string   `json:"file_url" binding:"required"`
		FileMeta       string   `json:"file_meta"`
		TransactionIDs []string `json:"transaction_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proof, err := h.svc.Upload(c.Request.Context(), application.UploadCommand{
		NGOID:          p.UserID,
		ProjectID:      req.ProjectID,
		Type:           domain.ProofType(req.Type),
		Title:          req.Title,
		Description:    req.Description,
		FileURL:        req.FileURL,
		FileMeta:       req.FileMeta,
		TransactionIDs: req.TransactionIDs,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"proof": proof})
}

func (h *Handler) ListByProject(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.svc.ListByProject(c.Request.Context(), c.Param("id"), c.Query("status"), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListMine(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.svc.ListMine(c.Request.Context(), p.UserID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListPending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.svc.ListPending(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Verify(c *gin.Context) {
	h.review(c, h.svc.Verify)
}

func (h *Handler) Reject(c *gin.Context) {
	h.review(c, h.svc.Reject)
}

func (h *Handler) review(c *gin.Context, apply func(ctx context.Context, proofID, reviewer, notes string) error) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := apply(c.Request.Context(), c.Param("id"), p.UserID, req.Notes); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviewed": true})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProofNotFound),
		errors.Is(err, projectdomain.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotProjectOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidProofType),
		errors.Is(err, domain.ErrAlreadyReviewed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
