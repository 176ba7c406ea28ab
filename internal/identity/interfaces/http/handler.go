package http

import (
	"errors"
	"net/http"

	"github.com/donatetrack/donatetrack/internal/identity/application"
	"github.com/donatetrack/donatetrack/internal/identity/domain"
	"github.com/donatetrack/donatetrack/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// Handler 身份服务的 HTTP 接口
type Handler struct {
	cmd   *application.IdentityCommandService
	query *application.IdentityQueryService
}

func NewHandler(cmd *application.IdentityCommandService, query *application.IdentityQueryService) *Handler {
	return &Handler{cmd: cmd, query: query}
}

// RegisterRoutes 注册公开路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

// RegisterProtectedRoutes 注册需要认证的路由
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	g := r.Group("/users")
	g.GET("/me", h.GetProfile)
	g.PUT("/me", h.UpdateProfile)
	g.PUT("/me/password", h.ChangePassword)
}

func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email          string `json:"email" binding:"required,email"`
		Password       string `json:"password" binding:"required,min=8"`
		Name           string `json:"name" binding:"required"`
		Role           string `json:"role" binding:"required"`
		OrgName        string `json:"org_name"`
		RegistrationNo string `json:"registration_no"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.cmd.Register(c.Request.Context(), application.RegisterCommand{
		Email:          req.Email,
		Password:       req.Password,
		Name:           req.Name,
		Role:           domain.UserRole(req.Role),
		OrgName:        req.OrgName,
		RegistrationNo: req.RegistrationNo,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tok, expiresAt, err := h.cmd.Login(c.Request.Context(), application.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountLocked), errors.Is(err, domain.ErrAccountInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrInvalidCredentials.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tok, "type": "Bearer", "expires_at": expiresAt})
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	profile, err := h.query.GetProfile(c.Request.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		Name               string `json:"name"`
		AnonymousByDefault *bool  `json:"anonymous_by_default"`
		Description        string `json:"description"`
		Website            string `json:"website"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.cmd.UpdateProfile(c.Request.Context(), application.UpdateProfileCommand{
		UserID:             p.UserID,
		Name:               req.Name,
		AnonymousByDefault: req.AnonymousByDefault,
		Description:        req.Description,
		Website:            req.Website,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.cmd.ChangePassword(c.Request.Context(), application.ChangePasswordCommand{
		UserID:      p.UserID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}
