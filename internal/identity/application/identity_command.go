package application

import (
	"context"
	"fmt"
	"time"

	"github.com/donatetrack/donatetrack/internal/identity/domain"
	"github.com/donatetrack/donatetrack/pkg/contextx"
	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/donatetrack/donatetrack/pkg/token"
	"github.com/donatetrack/donatetrack/pkg/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterCommand 注册命令
type RegisterCommand struct {
	Email    string
	Password string
	Name     string
	Role     domain.UserRole
	// OrgName 仅 NGO 角色需要
	OrgName        string
	RegistrationNo string
}

// LoginCommand 登录命令
type LoginCommand struct {
	Email    string
	Password string
}

// ChangePasswordCommand 修改密码命令
type ChangePasswordCommand struct {
	UserID      string
	OldPassword string
	NewPassword string
}

// UpdateProfileCommand 更新档案命令
type UpdateProfileCommand struct {
	UserID string
	Name   string
	// 捐赠人字段
	AnonymousByDefault *bool
	// NGO 字段
	Description string
	Website     string
}

// IdentityCommandService 处理身份相关的写操作
type IdentityCommandService struct {
	users  domain.UserRepository
	donors domain.DonorProfileRepository
	ngos   domain.NGOProfileRepository
	tokens *token.Manager
	idgen  *utils.SnowflakeID
	db     *gorm.DB // 用于开启事务
}

// NewIdentityCommandService 创建身份命令服务实例
func NewIdentityCommandService(
	users domain.UserRepository,
	donors domain.DonorProfileRepository,
	ngos domain.NGOProfileRepository,
	tokens *token.Manager,
	idgen *utils.SnowflakeID,
	db *gorm.DB,
) *IdentityCommandService {
	return &IdentityCommandService{
		users:  users,
		donors: donors,
		ngos:   ngos,
		tokens: tokens,
		idgen:  idgen,
		db:     db,
	}
}

// Register 处理用户注册，用户与角色档案在同一事务中创建
func (s *IdentityCommandService) Register(ctx context.Context, cmd RegisterCommand) (*UserDTO, error) {
	if !cmd.Role.Valid() || cmd.Role == domain.RoleAdmin {
		return nil, domain.ErrInvalidRole
	}
	if cmd.Role == domain.RoleNGO && cmd.OrgName == "" {
		return nil, fmt.Errorf("org_name is required for ngo registration")
	}

	existing, err := s.users.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID := fmt.Sprintf("USR-%d", s.idgen.Generate())
	user := domain.NewUser(userID, cmd.Email, string(hash), cmd.Name, cmd.Role)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.users.Save(txCtx, user); err != nil {
			return err
		}

		switch cmd.Role {
		case domain.RoleDonor:
			return s.donors.Save(txCtx, &domain.DonorProfile{UserID: userID})
		case domain.RoleNGO:
			return s.ngos.Save(txCtx, &domain.NGOProfile{
				UserID:             userID,
				OrgName:            cmd.OrgName,
				RegistrationNo:     cmd.RegistrationNo,
				VerificationLevel:  domain.VerificationUnverified,
				VerificationStatus: domain.VerificationStatusPending,
				ComplianceScore:    domain.VerificationUnverified.ComplianceScore(),
			})
		}
		return nil
	})
	if err != nil {
		logger.Error(ctx, "Failed to register user", "email", cmd.Email, "error", err)
		return nil, err
	}

	logger.Info(ctx, "User registered", "user_id", userID, "role", cmd.Role)
	return toUserDTO(user), nil
}

// Login 处理用户登录，连续失败 5 次后锁定 15 分钟
func (s *IdentityCommandService) Login(ctx context.Context, cmd LoginCommand) (string, int64, error) {
	user, err := s.users.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return "", 0, err
	}
	if user == nil {
		return "", 0, domain.ErrInvalidCredentials
	}

	now := time.Now()
	if user.Locked(now) {
		return "", 0, domain.ErrAccountLocked
	}
	if !user.IsActive {
		return "", 0, domain.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(cmd.Password)); err != nil {
		user.RecordFailedLogin(now)
		if saveErr := s.users.Save(ctx, user); saveErr != nil {
			logger.Error(ctx, "Failed to persist login failure", "user_id", user.UserID, "error", saveErr)
		}
		return "", 0, domain.ErrInvalidCredentials
	}

	user.ResetLoginFailures()
	if err := s.users.Save(ctx, user); err != nil {
		return "", 0, err
	}

	tok, expiresAt, err := s.tokens.Issue(user.UserID, user.Email, string(user.Role))
	if err != nil {
		return "", 0, err
	}

	logger.Info(ctx, "User logged in", "user_id", user.UserID)
	return tok, expiresAt.Unix(), nil
}

// ChangePassword 修改密码，需要验证旧密码
func (s *IdentityCommandService) ChangePassword(ctx context.Context, cmd ChangePasswordCommand) error {
	user, err := s.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(cmd.OldPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	return s.users.Save(ctx, user)
}

// UpdateProfile 更新用户与角色档案
func (s *IdentityCommandService) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) error {
	user, err := s.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	if cmd.Name != "" {
		user.Name = cmd.Name
	}
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	switch user.Role {
	case domain.RoleDonor:
		if cmd.AnonymousByDefault == nil {
			return nil
		}
		profile, err := s.donors.GetByUser(ctx, cmd.UserID)
		if err != nil || profile == nil {
			return err
		}
		profile.AnonymousByDefault = *cmd.AnonymousByDefault
		return s.donors.Save(ctx, profile)
	case domain.RoleNGO:
		if cmd.Description == "" && cmd.Website == "" {
			return nil
		}
		profile, err := s.ngos.GetByUser(ctx, cmd.UserID)
		if err != nil || profile == nil {
			return err
		}
		if cmd.Description != "" {
			profile.Description = cmd.Description
		}
		if cmd.Website != "" {
			profile.Website = cmd.Website
		}
		return s.ngos.Save(ctx, profile)
	}
	return nil
}

// SetUserStatus 管理员启用/停用用户
func (s *IdentityCommandService) SetUserStatus(ctx context.Context, userID string, active bool) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	user.IsActive = active
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	logger.Info(ctx, "User status changed", "user_id", userID, "active", active)
	return nil
}
