package application

import (
	"context"

	"github.com/donatetrack/donatetrack/internal/identity/domain"
	"github.com/donatetrack/donatetrack/pkg/utils"
)

// IdentityQueryService 处理身份相关的读操作
type IdentityQueryService struct {
	users  domain.UserRepository
	donors domain.DonorProfileRepository
	ngos   domain.NGOProfileRepository
}

// NewIdentityQueryService 创建身份查询服务实例
func NewIdentityQueryService(
	users domain.UserRepository,
	donors domain.DonorProfileRepository,
	ngos domain.NGOProfileRepository,
) *IdentityQueryService {
	return &IdentityQueryService{users: users, donors: donors, ngos: ngos}
}

// GetProfile 获取用户及其角色档案
func (s *IdentityQueryService) GetProfile(ctx context.Context, userID string) (*ProfileDTO, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	dto := &ProfileDTO{User: *toUserDTO(user)}

	switch user.Role {
	case domain.RoleDonor:
		profile, err := s.donors.GetByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			dto.Donor = toDonorProfileDTO(profile)
		}
	case domain.RoleNGO:
		profile, err := s.ngos.GetByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			dto.NGO = toNGOProfileDTO(profile)
		}
	}

	return dto, nil
}

// GetNGOProfile 获取指定 NGO 的档案
func (s *IdentityQueryService) GetNGOProfile(ctx context.Context, userID string) (*NGOProfileDTO, error) {
	profile, err := s.ngos.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrUserNotFound
	}
	return toNGOProfileDTO(profile), nil
}

// ListUsers 管理员分页列出用户
func (s *IdentityQueryService) ListUsers(ctx context.Context, role domain.UserRole, page, pageSize int) ([]*UserDTO, *utils.Pagination, error) {
	p := utils.NewPagination(page, pageSize, 0)
	users, total, err := s.users.List(ctx, role, p.Limit(), p.Offset())
	if err != nil {
		return nil, nil, err
	}

	dtos := make([]*UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toUserDTO(u))
	}
	return dtos, utils.NewPagination(page, pageSize, total), nil
}
