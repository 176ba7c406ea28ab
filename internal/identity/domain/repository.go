package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// Save 保存或更新用户
	Save(ctx context.Context, user *User) error
	// GetByID 根据业务 ID 获取用户
	GetByID(ctx context.Context, userID string) (*User, error)
	// GetByEmail 根据邮箱获取用户（邮箱在仓储实现中规范化）
	GetByEmail(ctx context.Context, email string) (*User, error)
	// List 分页列出用户，role 为空时不过滤
	List(ctx context.Context, role UserRole, limit, offset int) ([]*User, int64, error)
}

// DonorProfileRepository 捐赠人档案仓储接口
type DonorProfileRepository interface {
	Save(ctx context.Context, profile *DonorProfile) error
	GetByUser(ctx context.Context, userID string) (*DonorProfile, error)
	// ApplyDonation 原子累加捐赠净额与笔数，实现必须在数据库侧完成自增
	ApplyDonation(ctx context.Context, userID string, netAmount decimal.Decimal) error
}

// NGOProfileRepository 公益组织档案仓储接口
type NGOProfileRepository interface {
	Save(ctx context.Context, profile *NGOProfile) error
	GetByUser(ctx context.Context, userID string) (*NGOProfile, error)
	// ListByStatus 按审核状态列出
	ListByStatus(ctx context.Context, status VerificationStatus, limit, offset int) ([]*NGOProfile, int64, error)
	// ApplyDonation 原子累加筹款净额
	ApplyDonation(ctx context.Context, userID string, netAmount decimal.Decimal) error
	// IncrementProjectCount 项目创建时累加项目数
	IncrementProjectCount(ctx context.Context, userID string) error
}
