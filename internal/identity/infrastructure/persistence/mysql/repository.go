package mysql

import (
	"context"
	"errors"

	"github.com/donatetrack/donatetrack/internal/identity/domain"
	"github.com/donatetrack/donatetrack/pkg/contextx"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserRepository 用户仓储的 GORM 实现
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	return contextx.DBFromContext(ctx, r.db).Save(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := contextx.DBFromContext(ctx, r.db).Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := contextx.DBFromContext(ctx, r.db).Where("email = ?", domain.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *UserRepository) List(ctx context.Context, role domain.UserRole, limit, offset int) ([]*domain.User, int64, error) {
	db := contextx.DBFromContext(ctx, r.db).Model(&domain.User{})
	if role != "" {
		db = db.Where("role = ?", role)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*domain.User
	err := db.Order("created_at desc").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

// DonorProfileRepository 捐赠人档案仓储的 GORM 实现
type DonorProfileRepository struct {
	db *gorm.DB
}

func NewDonorProfileRepository(db *gorm.DB) *DonorProfileRepository {
	return &DonorProfileRepository{db: db}
}

func (r *DonorProfileRepository) Save(ctx context.Context, profile *domain.DonorProfile) error {
	return contextx.DBFromContext(ctx, r.db).Save(profile).Error
}

func (r *DonorProfileRepository) GetByUser(ctx context.Context, userID string) (*domain.DonorProfile, error) {
	var profile domain.DonorProfile
	err := contextx.DBFromContext(ctx, r.db).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &profile, err
}

// ApplyDonation 在数据库侧原子累加捐赠总额与笔数，避免并发捐赠互相覆盖
func (r *DonorProfileRepository) ApplyDonation(ctx context.Context, userID string, netAmount decimal.Decimal) error {
	return contextx.DBFromContext(ctx, r.db).Model(&domain.DonorProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"total_donated":  gorm.Expr("total_donated + ?", netAmount),
			"donation_count": gorm.Expr("donation_count + 1"),
		}).Error
}

// NGOProfileRepository 公益组织档案仓储的 GORM 实现
type NGOProfileRepository struct {
	db *gorm.DB
}

func NewNGOProfileRepository(db *gorm.DB) *NGOProfileRepository {
	return &NGOProfileRepository{db: db}
}

func (r *NGOProfileRepository) Save(ctx context.Context, profile *domain.NGOProfile) error {
	return contextx.DBFromContext(ctx, r.db).Save(profile).Error
}

func (r *NGOProfileRepository) GetByUser(ctx context.Context, userID string) (*domain.NGOProfile, error) {
	var profile domain.NGOProfile
	err := contextx.DBFromContext(ctx, r.db).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &profile, err
}

// ApplyDonation 在数据库侧原子累加筹款净额
func (r *NGOProfileRepository) ApplyDonation(ctx context.Context, userID string, netAmount decimal.Decimal) error {
	return contextx.DBFromContext(ctx, r.db).Model(&domain.NGOProfile{}).
		Where("user_id = ?", userID).
		Update("total_raised", gorm.Expr("total_raised + ?", netAmount)).Error
}

// IncrementProjectCount 项目创建时累加项目数
func (r *NGOProfileRepository) IncrementProjectCount(ctx context.Context, userID string) error {
	return contextx.DBFromContext(ctx, r.db).Model(&domain.NGOProfile{}).
		Where("user_id = ?", userID).
		Update("project_count", gorm.Expr("project_count + 1")).Error
}

func (r *NGOProfileRepository) ListByStatus(ctx context.Context, status domain.VerificationStatus, limit, offset int) ([]*domain.NGOProfile, int64, error) {
	db := contextx.DBFromContext(ctx, r.db).Model(&domain.NGOProfile{})
	if status != "" {
		db = db.Where("verification_status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []*domain.NGOProfile
	err := db.Order("created_at desc").Limit(limit).Offset(offset).Find(&profiles).Error
	return profiles, total, err
}
