// Package domain 身份服务的领域模型
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserRole 用户角色
type UserRole string

const (
	RoleDonor UserRole = "donor" // 捐赠人
	RoleNGO   UserRole = "ngo"   // 公益组织
	RoleAdmin UserRole = "admin" // 平台管理员
)

// Valid 检查角色是否合法
func (r UserRole) Valid() bool {
	switch r {
	case RoleDonor, RoleNGO, RoleAdmin:
		return true
	}
	return false
}

// VerificationLevel NGO 信任等级
type VerificationLevel string

const (
	VerificationUnverified VerificationLevel = "unverified"
	VerificationBasic      VerificationLevel = "basic"
	VerificationVerified   VerificationLevel = "verified"
	VerificationPremium    VerificationLevel = "premium"
	VerificationSuspended  VerificationLevel = "suspended"
)

// Valid 检查信任等级是否合法
func (l VerificationLevel) Valid() bool {
	switch l {
	case VerificationUnverified, VerificationBasic, VerificationVerified, VerificationPremium, VerificationSuspended:
		return true
	}
	return false
}

// ComplianceScore 信任等级对应的合规分数（固定查表，非证据计算）
func (l VerificationLevel) ComplianceScore() int {
	switch l {
	case VerificationVerified:
		return 75
	case VerificationPremium:
		return 95
	case VerificationSuspended:
		return 0
	default:
		return 50
	}
}

// VerificationStatus NGO 审核状态
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusRejected VerificationStatus = "rejected"
)

// 登录锁定策略
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

// User 用户实体
type User struct {
	gorm.Model
	// UserID 用户 ID (业务主键)，全局唯一
	UserID string `gorm:"column:user_id;type:varchar(32);uniqueIndex;not null" json:"user_id"`
	// Email 邮箱，持久化前统一转为小写
	Email string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	// PasswordHash bcrypt 密码哈希
	PasswordHash string `gorm:"column:password_hash;type:varchar(100);not null" json:"-"`
	// Name 显示名称
	Name string `gorm:"column:name;type:varchar(100)" json:"name"`
	// Role 角色
	Role UserRole `gorm:"column:role;type:varchar(10);index;not null" json:"role"`
	// IsActive 是否可用（管理员可停用）
	IsActive bool `gorm:"column:is_active;not null;default:true" json:"is_active"`
	// IsVerified 邮箱是否已验证
	IsVerified bool `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
	// FailedLogins 连续登录失败次数
	FailedLogins int `gorm:"column:failed_logins;not null;default:0" json:"-"`
	// LockedUntil 锁定截止时间
	LockedUntil *time.Time `gorm:"column:locked_until" json:"-"`
}

func (User) TableName() string { return "users" }

// NewUser 创建用户，邮箱规范化为小写
func NewUser(userID, email, passwordHash, name string, role UserRole) *User {
	return &User{
		UserID:       userID,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		IsActive:     true,
	}
}

// NormalizeEmail 邮箱大小写不敏感，统一转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Locked 检查账户当前是否处于锁定状态
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// RecordFailedLogin 记录一次登录失败，达到阈值后锁定账户
func (u *User) RecordFailedLogin(now time.Time) {
	u.FailedLogins++
	if u.FailedLogins >= MaxFailedLogins {
		until := now.Add(LockoutDuration)
		u.LockedUntil = &until
	}
}

// ResetLoginFailures 登录成功后清零失败计数
func (u *User) ResetLoginFailures() {
	u.FailedLogins = 0
	u.LockedUntil = nil
}

// DonorProfile 捐赠人子档案，运行总额为冗余字段，由捐赠完成级联维护
type DonorProfile struct {
	gorm.Model
	// UserID 关联的用户
	UserID string `gorm:"column:user_id;type:varchar(32);uniqueIndex;not null" json:"user_id"`
	// TotalDonated 累计捐赠净额
	TotalDonated decimal.Decimal `gorm:"column:total_donated;type:decimal(18,2);not null;default:0" json:"total_donated"`
	// DonationCount 累计捐赠笔数
	DonationCount int64 `gorm:"column:donation_count;not null;default:0" json:"donation_count"`
	// AnonymousByDefault 默认匿名捐赠
	AnonymousByDefault bool `gorm:"column:anonymous_by_default;not null;default:false" json:"anonymous_by_default"`
}

func (DonorProfile) TableName() string { return "donor_profiles" }

// NGOProfile 公益组织子档案
type NGOProfile struct {
	gorm.Model
	// UserID 关联的用户
	UserID string `gorm:"column:user_id;type:varchar(32);uniqueIndex;not null" json:"user_id"`
	// OrgName 组织名称
	OrgName string `gorm:"column:org_name;type:varchar(200);not null" json:"org_name"`
	// RegistrationNo 注册编号
	RegistrationNo string `gorm:"column:registration_no;type:varchar(100)" json:"registration_no"`
	// Description 组织简介
	Description string `gorm:"column:description;type:text" json:"description"`
	// Website 官网
	Website string `gorm:"column:website;type:varchar(255)" json:"website"`
	// VerificationLevel 信任等级
	VerificationLevel VerificationLevel `gorm:"column:verification_level;type:varchar(20);not null;default:'unverified'" json:"verification_level"`
	// VerificationStatus 审核状态
	VerificationStatus VerificationStatus `gorm:"column:verification_status;type:varchar(20);index;not null;default:'pending'" json:"verification_status"`
	// VerificationNotes 管理员审核备注
	VerificationNotes string `gorm:"column:verification_notes;type:text" json:"verification_notes"`
	// ComplianceScore 合规分数（由信任等级查表得出）
	ComplianceScore int `gorm:"column:compliance_score;not null;default:50" json:"compliance_score"`
	// TotalRaised 累计筹款净额
	TotalRaised decimal.Decimal `gorm:"column:total_raised;type:decimal(18,2);not null;default:0" json:"total_raised"`
	// ProjectCount 项目数
	ProjectCount int64 `gorm:"column:project_count;not null;default:0" json:"project_count"`
}

func (NGOProfile) TableName() string { return "ngo_profiles" }

// ApplyVerification 管理员设置信任等级，合规分数随等级查表更新
func (p *NGOProfile) ApplyVerification(level VerificationLevel, notes string) {
	p.VerificationLevel = level
	p.VerificationNotes = notes
	p.ComplianceScore = level.ComplianceScore()

	switch level {
	case VerificationSuspended:
		p.VerificationStatus = VerificationStatusRejected
	case VerificationUnverified:
		p.VerificationStatus = VerificationStatusPending
	default:
		p.VerificationStatus = VerificationStatusVerified
	}
}
