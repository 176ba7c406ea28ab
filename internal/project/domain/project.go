// Package domain 项目登记的领域模型
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProjectStatus 项目状态
type ProjectStatus string

const (
	StatusDraft     ProjectStatus = "draft"
	StatusPending   ProjectStatus = "pending"
	StatusActive    ProjectStatus = "active"
	StatusCompleted ProjectStatus = "completed"
	StatusCancelled ProjectStatus = "cancelled"
	StatusSuspended ProjectStatus = "suspended"
)

// AdminStatus 平台审核状态，独立于项目自身状态控制公开可见性
type AdminStatus string

const (
	AdminPending  AdminStatus = "pending"
	AdminApproved AdminStatus = "approved"
	AdminRejected AdminStatus = "rejected"
)

// Category 项目类目
type Category string

const (
	CategoryEducation   Category = "education"
	CategoryHealthcare  Category = "healthcare"
	CategoryEnvironment Category = "environment"
	CategoryDisaster    Category = "disaster_relief"
	CategoryLivelihood  Category = "livelihood"
	CategoryOther       Category = "other"
)

// Valid 检查类目是否合法
func (c Category) Valid() bool {
	switch c {
	case CategoryEducation, CategoryHealthcare, CategoryEnvironment, CategoryDisaster, CategoryLivelihood, CategoryOther:
		return true
	}
	return false
}

// Project 筹款项目实体
type Project struct {
	gorm.Model
	// ProjectID 项目 ID (业务主键)，全局唯一
	ProjectID string `gorm:"column:project_id;type:varchar(32);uniqueIndex;not null" json:"project_id"`
	// NGOID 所属公益组织的用户 ID
	NGOID string `gorm:"column:ngo_id;type:varchar(32);index;not null" json:"ngo_id"`
	// Title 标题
	Title string `gorm:"column:title;type:varchar(200);not null" json:"title"`
	// Description 详情
	Description string `gorm:"column:description;type:text" json:"description"`
	// Category 类目
	Category Category `gorm:"column:category;type:varchar(30);index;not null" json:"category"`
	// TargetAmount 目标金额，必须大于 0
	TargetAmount decimal.Decimal `gorm:"column:target_amount;type:decimal(18,2);not null" json:"target_amount"`
	// RaisedAmount 已筹净额，只增不减
	RaisedAmount decimal.Decimal `gorm:"column:raised_amount;type:decimal(18,2);not null;default:0" json:"raised_amount"`
	// DonationCount 捐赠笔数
	DonationCount int64 `gorm:"column:donation_count;not null;default:0" json:"donation_count"`
	// AverageDonation 平均单笔净额
	AverageDonation decimal.Decimal `gorm:"column:average_donation;type:decimal(18,2);not null;default:0" json:"average_donation"`
	// LastDonationAt 最近一笔捐赠完成时间
	LastDonationAt *time.Time `gorm:"column:last_donation_at" json:"last_donation_at"`
	// Status 项目状态
	Status ProjectStatus `gorm:"column:status;type:varchar(20);index;not null;default:'draft'" json:"status"`
	// AdminStatus 平台审核状态
	AdminStatus AdminStatus `gorm:"column:admin_status;type:varchar(20);index;not null;default:'pending'" json:"admin_status"`
	// ModerationNotes 审核备注
	ModerationNotes string `gorm:"column:moderation_notes;type:text" json:"moderation_notes"`
	// StartDate 起始日期
	StartDate time.Time `gorm:"column:start_date;not null" json:"start_date"`
	// EndDate 截止日期，必须晚于起始日期
	EndDate time.Time `gorm:"column:end_date;not null" json:"end_date"`
}

func (Project) TableName() string { return "projects" }

// Validate 保存前校验
func (p *Project) Validate() error {
	if p.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidTarget
	}
	if !p.EndDate.After(p.StartDate) {
		return ErrInvalidDateRange
	}
	if !p.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// Submit 草稿提交平台审核
func (p *Project) Submit() error {
	if p.Status != StatusDraft {
		return ErrInvalidTransition
	}
	p.Status = StatusPending
	return nil
}

// Approve 管理员通过审核，项目进入募集状态
func (p *Project) Approve(notes string) {
	p.AdminStatus = AdminApproved
	p.ModerationNotes = notes
	if p.Status == StatusPending {
		p.Status = StatusActive
	}
}

// Reject 管理员驳回
func (p *Project) Reject(notes string) {
	p.AdminStatus = AdminRejected
	p.ModerationNotes = notes
}

// Cancel NGO 主动取消，已完成的项目不可取消
func (p *Project) Cancel() error {
	if p.Status == StatusCompleted || p.Status == StatusCancelled {
		return ErrInvalidTransition
	}
	p.Status = StatusCancelled
	return nil
}

// RefreshCompletion 已筹达标后自动转为 completed，不会自动回退
func (p *Project) RefreshCompletion() {
	if p.Status == StatusActive && p.RaisedAmount.GreaterThanOrEqual(p.TargetAmount) {
		p.Status = StatusCompleted
	}
}

// AcceptingDonations 是否可以接受捐赠
func (p *Project) AcceptingDonations(now time.Time) bool {
	if p.Status != StatusActive || p.AdminStatus != AdminApproved {
		return false
	}
	return !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// CompletionPercentage 完成百分比，封顶不做（允许超募显示超过 100）
func (p *Project) CompletionPercentage() float64 {
	if p.TargetAmount.IsZero() {
		return 0
	}
	pct, _ := p.RaisedAmount.Div(p.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return pct
}

// DaysRemaining 剩余天数，已截止为 0
func (p *Project) DaysRemaining(now time.Time) int {
	if now.After(p.EndDate) {
		return 0
	}
	return int(p.EndDate.Sub(now).Hours() / 24)
}

// Milestone 项目里程碑
type Milestone struct {
	gorm.Model
	// ProjectID 所属项目
	ProjectID string `gorm:"column:project_id;type:varchar(32);index;not null" json:"project_id"`
	// Title 标题
	Title string `gorm:"column:title;type:varchar(200);not null" json:"title"`
	// Description 说明
	Description string `gorm:"column:description;type:text" json:"description"`
	// TargetAmount 达成该里程碑所需金额
	TargetAmount decimal.Decimal `gorm:"column:target_amount;type:decimal(18,2);not null" json:"target_amount"`
	// Reached 是否已达成
	Reached bool `gorm:"column:reached;not null;default:false" json:"reached"`
	// ReachedAt 达成时间
	ReachedAt *time.Time `gorm:"column:reached_at" json:"reached_at"`
}

func (Milestone) TableName() string { return "project_milestones" }

// ProjectUpdate 项目进展动态
type ProjectUpdate struct {
	gorm.Model
	// ProjectID 所属项目
	ProjectID string `gorm:"column:project_id;type:varchar(32);index;not null" json:"project_id"`
	// Title 标题
	Title string `gorm:"column:title;type:varchar(200);not null" json:"title"`
	// Content 内容
	Content string `gorm:"column:content;type:text" json:"content"`
}

func (ProjectUpdate) TableName() string { return "project_updates" }
