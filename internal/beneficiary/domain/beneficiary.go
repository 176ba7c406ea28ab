package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Beneficiary 受助对象，属于一个项目
type Beneficiary struct {
	gorm.Model
	// BeneficiaryID 业务 ID
	BeneficiaryID string `gorm:"column:beneficiary_id;type:varchar(64);uniqueIndex;not null" json:"beneficiary_id"`
	// ProjectID 所属项目
	ProjectID string `gorm:"column:project_id;type:varchar(64);index;not null" json:"project_id"`
	// Name 姓名或团体名称
	Name string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	// Details 背景说明
	Details string `gorm:"column:details;type:text" json:"details"`
	// Location 所在地
	Location string `gorm:"column:location;type:varchar(255)" json:"location"`
}

// TableName 指定表名
func (Beneficiary) TableName() string {
	return "beneficiaries"
}

// AidRecord 援助发放记录，引用具体捐赠
type AidRecord struct {
	gorm.Model
	// BeneficiaryID 受助对象业务 ID
	BeneficiaryID string `gorm:"column:beneficiary_id;type:varchar(64);index;not null" json:"beneficiary_id"`
	// TransactionID 资金来源捐赠交易号
	TransactionID string `gorm:"column:transaction_id;type:varchar(64);index" json:"transaction_id"`
	// Amount 发放金额
	Amount decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	// Purpose 用途
	Purpose string `gorm:"column:purpose;type:varchar(512)" json:"purpose"`
	// DisbursedAt 发放时间
	DisbursedAt time.Time `gorm:"column:disbursed_at;not null" json:"disbursed_at"`
}

// TableName 指定表名
func (AidRecord) TableName() string {
	return "aid_records"
}

// BeneficiaryRepository 受助对象仓储接口
type BeneficiaryRepository interface {
	// Save 保存或更新受助对象
	Save(ctx context.Context, beneficiary *Beneficiary) error
	// GetByID 根据业务 ID 获取
	GetByID(ctx context.Context, beneficiaryID string) (*Beneficiary, error)
	// ListByProject 按项目列出
	ListByProject(ctx context.Context, projectID string, limit, offset int) ([]*Beneficiary, int64, error)
	// AddAidRecord 添加援助记录
	AddAidRecord(ctx context.Context, record *AidRecord) error
	// ListAidRecords 列出受助对象的援助记录
	ListAidRecords(ctx context.Context, beneficiaryID string) ([]*AidRecord, error)
	// TotalAidReceived 汇总受助对象累计收到的援助，永不落库
	TotalAidReceived(ctx context.Context, beneficiaryID string) (decimal.Decimal, error)
}

var (
	// ErrBeneficiaryNotFound 受助对象不存在
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")
	// ErrInvalidAidAmount 援助金额必须大于 0
	ErrInvalidAidAmount = errors.New("aid amount must be positive")
)
