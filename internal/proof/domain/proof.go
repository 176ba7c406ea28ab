package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ProofType 证明材料类型
type ProofType string

const (
	TypeReceipt  ProofType = "receipt"
	TypePhoto    ProofType = "photo"
	TypeDocument ProofType = "document"
	TypeReport   ProofType = "report"
)

// ValidType 校验材料类型
func ValidType(t ProofType) bool {
	switch t {
	case TypeReceipt, TypePhoto, TypeDocument, TypeReport:
		return true
	}
	return false
}

// VerificationStatus 审核状态
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Proof 资金使用证明。文件地址与元数据上传后不可修改，
// 后续只有审核通过/驳回两个操作。
type Proof struct {
	gorm.Model
	// ProofID 业务 ID
	ProofID string `gorm:"column:proof_id;type:varchar(64);uniqueIndex;not null" json:"proof_id"`
	// ProjectID 所属项目
	ProjectID string `gorm:"column:project_id;type:varchar(64);index;not null" json:"project_id"`
	// NGOID 上传者
	NGOID string `gorm:"column:ngo_id;type:varchar(64);index;not null" json:"ngo_id"`
	// Type 材料类型
	Type ProofType `gorm:"column:type;type:varchar(20);not null" json:"type"`
	// Title 标题
	Title string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	// Description 说明
	Description string `gorm:"column:description;type:text" json:"description"`
	// FileURL 文件地址，上传后不可变
	FileURL string `gorm:"column:file_url;type:varchar(512);not null" json:"file_url"`
	// FileMeta 文件元数据（大小、类型等），JSON
	FileMeta string `gorm:"column:file_meta;type:varchar(512)" json:"file_meta"`
	// VerificationStatus 审核状态
	VerificationStatus VerificationStatus `gorm:"column:verification_status;type:varchar(20);index;not null;default:'pending'" json:"verification_status"`
	// ReviewNotes 审核备注
	ReviewNotes string `gorm:"column:review_notes;type:varchar(512)" json:"review_notes"`
	// ReviewedBy 审核人
	ReviewedBy string `gorm:"column:reviewed_by;type:varchar(64)" json:"reviewed_by"`
	// ReviewedAt 审核时间
	ReviewedAt *time.Time `gorm:"column:reviewed_at" json:"reviewed_at"`
}

// TableName 指定表名
func (Proof) TableName() string {
	return "proofs"
}

// Verify 审核通过，仅 pending 状态可审
func (p *Proof) Verify(reviewer, notes string, now time.Time) error {
	if p.VerificationStatus != VerificationPending {
		return ErrAlreadyReviewed
	}
	p.VerificationStatus = VerificationVerified
	p.ReviewedBy = reviewer
	p.ReviewNotes = notes
	p.ReviewedAt = &now
	return nil
}

// Reject 审核驳回，仅 pending 状态可审
func (p *Proof) Reject(reviewer, notes string, now time.Time) error {
	if p.VerificationStatus != VerificationPending {
		return ErrAlreadyReviewed
	}
	p.VerificationStatus = VerificationRejected
	p.ReviewedBy = reviewer
	p.ReviewNotes = notes
	p.ReviewedAt = &now
	return nil
}

// ProofDonation 证明与捐赠的关联
type ProofDonation struct {
	gorm.Model
	ProofID       string `gorm:"column:proof_id;type:varchar(64);index;not null" json:"proof_id"`
	TransactionID string `gorm:"column:transaction_id;type:varchar(64);index;not null" json:"transaction_id"`
}

// TableName 指定表名
func (ProofDonation) TableName() string {
	return "proof_donations"
}

var (
	// ErrProofNotFound 证明不存在
	ErrProofNotFound = errors.New("proof not found")
	// ErrInvalidProofType 非法材料类型
	ErrInvalidProofType = errors.New("invalid proof type")
	// ErrAlreadyReviewed 已审核的证明不可重复审核
	ErrAlreadyReviewed = errors.New("proof already reviewed")
	// ErrNotProjectOwner 仅项目所属 NGO 可上传
	ErrNotProjectOwner = errors.New("not the owning ngo")
)
