package domain

import (
	"context"
	"time"
)

// ProofRepository 证明仓储接口
type ProofRepository interface {
	// Save 保存或更新证明
	Save(ctx context.Context, proof *Proof) error
	// GetByID 根据业务 ID 获取
	GetByID(ctx context.Context, proofID string) (*Proof, error)
	// ListByProject 按项目列出，status 为空时不过滤
	ListByProject(ctx context.Context, projectID string, status VerificationStatus, limit, offset int) ([]*Proof, int64, error)
	// ListByStatus 按审核状态列出
	ListByStatus(ctx context.Context, status VerificationStatus, limit, offset int) ([]*Proof, int64, error)
	// LinkDonations 建立证明与捐赠的关联
	LinkDonations(ctx context.Context, proofID string, transactionIDs []string) error
	// ListForDonor 列出与捐赠人的捐赠关联的证明
	ListForDonor(ctx context.Context, donorID string, limit, offset int) ([]*Proof, int64, error)
	// LinkedTransactions 获取证明关联的交易号
	LinkedTransactions(ctx context.Context, proofID string) ([]string, error)
	// CountByProject 统计项目的证明数，按状态分组
	CountByProject(ctx context.Context, projectID string) (map[VerificationStatus]int64, error)
}

// ProofUploadedEvent 证明上传事件
type ProofUploadedEvent struct {
	ProofID        string    `json:"proof_id"`
	ProjectID      string    `json:"project_id"`
	NGOID          string    `json:"ngo_id"`
	Title          string    `json:"title"`
	TransactionIDs []string  `json:"transaction_ids"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// EventPublisher 证明事件发布接口
type EventPublisher interface {
	PublishProofUploaded(ctx context.Context, event ProofUploadedEvent) error
}
