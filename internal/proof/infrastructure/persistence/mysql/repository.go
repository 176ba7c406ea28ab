package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/donatetrack/donatetrack/internal/proof/domain"
	"github.com/donatetrack/donatetrack/pkg/contextx"
)

// ProofRepository 证明仓储的 GORM 实现
type ProofRepository struct {
	db *gorm.DB
}

func NewProofRepository(db *gorm.DB) *ProofRepository {
	return &ProofRepository{db: db}
}

func (r *ProofRepository) Save(ctx context.Context, proof *domain.Proof) error {
	return contextx.DBFromContext(ctx, r.db).Save(proof).Error
}

func (r *ProofRepository) GetByID(ctx context.Context, proofID string) (*domain.Proof, error) {
	var proof domain.Proof
	err := contextx.DBFromContext(ctx, r.db).Where("proof_id = ?", proofID).First(&proof).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &proof, err
}

func (r *ProofRepository) ListByProject(ctx context.Context, projectID string, status domain.VerificationStatus, limit, offset int) ([]*domain.Proof, int64, error) {
	db := contextx.DBFromContext(ctx, r.db).Model(&domain.Proof{}).Where("project_id = ?", projectID)
	if status != "" {
		db = db.Where("verification_status = ?", status)
	}
	return r.page(db, limit, offset)
}

func (r *ProofRepository) ListByStatus(ctx context.Context, status domain.VerificationStatus, limit, offset int) ([]*domain.Proof, int64, error) {
	db := contextx.DBFromContext(ctx, r.db).Model(&domain.Proof{}).Where("verification_status = ?", status)
	return r.page(db, limit, offset)
}

func (r *ProofRepository) LinkDonations(ctx context.Context, proofID string, transactionIDs []string) error {
	links := make([]domain.ProofDonation, 0, len(transactionIDs))
	for _, txnID := range transactionIDs {
		links = append(links, domain.ProofDonation{ProofID: proofID, TransactionID: txnID})
	}
	return contextx.DBFromContext(ctx, r.db).Create(&links).Error
}

// ListForDonor 通过捐赠关联表反查捐赠人可见的证明
func (r *ProofRepository) ListForDonor(ctx context.Context, donorID string, limit, offset int) ([]*domain.Proof, int64, error) {
	db := contextx.DBFromContext(ctx, r.db).Model(&domain.Proof{}).
		Joins("JOIN proof_donations ON proof_donations.proof_id = proofs.proof_id").
		Joins("JOIN donations ON donations.transaction_id = proof_donations.transaction_id").
		Where("donations.donor_id = ?", donorID).
		Group("proofs.id")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proofs []*domain.Proof
	err := db.Order("proofs.created_at desc").Limit(limit).Offset(offset).Find(&proofs).Error
	return proofs, total, err
}

func (r *ProofRepository) LinkedTransactions(ctx context.Context, proofID string) ([]string, error) {
	var ids []string
	err := contextx.DBFromContext(ctx, r.db).Model(&domain.ProofDonation{}).
		Where("proof_id = ?", proofID).
		Pluck("transaction_id", &ids).Error
	return ids, err
}

func (r *ProofRepository) CountByProject(ctx context.Context, projectID string) (map[domain.VerificationStatus]int64, error) {
	var rows []struct {
		VerificationStatus domain.VerificationStatus
		Count              int64
	}
	err := contextx.DBFromContext(ctx, r.db).Model(&domain.Proof{}).
		Select("verification_status, COUNT(*) AS count").
		Where("project_id = ?", projectID).
		Group("verification_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.VerificationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.VerificationStatus] = row.Count
	}
	return counts, nil
}

func (r *ProofRepository) page(db *gorm.DB, limit, offset int) ([]*domain.Proof, int64, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proofs []*domain.Proof
	err := db.Order("created_at desc").Limit(limit).Offset(offset).Find(&proofs).Error
	return proofs, total, err
}
