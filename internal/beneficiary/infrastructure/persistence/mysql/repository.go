package mysql

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/donatetrack/donatetrack/internal/beneficiary/domain"
	"github.com/donatetrack/donatetrack/pkg/contextx"
)

// BeneficiaryRepository 受助对象仓储的 GORM 实现
type BeneficiaryRepository struct {
	db *gorm.DB
}

func NewBeneficiaryRepository(db *gorm.DB) *BeneficiaryRepository {
	return &BeneficiaryRepository{db: db}
}

func (r *BeneficiaryRepository) Save(ctx context.Context, beneficiary *domain.Beneficiary) error {
	return contextx.DBFromContext(ctx, r.db).Save(beneficiary).Error
}

func (r *BeneficiaryRepository) GetByID(ctx context.Context, beneficiaryID string) (*domain.Beneficiary, error) {
	var beneficiary domain.Beneficiary
	err := contextx.DBFromContext(ctx, r.db).Where("beneficiary_id = ?", beneficiaryID).First(&beneficiary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &beneficiary, err
}

func (r *BeneficiaryRepository) ListByProject(ctx context.Context, projectID string, limit, offset int) ([]*domain.Beneficiary, int64, error) {
	db := contextx.DBFromContext(ctx, r.db).Model(&domain.Beneficiary{}).Where("project_id = ?", projectID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var beneficiaries []*domain.Beneficiary
	err := db.Order("created_at desc").Limit(limit).Offset(offset).Find(&beneficiaries).Error
	return beneficiaries, total, err
}

func (r *BeneficiaryRepository) AddAidRecord(ctx context.Context, record *domain.AidRecord) error {
	return contextx.DBFromContext(ctx, r.db).Create(record).Error
}

func (r *BeneficiaryRepository) ListAidRecords(ctx context.Context, beneficiaryID string) ([]*domain.AidRecord, error) {
	var records []*domain.AidRecord
	err := contextx.DBFromContext(ctx, r.db).
		Where("beneficiary_id = ?", beneficiaryID).
		Order("disbursed_at desc").
		Find(&records).Error
	return records, err
}

func (r *BeneficiaryRepository) TotalAidReceived(ctx context.Context, beneficiaryID string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := contextx.DBFromContext(ctx, r.db).Model(&domain.AidRecord{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("beneficiary_id = ?", beneficiaryID).
		Scan(&row).Error
	return row.Total, err
}
