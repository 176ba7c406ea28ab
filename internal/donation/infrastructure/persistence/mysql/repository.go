package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/donatetrack/donatetrack/internal/donation/domain"
	"github.com/donatetrack/donatetrack/pkg/contextx"
)

// DonationRepository 捐赠仓储的 GORM 实现
type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Save(ctx context.Context, donation *domain.Donation) error {
	return contextx.DBFromContext(ctx, r.db).Save(donation).Error
}

func (r *DonationRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Donation, error) {
	var donation domain.Donation
	err := contextx.DBFromContext(ctx, r.db).Where("transaction_id = ?", transactionID).First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &donation, err
}

func (r *DonationRepository) GetByReceipt(ctx context.Context, receiptNumber string) (*domain.Donation, error) {
	var donation domain.Donation
	err := contextx.DBFromContext(ctx, r.db).Where("receipt_number = ?", receiptNumber).First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &donation, err
}

func (r *DonationRepository) List(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]*domain.Donation, int64, error) {
	db := contextx.DBFromContext(ctx, r.db).Model(&domain.Donation{})

	if filter.DonorID != "" {
		db = db.Where("donor_id = ?", filter.DonorID)
	}
	if filter.ProjectID != "" {
		db = db.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.MinRiskScore > 0 {
		db = db.Where("risk_score >= ?", filter.MinRiskScore)
	}
	if filter.Unreviewed {
		db = db.Where("fraud_reviewed = ?", false)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var donations []*domain.Donation
	err := db.Order("created_at desc").Limit(limit).Offset(offset).Find(&donations).Error
	return donations, total, err
}

func (r *DonationRepository) SummarizeDonor(ctx context.Context, donorID string) (*domain.DonorSummary, error) {
	var row struct {
		TotalAmount   decimal.Decimal
		TotalNet      decimal.Decimal
		DonationCount int64
	}

	err := contextx.DBFromContext(ctx, r.db).Model(&domain.Donation{}).
		Select("COALESCE(SUM(amount), 0) AS total_amount, COALESCE(SUM(net_amount), 0) AS total_net, COUNT(*) AS donation_count").
		Where("donor_id = ? AND status = ?", donorID, domain.StatusCompleted).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &domain.DonorSummary{
		TotalAmount:   row.TotalAmount,
		TotalNet:      row.TotalNet,
		DonationCount: row.DonationCount,
	}, nil
}

func (r *DonationRepository) CountRecentByDonor(ctx context.Context, donorID string, since time.Time) (int64, error) {
	var count int64
	err := contextx.DBFromContext(ctx, r.db).Model(&domain.Donation{}).
		Where("donor_id = ? AND created_at >= ?", donorID, since).
		Count(&count).Error
	return count, err
}
