package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/donatetrack/donatetrack/internal/beneficiary/domain"
)

// AidRecordDTO 援助记录
type AidRecordDTO struct {
	TransactionID string    `json:"transaction_id,omitempty"`
	Amount        string    `json:"amount"`
	Purpose       string    `json:"purpose,omitempty"`
	DisbursedAt   time.Time `json:"disbursed_at"`
}

// BeneficiaryDTO 受助对象数据传输对象
type BeneficiaryDTO struct {
	BeneficiaryID string `json:"beneficiary_id"`
	ProjectID     string `json:"project_id"`
	Name          string `json:"name"`
	Details       string `json:"details,omitempty"`
	Location      string `json:"location,omitempty"`
	// TotalAidReceived 累计援助额，查询时汇总，从不落库
	TotalAidReceived string          `json:"total_aid_received"`
	AidRecords       []*AidRecordDTO `json:"aid_records,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

func toBeneficiaryDTO(b *domain.Beneficiary, records []*domain.AidRecord, totalAid decimal.Decimal) *BeneficiaryDTO {
	dto := &BeneficiaryDTO{
		BeneficiaryID:    b.BeneficiaryID,
		ProjectID:        b.ProjectID,
		Name:             b.Name,
		Details:          b.Details,
		Location:         b.Location,
		TotalAidReceived: totalAid.String(),
		CreatedAt:        b.CreatedAt,
	}
	for _, r := range records {
		dto.AidRecords = append(dto.AidRecords, &AidRecordDTO{
			TransactionID: r.TransactionID,
			Amount:        r.Amount.String(),
			Purpose:       r.Purpose,
			DisbursedAt:   r.DisbursedAt,
		})
	}
	return dto
}
