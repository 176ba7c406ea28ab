package application

import (
	"time"

	"github.com/donatetrack/donatetrack/internal/donation/domain"
	"github.com/donatetrack/donatetrack/pkg/utils"
)

// DonationDTO 捐赠数据传输对象
type DonationDTO struct {
	TransactionID string     `json:"transaction_id"`
	DonorID       string     `json:"donor_id,omitempty"`
	ProjectID     string     `json:"project_id"`
	Amount        string     `json:"amount"`
	ProcessingFee string     `json:"processing_fee"`
	NetAmount     string     `json:"net_amount"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	ReceiptNumber string     `json:"receipt_number,omitempty"`
	RiskScore     int        `json:"risk_score"`
	RiskFlags     []string   `json:"risk_flags,omitempty"`
	IsAnonymous   bool       `json:"is_anonymous"`
	Message       string     `json:"message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	RefundAmount string     `json:"refund_amount,omitempty"`
	RefundReason string     `json:"refund_reason,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`
}

func toDonationDTO(d *domain.Donation) *DonationDTO {
	dto := &DonationDTO{
		TransactionID: d.TransactionID,
		DonorID:       d.DonorID,
		ProjectID:     d.ProjectID,
		Amount:        d.Amount.String(),
		ProcessingFee: d.ProcessingFee.String(),
		NetAmount:     d.NetAmount.String(),
		Status:        string(d.Status),
		PaymentStatus: string(d.PaymentStatus),
		PaymentMethod: d.PaymentMethod,
		ReceiptNumber: d.Receipt(),
		RiskScore:     d.RiskScore,
		IsAnonymous:   d.IsAnonymous,
		Message:       d.Message,
		CreatedAt:     d.CreatedAt,
		CompletedAt:   d.CompletedAt,
		RefundReason:  d.RefundReason,
		RefundedAt:    d.RefundedAt,
	}
	if d.RiskFlags != "" {
		var flags []string
		if err := utils.FromJSON(d.RiskFlags, &flags); err == nil {
			dto.RiskFlags = flags
		}
	}
	if !d.RefundAmount.IsZero() {
		dto.RefundAmount = d.RefundAmount.String()
	}
	return dto
}

// PublicDonationDTO 项目页展示用的捐赠视图，匿名捐赠隐藏捐赠人
type PublicDonationDTO struct {
	Amount      string    `json:"amount"`
	DonorID     string    `json:"donor_id,omitempty"`
	IsAnonymous bool      `json:"is_anonymous"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPublicDonationDTO(d *domain.Donation) *PublicDonationDTO {
	dto := &PublicDonationDTO{
		Amount:      d.Amount.String(),
		IsAnonymous: d.IsAnonymous,
		Message:     d.Message,
		CreatedAt:   d.CreatedAt,
	}
	if !d.IsAnonymous {
		dto.DonorID = d.DonorID
	}
	return dto
}
