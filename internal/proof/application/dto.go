package application

import (
	"time"

	"github.com/donatetrack/donatetrack/internal/proof/domain"
)

// ProofDTO 证明数据传输对象
type ProofDTO struct {
	ProofID            string     `json:"proof_id"`
	ProjectID          string     `json:"project_id"`
	NGOID              string     `json:"ngo_id"`
	Type               string     `json:"type"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	FileURL            string     `json:"file_url"`
	FileMeta           string     `json:"file_meta,omitempty"`
	VerificationStatus string     `json:"verification_status"`
	ReviewNotes        string     `json:"review_notes,omitempty"`
	ReviewedAt         *time.Time `json:"reviewed_at,omitempty"`
	TransactionIDs     []string   `json:"transaction_ids,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func toProofDTO(p *domain.Proof, transactionIDs []string) *ProofDTO {
	return &ProofDTO{
		ProofID:            p.ProofID,
		ProjectID:          p.ProjectID,
		NGOID:              p.NGOID,
		Type:               string(p.Type),
		Title:              p.Title,
		Description:        p.Description,
		FileURL:            p.FileURL,
		FileMeta:           p.FileMeta,
		VerificationStatus: string(p.VerificationStatus),
		ReviewNotes:        p.ReviewNotes,
		ReviewedAt:         p.ReviewedAt,
		TransactionIDs:     transactionIDs,
		CreatedAt:          p.CreatedAt,
	}
}
