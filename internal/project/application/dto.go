package application

import (
	"time"

	"github.com/donatetrack/donatetrack/internal/project/domain"
)

// ProjectDTO 项目视图
type ProjectDTO struct {
	ProjectID            string  `json:"project_id"`
	NGOID                string  `json:"ngo_id"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Category             string  `json:"category"`
	TargetAmount         string  `json:"target_amount"`
	RaisedAmount         string  `json:"raised_amount"`
	DonationCount        int64   `json:"donation_count"`
	AverageDonation      string  `json:"average_donation"`
	Status               string  `json:"status"`
	AdminStatus          string  `json:"admin_status"`
	CompletionPercentage float64 `json:"completion_percentage"`
	DaysRemaining        int     `json:"days_remaining"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
	LastDonationAt       int64   `json:"last_donation_at,omitempty"`
	CreatedAt            int64   `json:"created_at"`
}

// MilestoneDTO 里程碑视图
type MilestoneDTO struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	TargetAmount string `json:"target_amount"`
	Reached      bool   `json:"reached"`
}

// UpdateDTO 项目动态视图
type UpdateDTO struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// ProjectDetailDTO 项目详情视图
type ProjectDetailDTO struct {
	Project    ProjectDTO      `json:"project"`
	Milestones []*MilestoneDTO `json:"milestones,omitempty"`
	Updates    []*UpdateDTO    `json:"updates,omitempty"`
}

func toProjectDTO(p *domain.Project, now time.Time) *ProjectDTO {
	dto := &ProjectDTO{
		ProjectID:            p.ProjectID,
		NGOID:                p.NGOID,
		Title:                p.Title,
		Description:          p.Description,
		Category:             string(p.Category),
		TargetAmount:         p.TargetAmount.String(),
		RaisedAmount:         p.RaisedAmount.String(),
		DonationCount:        p.DonationCount,
		AverageDonation:      p.AverageDonation.String(),
		Status:               string(p.Status),
		AdminStatus:          string(p.AdminStatus),
		CompletionPercentage: p.CompletionPercentage(),
		DaysRemaining:        p.DaysRemaining(now),
		StartDate:            p.StartDate.Format("2006-01-02"),
		EndDate:              p.EndDate.Format("2006-01-02"),
		CreatedAt:            p.CreatedAt.Unix(),
	}
	if p.LastDonationAt != nil {
		dto.LastDonationAt = p.LastDonationAt.Unix()
	}
	return dto
}

func toMilestoneDTO(m *domain.Milestone) *MilestoneDTO {
	return &MilestoneDTO{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		TargetAmount: m.TargetAmount.String(),
		Reached:      m.Reached,
	}
}

func toUpdateDTO(u *domain.ProjectUpdate) *UpdateDTO {
	return &UpdateDTO{
		ID:        u.ID,
		Title:     u.Title,
		Content:   u.Content,
		CreatedAt: u.CreatedAt.Unix(),
	}
}
