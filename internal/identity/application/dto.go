package application

import "github.com/donatetrack/donatetrack/internal/identity/domain"

// UserDTO 用户视图
type UserDTO struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
	CreatedAt  int64  `json:"created_at"`
}

// DonorProfileDTO 捐赠人档案视图
type DonorProfileDTO struct {
	TotalDonated       string `json:"total_donated"`
	DonationCount      int64  `json:"donation_count"`
	AnonymousByDefault bool   `json:"anonymous_by_default"`
}

// NGOProfileDTO 公益组织档案视图
type NGOProfileDTO struct {
	OrgName            string `json:"org_name"`
	RegistrationNo     string `json:"registration_no"`
	Description        string `json:"description"`
	Website            string `json:"website"`
	VerificationLevel  string `json:"verification_level"`
	VerificationStatus string `json:"verification_status"`
	ComplianceScore    int    `json:"compliance_score"`
	TotalRaised        string `json:"total_raised"`
	ProjectCount       int64  `json:"project_count"`
}

// ProfileDTO 用户完整档案视图
type ProfileDTO struct {
	User  UserDTO          `json:"user"`
	Donor *DonorProfileDTO `json:"donor,omitempty"`
	NGO   *NGOProfileDTO   `json:"ngo,omitempty"`
}

func toUserDTO(u *domain.User) *UserDTO {
	return &UserDTO{
		UserID:     u.UserID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt.Unix(),
	}
}

func toDonorProfileDTO(p *domain.DonorProfile) *DonorProfileDTO {
	return &DonorProfileDTO{
		TotalDonated:       p.TotalDonated.String(),
		DonationCount:      p.DonationCount,
		AnonymousByDefault: p.AnonymousByDefault,
	}
}

func toNGOProfileDTO(p *domain.NGOProfile) *NGOProfileDTO {
	return &NGOProfileDTO{
		OrgName:            p.OrgName,
		RegistrationNo:     p.RegistrationNo,
		Description:        p.Description,
		Website:            p.Website,
		VerificationLevel:  string(p.VerificationLevel),
		VerificationStatus: string(p.VerificationStatus),
		ComplianceScore:    p.ComplianceScore,
		TotalRaised:        p.TotalRaised.String(),
		ProjectCount:       p.ProjectCount,
	}
}
