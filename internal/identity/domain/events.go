package domain

import (
	"context"
	"time"
)

// NGOVerifiedEvent 公益组织认证结果事件
type NGOVerifiedEvent struct {
	NGOID           string            `json:"ngo_id"`
	OrgName         string            `json:"org_name"`
	Level           VerificationLevel `json:"level"`
	ComplianceScore int               `json:"compliance_score"`
	Notes           string            `json:"notes,omitempty"`
	VerifiedAt      time.Time         `json:"verified_at"`
}

// EventPublisher 身份上下文事件发布接口
type EventPublisher interface {
	PublishNGOVerified(ctx context.Context, event NGOVerifiedEvent) error
}
