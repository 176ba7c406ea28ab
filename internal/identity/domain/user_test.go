package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("User@Example.COM"))
	assert.Equal(t, "user@example.com", NormalizeEmail("  user@example.com  "))
}

func TestUser_Lockout(t *testing.T) {
	now := time.Now()
	user := NewUser("USR-1", "user@example.com", "hash", "User", RoleDonor)

	for i := 0; i < MaxFailedLogins-1; i++ {
		user.RecordFailedLogin(now)
		assert.False(t, user.Locked(now), "attempt %d should not lock", i+1)
	}

	user.RecordFailedLogin(now)
	assert.True(t, user.Locked(now))
	require.NotNil(t, user.LockedUntil)

	// 锁定期过后自动解锁
	assert.False(t, user.Locked(now.Add(LockoutDuration+time.Minute)))

	user.ResetLoginFailures()
	assert.Equal(t, 0, user.FailedLogins)
	assert.Nil(t, user.LockedUntil)
	assert.False(t, user.Locked(now))
}

func TestUserRole_Valid(t *testing.T) {
	assert.True(t, RoleDonor.Valid())
	assert.True(t, RoleNGO.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, UserRole("superuser").Valid())
}

func TestVerificationLevel_ComplianceScore(t *testing.T) {
	assert.Equal(t, 75, VerificationVerified.ComplianceScore())
	assert.Equal(t, 95, VerificationPremium.ComplianceScore())
	assert.Equal(t, 0, VerificationSuspended.ComplianceScore())
	assert.Equal(t, 50, VerificationUnverified.ComplianceScore())
	assert.Equal(t, 50, VerificationBasic.ComplianceScore())
}

func TestNGOProfile_ApplyVerification(t *testing.T) {
	t.Run("verified level", func(t *testing.T) {
		profile := &NGOProfile{UserID: "USR-1", OrgName: "Helping Hands"}
		profile.ApplyVerification(VerificationVerified, "documents checked")

		assert.Equal(t, VerificationVerified, profile.VerificationLevel)
		assert.Equal(t, 75, profile.ComplianceScore)
		assert.Equal(t, VerificationStatusVerified, profile.VerificationStatus)
		assert.Equal(t, "documents checked", profile.VerificationNotes)
	})

	t.Run("suspension rejects", func(t *testing.T) {
		profile := &NGOProfile{UserID: "USR-1", OrgName: "Helping Hands"}
		profile.ApplyVerification(VerificationSuspended, "fraud report under investigation")

		assert.Equal(t, 0, profile.ComplianceScore)
		assert.Equal(t, VerificationStatusRejected, profile.VerificationStatus)
	})

	t.Run("back to unverified resets to pending", func(t *testing.T) {
		profile := &NGOProfile{UserID: "USR-1", OrgName: "Helping Hands"}
		profile.ApplyVerification(VerificationPremium, "")
		profile.ApplyVerification(VerificationUnverified, "re-registration required")

		assert.Equal(t, 50, profile.ComplianceScore)
		assert.Equal(t, VerificationStatusPending, profile.VerificationStatus)
	})
}
