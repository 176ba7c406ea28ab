package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidType(t *testing.T) {
	for _, pt := range []ProofType{TypeReceipt, TypePhoto, TypeDocument, TypeReport} {
		assert.True(t, ValidType(pt), "type %s", pt)
	}
	assert.False(t, ValidType(ProofType("video")))
	assert.False(t, ValidType(ProofType("")))
}

func TestProof_Review(t *testing.T) {
	now := time.Now()

	newProof := func() *Proof {
		return &Proof{
			ProofID:            "PRF-1",
			ProjectID:          "PRJ-1",
			NGOID:              "USR-N1",
			Type:               TypeReceipt,
			FileURL:            "https://files.example/receipt.pdf",
			VerificationStatus: VerificationPending,
		}
	}

	t.Run("verify", func(t *testing.T) {
		p := newProof()
		require.NoError(t, p.Verify("USR-A1", "matches the invoice", now))

		assert.Equal(t, VerificationVerified, p.VerificationStatus)
		assert.Equal(t, "USR-A1", p.ReviewedBy)
		assert.Equal(t, "matches the invoice", p.ReviewNotes)
		require.NotNil(t, p.ReviewedAt)

		// 审核结果不可翻转
		assert.ErrorIs(t, p.Reject("USR-A2", "", now), ErrAlreadyReviewed)
		assert.ErrorIs(t, p.Verify("USR-A2", "", now), ErrAlreadyReviewed)
	})

	t.Run("reject", func(t *testing.T) {
		p := newProof()
		require.NoError(t, p.Reject("USR-A1", "blurry photo", now))

		assert.Equal(t, VerificationRejected, p.VerificationStatus)
		assert.ErrorIs(t, p.Verify("USR-A1", "", now), ErrAlreadyReviewed)
	})
}
