package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftProject(now time.Time) *Project {
	return &Project{
		ProjectID:    "PRJ-1",
		NGOID:        "USR-NGO",
		Title:        "Clean Water Wells",
		Category:     CategoryHealthcare,
		TargetAmount: decimal.NewFromInt(100000),
		RaisedAmount: decimal.Zero,
		Status:       StatusDraft,
		AdminStatus:  AdminPending,
		StartDate:    now.AddDate(0, 0, -1),
		EndDate:      now.AddDate(0, 1, 0),
	}
}

func TestProject_Validate(t *testing.T) {
	now := time.Now()

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, newDraftProject(now).Validate())
	})

	t.Run("non positive target", func(t *testing.T) {
		p := newDraftProject(now)
		p.TargetAmount = decimal.Zero
		assert.ErrorIs(t, p.Validate(), ErrInvalidTarget)
	})

	t.Run("end before start", func(t *testing.T) {
		p := newDraftProject(now)
		p.EndDate = p.StartDate.AddDate(0, 0, -1)
		assert.ErrorIs(t, p.Validate(), ErrInvalidDateRange)
	})

	t.Run("unknown category", func(t *testing.T) {
		p := newDraftProject(now)
		p.Category = Category("gaming")
		assert.ErrorIs(t, p.Validate(), ErrInvalidCategory)
	})
}

func TestProject_Lifecycle(t *testing.T) {
	now := time.Now()
	p := newDraftProject(now)

	// 草稿阶段不可捐赠
	assert.False(t, p.AcceptingDonations(now))

	require.NoError(t, p.Submit())
	assert.Equal(t, StatusPending, p.Status)

	// 重复提交被拒
	assert.ErrorIs(t, p.Submit(), ErrInvalidTransition)

	p.Approve("looks good")
	assert.Equal(t, StatusActive, p.Status)
	assert.Equal(t, AdminApproved, p.AdminStatus)
	assert.True(t, p.AcceptingDonations(now))

	// 募集窗口之外不可捐赠
	assert.False(t, p.AcceptingDonations(p.StartDate.AddDate(0, 0, -2)))
	assert.False(t, p.AcceptingDonations(p.EndDate.AddDate(0, 0, 1)))

	require.NoError(t, p.Cancel())
	assert.Equal(t, StatusCancelled, p.Status)
	assert.False(t, p.AcceptingDonations(now))
	assert.ErrorIs(t, p.Cancel(), ErrInvalidTransition)
}

func TestProject_Reject(t *testing.T) {
	now := time.Now()
	p := newDraftProject(now)
	require.NoError(t, p.Submit())

	p.Reject("incomplete documentation")
	assert.Equal(t, AdminRejected, p.AdminStatus)
	assert.Equal(t, "incomplete documentation", p.ModerationNotes)
	assert.False(t, p.AcceptingDonations(now))
}

func TestProject_RefreshCompletion(t *testing.T) {
	now := time.Now()
	p := newDraftProject(now)
	require.NoError(t, p.Submit())
	p.Approve("")

	p.RaisedAmount = decimal.NewFromInt(99999)
	p.RefreshCompletion()
	assert.Equal(t, StatusActive, p.Status)

	// 达标后自动完成，允许超募
	p.RaisedAmount = decimal.NewFromInt(137000)
	p.RefreshCompletion()
	assert.Equal(t, StatusCompleted, p.Status)

	// 完成后不可再捐赠，也不会回退
	assert.False(t, p.AcceptingDonations(now))
	p.RaisedAmount = decimal.NewFromInt(50000)
	p.RefreshCompletion()
	assert.Equal(t, StatusCompleted, p.Status)
}

func TestProject_CompletionPercentage(t *testing.T) {
	now := time.Now()
	p := newDraftProject(now)
	p.TargetAmount = decimal.NewFromInt(5000)

	p.RaisedAmount = decimal.NewFromInt(2500)
	assert.InDelta(t, 50.0, p.CompletionPercentage(), 0.001)

	// 超募显示超过 100
	p.RaisedAmount = decimal.NewFromInt(37000)
	assert.InDelta(t, 740.0, p.CompletionPercentage(), 0.001)

	p.TargetAmount = decimal.Zero
	assert.Zero(t, p.CompletionPercentage())
}

func TestProject_DaysRemaining(t *testing.T) {
	now := time.Now()
	p := newDraftProject(now)
	p.EndDate = now.Add(72*time.Hour + time.Minute)

	assert.Equal(t, 3, p.DaysRemaining(now))
	assert.Equal(t, 0, p.DaysRemaining(p.EndDate.Add(time.Hour)))
}

func TestCategory_Valid(t *testing.T) {
	for _, c := range []Category{CategoryEducation, CategoryHealthcare, CategoryEnvironment, CategoryDisaster, CategoryLivelihood, CategoryOther} {
		assert.True(t, c.Valid(), "category %s", c)
	}
	assert.False(t, Category("memes").Valid())
}
