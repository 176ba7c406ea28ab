package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donatetrack/donatetrack/internal/donation/domain"
	frauddomain "github.com/donatetrack/donatetrack/internal/fraud/domain"
	identitydomain "github.com/donatetrack/donatetrack/internal/identity/domain"
	projectdomain "github.com/donatetrack/donatetrack/internal/project/domain"
	"github.com/donatetrack/donatetrack/pkg/utils"
)

type commandFixture struct {
	svc       *DonationCommandService
	donations *memDonationRepo
	projects  *memProjectRepo
	users     *memUserRepo
	donors    *memDonorProfileRepo
	ngos      *memNGOProfileRepo
	publisher *memPublisher
	gateway   *stubGateway
	tx        *fakeTx
}

func newCommandFixture(t *testing.T) *commandFixture {
	t.Helper()

	f := &commandFixture{
		donations: newMemDonationRepo(),
		projects:  newMemProjectRepo(),
		users:     newMemUserRepo(),
		donors:    newMemDonorProfileRepo(),
		ngos:      newMemNGOProfileRepo(),
		publisher: &memPublisher{},
		gateway:   newStubGateway(),
		tx:        &fakeTx{},
	}
	f.svc = NewDonationCommandService(
		f.donations, f.projects, f.users, f.donors, f.ngos,
		f.publisher, f.gateway, frauddomain.DefaultPolicy(),
		nil, utils.NewSnowflakeID(1), f.tx)

	// 老账号捐赠人，不触发新账号风控加分
	donor := identitydomain.NewUser("USR-D1", "donor@example.com", "hash", "Donor", identitydomain.RoleDonor)
	donor.CreatedAt = time.Now().AddDate(-1, 0, 0)
	require.NoError(t, f.users.Save(context.Background(), donor))
	require.NoError(t, f.donors.Save(context.Background(), &identitydomain.DonorProfile{
		UserID:        "USR-D1",
		TotalDonated:  decimal.Zero,
		DonationCount: 4,
	}))

	require.NoError(t, f.ngos.Save(context.Background(), &identitydomain.NGOProfile{
		UserID:      "USR-N1",
		TotalRaised: decimal.Zero,
	}))

	// 审核通过的募集中项目
	now := time.Now()
	project := &projectdomain.Project{
		ProjectID:    "PRJ-1",
		NGOID:        "USR-N1",
		Title:        "School Meals",
		Category:     projectdomain.CategoryEducation,
		TargetAmount: decimal.NewFromInt(100000),
		RaisedAmount: decimal.Zero,
		Status:       projectdomain.StatusActive,
		AdminStatus:  projectdomain.AdminApproved,
		StartDate:    now.AddDate(0, 0, -7),
		EndDate:      now.AddDate(0, 1, 0),
	}
	require.NoError(t, f.projects.Save(context.Background(), project))
	return f
}

func (f *commandFixture) intent() CreateIntentCommand {
	return CreateIntentCommand{
		DonorID:       "USR-D1",
		ProjectID:     "PRJ-1",
		Amount:        decimal.NewFromInt(5000),
		PaymentMethod: "upi",
	}
}

func TestCreateIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newCommandFixture(t)
		result, err := f.svc.CreateIntent(ctx, f.intent())
		require.NoError(t, err)

		assert.Equal(t, "5000", result.Donation.Amount)
		assert.Equal(t, "128", result.Donation.ProcessingFee)
		assert.Equal(t, "4872", result.Donation.NetAmount)
		assert.Equal(t, string(domain.StatusPending), result.Donation.Status)
		assert.NotEmpty(t, result.PaymentIntent.OrderID)
		assert.Equal(t, int64(500000), result.PaymentIntent.Amount)
		assert.Zero(t, result.Donation.RiskScore)

		stored, err := f.donations.GetByTransactionID(ctx, result.Donation.TransactionID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, result.PaymentIntent.OrderID, stored.GatewayOrderID)
		// 收据在支付确认前不签发
		assert.Nil(t, stored.ReceiptNumber)
	})

	t.Run("amount below minimum rejected before any side effect", func(t *testing.T) {
		f := newCommandFixture(t)
		cmd := f.intent()
		cmd.Amount = decimal.RequireFromString("0.50")

		_, err := f.svc.CreateIntent(ctx, cmd)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		assert.Zero(t, f.gateway.orderCalls)
		assert.Zero(t, f.donations.saveCalls)
	})

	t.Run("amount above maximum rejected", func(t *testing.T) {
		f := newCommandFixture(t)
		cmd := f.intent()
		cmd.Amount = decimal.NewFromInt(1000001)
		_, err := f.svc.CreateIntent(ctx, cmd)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("unknown project", func(t *testing.T) {
		f := newCommandFixture(t)
		cmd := f.intent()
		cmd.ProjectID = "PRJ-missing"
		_, err := f.svc.CreateIntent(ctx, cmd)
		assert.ErrorIs(t, err, domain.ErrProjectUnavailable)
	})

	t.Run("project not accepting donations", func(t *testing.T) {
		f := newCommandFixture(t)
		project, _ := f.projects.Get(ctx, "PRJ-1")
		project.Status = projectdomain.StatusCompleted

		_, err := f.svc.CreateIntent(ctx, f.intent())
		assert.ErrorIs(t, err, domain.ErrProjectUnavailable)
		assert.Zero(t, f.gateway.orderCalls)
	})

	t.Run("gateway failure leaves no donation behind", func(t *testing.T) {
		f := newCommandFixture(t)
		f.gateway.failOrders = true

		_, err := f.svc.CreateIntent(ctx, f.intent())
		assert.ErrorIs(t, err, domain.ErrPaymentGateway)
		assert.Zero(t, f.donations.saveCalls)
	})

	t.Run("risk flags recorded at creation", func(t *testing.T) {
		f := newCommandFixture(t)
		// 新注册账号首次大额匿名捐赠
		user, _ := f.users.GetByID(ctx, "USR-D1")
		user.CreatedAt = time.Now().Add(-2 * time.Hour)
		profile, _ := f.donors.GetByUser(ctx, "USR-D1")
		profile.DonationCount = 0

		cmd := f.intent()
		cmd.Amount = decimal.NewFromInt(60000)
		cmd.IsAnonymous = true
		cmd.PaymentMethod = "wallet"

		result, err := f.svc.CreateIntent(ctx, cmd)
		require.NoError(t, err)
		// 20 + 20 + 10 + 10 + 5 = 65
		assert.Equal(t, 65, result.Donation.RiskScore)
		assert.Contains(t, result.Donation.RiskFlags, "large_amount")
		assert.Contains(t, result.Donation.RiskFlags, "new_account")
	})
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("valid signature completes donation and cascades aggregates", func(t *testing.T) {
		f := newCommandFixture(t)
		result, err := f.svc.CreateIntent(ctx, f.intent())
		require.NoError(t, err)

		dto, err := f.svc.Confirm(ctx, ConfirmCommand{
			TransactionID: result.Donation.TransactionID,
			DonorID:       "USR-D1",
			PaymentID:     "pay_1",
			Signature:     f.gateway.Sign(result.PaymentIntent.OrderID, "pay_1"),
		})
		require.NoError(t, err)

		assert.Equal(t, string(domain.StatusCompleted), dto.Status)
		assert.NotEmpty(t, dto.ReceiptNumber)

		stored, _ := f.donations.GetByTransactionID(ctx, result.Donation.TransactionID)
		require.NotNil(t, stored.ReceiptNumber)
		assert.Equal(t, "pay_1", stored.GatewayPaymentID)
		require.NotNil(t, stored.CompletedAt)

		// 级联在同一事务内各触发一次
		assert.Equal(t, 1, f.tx.calls)
		assert.Equal(t, 1, f.projects.applyCalls)
		assert.Equal(t, 1, f.donors.applyCalls)
		assert.Equal(t, 1, f.ngos.applyCalls)

		// 入账的是净额：₹5000 - ₹128 手续费
		project, _ := f.projects.Get(ctx, "PRJ-1")
		assert.Equal(t, "4872", project.RaisedAmount.String())
		donor, _ := f.donors.GetByUser(ctx, "USR-D1")
		assert.Equal(t, "4872", donor.TotalDonated.String())
		assert.Equal(t, int64(5), donor.DonationCount)
		ngo, _ := f.ngos.GetByUser(ctx, "USR-N1")
		assert.Equal(t, "4872", ngo.TotalRaised.String())

		require.Len(t, f.publisher.completed, 1)
		event := f.publisher.completed[0]
		assert.Equal(t, stored.TransactionID, event.TransactionID)
		assert.Equal(t, "USR-N1", event.NGOID)
		assert.Equal(t, "4872", event.NetAmount.String())
		assert.Equal(t, stored.Receipt(), event.ReceiptNumber)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		f := newCommandFixture(t)
		_, err := f.svc.Confirm(ctx, ConfirmCommand{TransactionID: "TXN-missing", DonorID: "USR-D1"})
		assert.ErrorIs(t, err, domain.ErrDonationNotFound)
	})

	t.Run("other donor cannot confirm", func(t *testing.T) {
		f := newCommandFixture(t)
		result, err := f.svc.CreateIntent(ctx, f.intent())
		require.NoError(t, err)

		_, err = f.svc.Confirm(ctx, ConfirmCommand{
			TransactionID: result.Donation.TransactionID,
			DonorID:       "USR-D2",
			PaymentID:     "pay_1",
			Signature:     f.gateway.Sign(result.PaymentIntent.OrderID, "pay_1"),
		})
		assert.ErrorIs(t, err, domain.ErrNotDonor)
	})

	t.Run("invalid signature fails donation and leaves aggregates untouched", func(t *testing.T) {
		f := newCommandFixture(t)
		result, err := f.svc.CreateIntent(ctx, f.intent())
		require.NoError(t, err)

		_, err = f.svc.Confirm(ctx, ConfirmCommand{
			TransactionID: result.Donation.TransactionID,
			DonorID:       "USR-D1",
			PaymentID:     "pay_1",
			Signature:     "forged-signature",
		})
		assert.ErrorIs(t, err, domain.ErrPaymentVerificationFailed)

		stored, _ := f.donations.GetByTransactionID(ctx, result.Donation.TransactionID)
		assert.Equal(t, domain.StatusFailed, stored.Status)
		assert.Nil(t, stored.ReceiptNumber)

		// 项目筹款额与捐赠人累计额不变，事件未发布
		assert.Zero(t, f.projects.applyCalls)
		assert.Zero(t, f.donors.applyCalls)
		assert.Zero(t, f.ngos.applyCalls)
		assert.Empty(t, f.publisher.completed)

		project, _ := f.projects.Get(ctx, "PRJ-1")
		assert.True(t, project.RaisedAmount.IsZero())
	})

	t.Run("already completed confirm is idempotent", func(t *testing.T) {
		f := newCommandFixture(t)
		result, err := f.svc.CreateIntent(ctx, f.intent())
		require.NoError(t, err)

		// 预先置为已完成，模拟首次确认已经落库
		stored, _ := f.donations.GetByTransactionID(ctx, result.Donation.TransactionID)
		require.NoError(t, stored.Complete("pay_1", time.Now()))

		dto, err := f.svc.Confirm(ctx, ConfirmCommand{
			TransactionID: result.Donation.TransactionID,
			DonorID:       "USR-D1",
			PaymentID:     "pay_1",
			Signature:     "anything",
		})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCompleted), dto.Status)
		assert.Equal(t, stored.Receipt(), dto.ReceiptNumber)

		// 级联不再触发，签名也不再校验
		assert.Zero(t, f.gateway.verifyCalls)
		assert.Zero(t, f.projects.applyCalls)
		assert.Empty(t, f.publisher.completed)
	})
}

func TestRequestRefund_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("pending donation is not refundable", func(t *testing.T) {
		f := newCommandFixture(t)
		result, err := f.svc.CreateIntent(ctx, f.intent())
		require.NoError(t, err)

		_, err = f.svc.RequestRefund(ctx, RefundCommand{
			TransactionID: result.Donation.TransactionID,
			DonorID:       "USR-D1",
			Reason:        "changed my mind",
		})
		assert.ErrorIs(t, err, domain.ErrNotRefundable)
	})

	t.Run("only the donor can request", func(t *testing.T) {
		f := newCommandFixture(t)
		result, err := f.svc.CreateIntent(ctx, f.intent())
		require.NoError(t, err)

		_, err = f.svc.RequestRefund(ctx, RefundCommand{
			TransactionID: result.Donation.TransactionID,
			DonorID:       "USR-other",
			Reason:        "changed my mind",
		})
		assert.ErrorIs(t, err, domain.ErrNotDonor)
	})
}

func TestMarkFraudReviewed(t *testing.T) {
	ctx := context.Background()
	f := newCommandFixture(t)

	result, err := f.svc.CreateIntent(ctx, f.intent())
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkFraudReviewed(ctx, result.Donation.TransactionID))
	stored, _ := f.donations.GetByTransactionID(ctx, result.Donation.TransactionID)
	assert.True(t, stored.FraudReviewed)

	assert.ErrorIs(t, f.svc.MarkFraudReviewed(ctx, "TXN-missing"), domain.ErrDonationNotFound)
}
