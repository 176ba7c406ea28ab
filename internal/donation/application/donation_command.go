package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/donatetrack/donatetrack/internal/donation/domain"
	frauddomain "github.com/donatetrack/donatetrack/internal/fraud/domain"
	identitydomain "github.com/donatetrack/donatetrack/internal/identity/domain"
	"github.com/donatetrack/donatetrack/internal/payment/gateway"
	projectdomain "github.com/donatetrack/donatetrack/internal/project/domain"
	"github.com/donatetrack/donatetrack/pkg/contextx"
	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/donatetrack/donatetrack/pkg/metrics"
	"github.com/donatetrack/donatetrack/pkg/utils"
)

// CreateIntentCommand 创建捐赠意向命令
type CreateIntentCommand struct {
	DonorID       string
	ProjectID     string
	Amount        decimal.Decimal
	PaymentMethod string
	IsAnonymous   bool
	Message       string
}

// ConfirmCommand 支付确认命令
type ConfirmCommand struct {
	TransactionID string
	DonorID       string
	PaymentID     string
	Signature     string
}

// RefundCommand 退款申请命令
type RefundCommand struct {
	TransactionID string
	DonorID       string
	Reason        string
}

// DonationCommandService 捐赠生命周期的写操作。
// 完成时的级联更新（项目筹款额、捐赠人累计额）在单个数据库事务里执行，
// 任何一步失败整体回滚，不会留下不一致的聚合值。
type DonationCommandService struct {
	donations domain.DonationRepository
	projects  projectdomain.ProjectRepository
	users     identitydomain.UserRepository
	donors    identitydomain.DonorProfileRepository
	ngos      identitydomain.NGOProfileRepository
	publisher domain.EventPublisher
	gateway   gateway.Gateway
	policy    frauddomain.Policy
	metrics   *metrics.Metrics
	idgen     *utils.SnowflakeID
	db        txRunner
}

// txRunner 抽象事务边界，*gorm.DB 天然满足。
type txRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// NewDonationCommandService 创建捐赠命令服务实例
func NewDonationCommandService(
	donations domain.DonationRepository,
	projects projectdomain.ProjectRepository,
	users identitydomain.UserRepository,
	donors identitydomain.DonorProfileRepository,
	ngos identitydomain.NGOProfileRepository,
	publisher domain.EventPublisher,
	gw gateway.Gateway,
	policy frauddomain.Policy,
	m *metrics.Metrics,
	idgen *utils.SnowflakeID,
	db txRunner,
) *DonationCommandService {
	return &DonationCommandService{
		donations: donations,
		projects:  projects,
		users:     users,
		donors:    donors,
		ngos:      ngos,
		publisher: publisher,
		gateway:   gw,
		policy:    policy,
		metrics:   m,
		idgen:     idgen,
		db:        db,
	}
}

// IntentResult 创建意向的返回值
type IntentResult struct {
	Donation      *DonationDTO   `json:"donation"`
	PaymentIntent *gateway.Order `json:"payment_intent"`
}

// CreateIntent 创建捐赠意向。金额校验在任何持久化之前完成；
// 风险分在这里计算一次，之后不再重新评估。
func (s *DonationCommandService) CreateIntent(ctx context.Context, cmd CreateIntentCommand) (*IntentResult, error) {
	if !domain.ValidAmount(cmd.Amount) {
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now()

	project, err := s.projects.Get(ctx, cmd.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil || !project.AcceptingDonations(now) {
		return nil, domain.ErrProjectUnavailable
	}

	assessment, err := s.assessRisk(ctx, cmd, now)
	if err != nil {
		return nil, err
	}

	fee := domain.ProcessingFee(cmd.Amount)
	transactionID := fmt.Sprintf("TXN-%d", s.idgen.Generate())

	order, err := s.gateway.CreateOrder(ctx, transactionID, cmd.Amount, "INR")
	if err != nil {
		logger.Error(ctx, "Payment intent creation failed", "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentGateway, err)
	}

	donation := &domain.Donation{
		TransactionID:  transactionID,
		DonorID:        cmd.DonorID,
		ProjectID:      cmd.ProjectID,
		Amount:         cmd.Amount,
		ProcessingFee:  fee,
		NetAmount:      cmd.Amount.Sub(fee),
		Status:         domain.StatusPending,
		PaymentStatus:  domain.PaymentInitiated,
		PaymentMethod:  cmd.PaymentMethod,
		GatewayOrderID: order.OrderID,
		RiskScore:      assessment.RiskScore,
		RiskFlags:      utils.ToJSON(assessment.Flags),
		IsAnonymous:    cmd.IsAnonymous,
		Message:        cmd.Message,
	}

	if err := s.donations.Save(ctx, donation); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DonationsTotal.Inc()
		if assessment.HighRisk() {
			s.metrics.HighRiskDonations.Inc()
		}
	}
	logger.Info(ctx, "Donation intent created",
		"transaction_id", transactionID,
		"project_id", cmd.ProjectID,
		"amount", cmd.Amount.String(),
		"risk_score", assessment.RiskScore)

	return &IntentResult{Donation: toDonationDTO(donation), PaymentIntent: order}, nil
}

// Confirm 校验支付回执并完成捐赠。校验通过后签发收据，
// 并在同一事务内级联更新项目筹款额与捐赠人累计额。
// 重复确认已完成的捐赠直接返回当前记录，级联只触发一次。
func (s *DonationCommandService) Confirm(ctx context.Context, cmd ConfirmCommand) (*DonationDTO, error) {
	donation, err := s.donations.GetByTransactionID(ctx, cmd.TransactionID)
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, domain.ErrDonationNotFound
	}
	if donation.DonorID != cmd.DonorID {
		return nil, domain.ErrNotDonor
	}
	if donation.Status == domain.StatusCompleted {
		return toDonationDTO(donation), nil
	}

	if err := s.gateway.VerifySignature(donation.GatewayOrderID, cmd.PaymentID, cmd.Signature); err != nil {
		if failErr := donation.Fail(); failErr != nil {
			return nil, failErr
		}
		if saveErr := s.donations.Save(ctx, donation); saveErr != nil {
			return nil, saveErr
		}
		if s.metrics != nil {
			s.metrics.DonationsFailed.Inc()
		}
		logger.Warn(ctx, "Payment verification failed",
			"transaction_id", donation.TransactionID, "payment_id", cmd.PaymentID)
		return nil, domain.ErrPaymentVerificationFailed
	}

	now := time.Now()
	if err := donation.Complete(cmd.PaymentID, now); err != nil {
		return nil, err
	}

	project, err := s.projects.Get(ctx, donation.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, projectdomain.ErrProjectNotFound
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.donations.Save(txCtx, donation); err != nil {
			return err
		}
		if err := s.projects.ApplyDonation(txCtx, donation.ProjectID, donation.NetAmount, now); err != nil {
			return err
		}
		if err := s.donors.ApplyDonation(txCtx, donation.DonorID, donation.NetAmount); err != nil {
			return err
		}
		if err := s.ngos.ApplyDonation(txCtx, project.NGOID, donation.NetAmount); err != nil {
			return err
		}

		return s.publisher.PublishDonationCompleted(txCtx, domain.DonationCompletedEvent{
			TransactionID: donation.TransactionID,
			DonorID:       donation.DonorID,
			ProjectID:     donation.ProjectID,
			NGOID:         project.NGOID,
			Amount:        donation.Amount,
			NetAmount:     donation.NetAmount,
			ReceiptNumber: donation.Receipt(),
			IsAnonymous:   donation.IsAnonymous,
			CompletedAt:   now,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DonationsCompleted.Inc()
	}
	logger.Info(ctx, "Donation completed",
		"transaction_id", donation.TransactionID,
		"receipt_number", donation.Receipt(),
		"net_amount", donation.NetAmount.String())

	return toDonationDTO(donation), nil
}

// RequestRefund 捐赠本人发起退款。退款只改变捐赠自身状态，
// 不回滚项目与捐赠人的累计值，已退款的资金仍计入筹款总额。
func (s *DonationCommandService) RequestRefund(ctx context.Context, cmd RefundCommand) (*DonationDTO, error) {
	donation, err := s.donations.GetByTransactionID(ctx, cmd.TransactionID)
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, domain.ErrDonationNotFound
	}
	if donation.DonorID != cmd.DonorID {
		return nil, domain.ErrNotDonor
	}
	if donation.Status != domain.StatusCompleted {
		return nil, domain.ErrNotRefundable
	}

	result, err := s.gateway.Refund(ctx, donation.GatewayPaymentID, donation.Amount)
	if err != nil {
		logger.Error(ctx, "Gateway refund failed",
			"transaction_id", donation.TransactionID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentGateway, err)
	}

	now := time.Now()
	if err := donation.Refund(cmd.Reason, result.RefundID, now); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)

		if err := s.donations.Save(txCtx, donation); err != nil {
			return err
		}
		return s.publisher.PublishDonationRefunded(txCtx, domain.DonationRefundedEvent{
			TransactionID: donation.TransactionID,
			DonorID:       donation.DonorID,
			ProjectID:     donation.ProjectID,
			Amount:        donation.RefundAmount,
			Reason:        cmd.Reason,
			RefundedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DonationsRefunded.Inc()
	}
	logger.Info(ctx, "Donation refunded",
		"transaction_id", donation.TransactionID, "refund_id", result.RefundID)

	return toDonationDTO(donation), nil
}

// MarkFraudReviewed 管理员复核高风险捐赠
func (s *DonationCommandService) MarkFraudReviewed(ctx context.Context, transactionID string) error {
	donation, err := s.donations.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}
	if donation == nil {
		return domain.ErrDonationNotFound
	}

	donation.FraudReviewed = true
	return s.donations.Save(ctx, donation)
}

// assessRisk 采集风控输入并打分
func (s *DonationCommandService) assessRisk(ctx context.Context, cmd CreateIntentCommand, now time.Time) (frauddomain.Assessment, error) {
	user, err := s.users.GetByID(ctx, cmd.DonorID)
	if err != nil {
		return frauddomain.Assessment{}, err
	}
	if user == nil {
		return frauddomain.Assessment{}, errors.New("donor not found")
	}

	profile, err := s.donors.GetByUser(ctx, cmd.DonorID)
	if err != nil {
		return frauddomain.Assessment{}, err
	}
	var donationCount int64
	if profile != nil {
		donationCount = profile.DonationCount
	}

	recent, err := s.donations.CountRecentByDonor(ctx, cmd.DonorID, now.Add(-s.policy.VelocityWindow))
	if err != nil {
		return frauddomain.Assessment{}, err
	}

	return s.policy.Score(frauddomain.Input{
		Amount:          cmd.Amount,
		PaymentMethod:   cmd.PaymentMethod,
		AccountAge:      now.Sub(user.CreatedAt),
		DonationCount:   donationCount,
		RecentDonations: int(recent),
		IsAnonymous:     cmd.IsAnonymous,
	}), nil
}
