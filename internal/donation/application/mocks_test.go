package application

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/donatetrack/donatetrack/internal/donation/domain"
	identitydomain "github.com/donatetrack/donatetrack/internal/identity/domain"
	"github.com/donatetrack/donatetrack/internal/payment/gateway"
	projectdomain "github.com/donatetrack/donatetrack/internal/project/domain"
)

// fakeTx 直接执行回调。内存仓储不读事务句柄，
// 回调返回错误时与真实事务一样整体中止。
type fakeTx struct {
	calls int
}

func (f *fakeTx) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	f.calls++
	return fc(nil)
}

// memDonationRepo 内存捐赠仓储
type memDonationRepo struct {
	byTxID    map[string]*domain.Donation
	saveCalls int
}

func newMemDonationRepo() *memDonationRepo {
	return &memDonationRepo{byTxID: make(map[string]*domain.Donation)}
}

func (r *memDonationRepo) Save(ctx context.Context, donation *domain.Donation) error {
	r.saveCalls++
	r.byTxID[donation.TransactionID] = donation
	return nil
}

func (r *memDonationRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Donation, error) {
	return r.byTxID[transactionID], nil
}

func (r *memDonationRepo) GetByReceipt(ctx context.Context, receiptNumber string) (*domain.Donation, error) {
	for _, d := range r.byTxID {
		if d.Receipt() == receiptNumber {
			return d, nil
		}
	}
	return nil, nil
}

func (r *memDonationRepo) List(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]*domain.Donation, int64, error) {
	var out []*domain.Donation
	for _, d := range r.byTxID {
		if filter.DonorID != "" && d.DonorID != filter.DonorID {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		out = append(out, d)
	}
	return out, int64(len(out)), nil
}

func (r *memDonationRepo) SummarizeDonor(ctx context.Context, donorID string) (*domain.DonorSummary, error) {
	summary := &domain.DonorSummary{TotalAmount: decimal.Zero, TotalNet: decimal.Zero}
	for _, d := range r.byTxID {
		if d.DonorID == donorID && d.Status == domain.StatusCompleted {
			summary.TotalAmount = summary.TotalAmount.Add(d.Amount)
			summary.TotalNet = summary.TotalNet.Add(d.NetAmount)
			summary.DonationCount++
		}
	}
	return summary, nil
}

func (r *memDonationRepo) CountRecentByDonor(ctx context.Context, donorID string, since time.Time) (int64, error) {
	var n int64
	for _, d := range r.byTxID {
		if d.DonorID == donorID && d.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

// memProjectRepo 内存项目仓储，记录级联调用次数
type memProjectRepo struct {
	byID       map[string]*projectdomain.Project
	applyCalls int
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{byID: make(map[string]*projectdomain.Project)}
}

func (r *memProjectRepo) Save(ctx context.Context, project *projectdomain.Project) error {
	r.byID[project.ProjectID] = project
	return nil
}

func (r *memProjectRepo) Get(ctx context.Context, projectID string) (*projectdomain.Project, error) {
	return r.byID[projectID], nil
}

func (r *memProjectRepo) List(ctx context.Context, filter projectdomain.ListFilter, limit, offset int) ([]*projectdomain.Project, int64, error) {
	return nil, 0, nil
}

func (r *memProjectRepo) ApplyDonation(ctx context.Context, projectID string, netAmount decimal.Decimal, at time.Time) error {
	r.applyCalls++
	p, ok := r.byID[projectID]
	if !ok {
		return projectdomain.ErrProjectNotFound
	}
	p.RaisedAmount = p.RaisedAmount.Add(netAmount)
	p.RefreshCompletion()
	return nil
}

func (r *memProjectRepo) CountActive(ctx context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

// memUserRepo 内存用户仓储
type memUserRepo struct {
	byID map[string]*identitydomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[string]*identitydomain.User)}
}

func (r *memUserRepo) Save(ctx context.Context, user *identitydomain.User) error {
	r.byID[user.UserID] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, userID string) (*identitydomain.User, error) {
	return r.byID[userID], nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*identitydomain.User, error) {
	for _, u := range r.byID {
		if u.Email == identitydomain.NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) List(ctx context.Context, role identitydomain.UserRole, limit, offset int) ([]*identitydomain.User, int64, error) {
	return nil, 0, nil
}

// memDonorProfileRepo 内存捐赠人档案仓储
type memDonorProfileRepo struct {
	byUser     map[string]*identitydomain.DonorProfile
	applyCalls int
}

func newMemDonorProfileRepo() *memDonorProfileRepo {
	return &memDonorProfileRepo{byUser: make(map[string]*identitydomain.DonorProfile)}
}

func (r *memDonorProfileRepo) Save(ctx context.Context, profile *identitydomain.DonorProfile) error {
	r.byUser[profile.UserID] = profile
	return nil
}

func (r *memDonorProfileRepo) GetByUser(ctx context.Context, userID string) (*identitydomain.DonorProfile, error) {
	return r.byUser[userID], nil
}

func (r *memDonorProfileRepo) ApplyDonation(ctx context.Context, userID string, netAmount decimal.Decimal) error {
	r.applyCalls++
	p, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	p.TotalDonated = p.TotalDonated.Add(netAmount)
	p.DonationCount++
	return nil
}

// memNGOProfileRepo 内存 NGO 档案仓储
type memNGOProfileRepo struct {
	byUser     map[string]*identitydomain.NGOProfile
	applyCalls int
}

func newMemNGOProfileRepo() *memNGOProfileRepo {
	return &memNGOProfileRepo{byUser: make(map[string]*identitydomain.NGOProfile)}
}

func (r *memNGOProfileRepo) Save(ctx context.Context, profile *identitydomain.NGOProfile) error {
	r.byUser[profile.UserID] = profile
	return nil
}

func (r *memNGOProfileRepo) GetByUser(ctx context.Context, userID string) (*identitydomain.NGOProfile, error) {
	return r.byUser[userID], nil
}

func (r *memNGOProfileRepo) ListByStatus(ctx context.Context, status identitydomain.VerificationStatus, limit, offset int) ([]*identitydomain.NGOProfile, int64, error) {
	return nil, 0, nil
}

func (r *memNGOProfileRepo) ApplyDonation(ctx context.Context, userID string, netAmount decimal.Decimal) error {
	r.applyCalls++
	p, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	p.TotalRaised = p.TotalRaised.Add(netAmount)
	return nil
}

func (r *memNGOProfileRepo) IncrementProjectCount(ctx context.Context, userID string) error {
	if p, ok := r.byUser[userID]; ok {
		p.ProjectCount++
	}
	return nil
}

// memPublisher 记录发布的事件
type memPublisher struct {
	completed []domain.DonationCompletedEvent
	refunded  []domain.DonationRefundedEvent
}

func (p *memPublisher) PublishDonationCompleted(ctx context.Context, event domain.DonationCompletedEvent) error {
	p.completed = append(p.completed, event)
	return nil
}

func (p *memPublisher) PublishDonationRefunded(ctx context.Context, event domain.DonationRefundedEvent) error {
	p.refunded = append(p.refunded, event)
	return nil
}

// stubGateway 可注入失败的网关替身
type stubGateway struct {
	inner       *gateway.MockGateway
	orderCalls  int
	failOrders  bool
	verifyCalls int
}

func newStubGateway() *stubGateway {
	return &stubGateway{inner: gateway.NewMockGateway("test-secret")}
}

func (g *stubGateway) CreateOrder(ctx context.Context, receipt string, amount decimal.Decimal, currency string) (*gateway.Order, error) {
	g.orderCalls++
	if g.failOrders {
		return nil, errors.New("connection refused")
	}
	return g.inner.CreateOrder(ctx, receipt, amount, currency)
}

func (g *stubGateway) VerifySignature(orderID, paymentID, signature string) error {
	g.verifyCalls++
	return g.inner.VerifySignature(orderID, paymentID, signature)
}

func (g *stubGateway) Refund(ctx context.Context, paymentID string, amount decimal.Decimal) (*gateway.RefundResult, error) {
	return g.inner.Refund(ctx, paymentID, amount)
}

func (g *stubGateway) Sign(orderID, paymentID string) string {
	return g.inner.Sign(orderID, paymentID)
}
