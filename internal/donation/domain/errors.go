package domain

import "errors"

var (
	// ErrDonationNotFound 捐赠不存在
	ErrDonationNotFound = errors.New("donation not found")
	// ErrInvalidAmount 金额超出 [1, 1000000] 范围
	ErrInvalidAmount = errors.New("donation amount out of range")
	// ErrProjectUnavailable 项目不接受捐赠
	ErrProjectUnavailable = errors.New("project is not accepting donations")
	// ErrInvalidStatus 当前状态不允许该操作
	ErrInvalidStatus = errors.New("invalid donation status for this operation")
	// ErrNotRefundable 仅完成的捐赠可退款
	ErrNotRefundable = errors.New("only completed donations can be refunded")
	// ErrNotDonor 仅捐赠本人可操作
	ErrNotDonor = errors.New("not the owning donor")
	// ErrPaymentVerificationFailed 支付回执校验失败
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	// ErrPaymentGateway 网关调用失败
	ErrPaymentGateway = errors.New("payment gateway error")
)
