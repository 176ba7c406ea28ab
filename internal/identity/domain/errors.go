package domain

import "errors"

var (
	// ErrEmailTaken 邮箱已被注册
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials 邮箱或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked 账户因连续登录失败被锁定
	ErrAccountLocked = errors.New("account locked due to repeated login failures")
	// ErrAccountInactive 账户已被停用
	ErrAccountInactive = errors.New("account is deactivated")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole 非法角色
	ErrInvalidRole = errors.New("invalid role")
)
