package domain

import "errors"

var (
	// ErrProjectNotFound 项目不存在
	ErrProjectNotFound = errors.New("project not found")
	// ErrNotOwner 非项目所属 NGO
	ErrNotOwner = errors.New("not the owning ngo")
	// ErrInvalidTarget 目标金额必须大于 0
	ErrInvalidTarget = errors.New("target amount must be positive")
	// ErrInvalidDateRange 截止日期必须晚于起始日期
	ErrInvalidDateRange = errors.New("end date must be after start date")
	// ErrInvalidCategory 非法类目
	ErrInvalidCategory = errors.New("invalid project category")
	// ErrInvalidTransition 非法状态迁移
	ErrInvalidTransition = errors.New("invalid project status transition")
)
