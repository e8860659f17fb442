package errors

import "errors"

var (
	// ErrDutyLogExists 同一教室同一天已存在值班记录（唯一约束冲突）
	ErrDutyLogExists = errors.New("该教室今天已提交值班证据")

	// ErrProfileNotFound 用户尚未注册
	ErrProfileNotFound = errors.New("用户资料不存在")
)
