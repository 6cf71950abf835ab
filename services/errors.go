package services

import (
	"errors"
)

// DenyReason 授权拒绝原因分类
type DenyReason string

const (
	ReasonUnauthenticated DenyReason = "unauthenticated"
	ReasonNotFound        DenyReason = "not_found"
	ReasonForbidden       DenyReason = "forbidden"
	ReasonConflict        DenyReason = "conflict"
	ReasonInvalidInput    DenyReason = "invalid_input"
)

// DenyError 授权拒绝错误，与存储层错误严格区分
// 存储层错误原样向上传播，绝不会被包装成拒绝决策
type DenyError struct {
	Reason  DenyReason
	Message string
}

// Error 实现error接口
func (e *DenyError) Error() string {
	return e.Message
}

// Deny 构造一个带原因的授权拒绝错误
func Deny(reason DenyReason, message string) error {
	return &DenyError{Reason: reason, Message: message}
}

// DenyReasonOf 提取错误中的拒绝原因，非拒绝错误返回false
func DenyReasonOf(err error) (DenyReason, bool) {
	var denyErr *DenyError
	if errors.As(err, &denyErr) {
		return denyErr.Reason, true
	}
	return "", false
}
