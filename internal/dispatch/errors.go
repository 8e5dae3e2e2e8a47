package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 请求不存在。
	ErrNotFound = errors.New("tow request not found")
	// ErrInvalidTransition 目标状态不可从当前状态到达。
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAssignmentConflict 请求不在可指派状态，或指派入参冲突。
	ErrAssignmentConflict = errors.New("assignment conflict")
	// ErrConcurrentModification 乐观校验失败（状态已被并发修改）。
	ErrConcurrentModification = errors.New("tow request modified concurrently")
)

// HandoffError 完成时创建工单失败。完成事务整体回滚，请求停留在 towing。
type HandoffError struct {
	RequestID string
	Err       error
}

func (e *HandoffError) Error() string {
	return fmt.Sprintf("work order creation failed for tow request %s: %v", e.RequestID, e.Err)
}

func (e *HandoffError) Unwrap() error {
	return e.Err
}
