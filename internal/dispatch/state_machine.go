package dispatch

import (
	"fmt"
	"time"
)

// AllowTransition 拖车请求状态机的允许流转关系。
// 状态只能向前推进；cancelled 可从 towing 之外的任意非终态进入。
var AllowTransition = map[Status][]Status{
	StatusPending:    {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusEnRoute, StatusCancelled},
	StatusEnRoute:    {StatusArrived, StatusCancelled},
	StatusArrived:    {StatusTowing, StatusCancelled},
	StatusTowing:     {StatusCompleted},
	// 终态：不允许从 completed / cancelled 再流转
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
// 原地更新（from == to）一律视为非法，重复完成必须报错。
func CanTransition(from, to Status) bool {
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 对请求应用状态变更，并维护关键时间字段。
func ApplyTransition(r *TowRequest, to Status, now time.Time) error {
	if r == nil {
		return fmt.Errorf("tow request is nil")
	}
	from := r.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	r.Status = to

	switch to {
	case StatusDispatched:
		if r.DispatchedAt == nil {
			t := now
			r.DispatchedAt = &t
		}
	case StatusArrived:
		if r.ArrivedAt == nil {
			t := now
			r.ArrivedAt = &t
		}
	case StatusCompleted:
		if r.CompletedAt == nil {
			t := now
			r.CompletedAt = &t
		}
	case StatusCancelled:
		if r.CancelledAt == nil {
			t := now
			r.CancelledAt = &t
		}
	}
	return nil
}
