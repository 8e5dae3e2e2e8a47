package notify

import (
	"context"

	"github.com/TowLinkDrive/TowLinkDrive/internal/common/logger"
)

// 客户侧通知事件类型。
const (
	EventAssigned  = "tow.assigned"
	EventEnRoute   = "tow.en_route"
	EventCompleted = "tow.completed"
	EventCancelled = "tow.cancelled"
)

// Notification 一条待投递的客户通知。
type Notification struct {
	Event         string // 事件类型，见上方常量
	Title         string
	Body          string
	TowRequestID  string
	RequestNumber string
}

// Relay 外部通知投递接口（push/email 由外部系统负责，核心不保证送达）。
type Relay interface {
	Send(ctx context.Context, recipientUserID string, n Notification) error
}

// LogRelay 仅记录日志的 Relay 实现，作为未接入真实通道时的占位。
type LogRelay struct {
	log logger.Logger
}

func NewLogRelay(log logger.Logger) *LogRelay {
	return &LogRelay{log: log}
}

func (r *LogRelay) Send(ctx context.Context, recipientUserID string, n Notification) error {
	if r == nil || r.log == nil {
		return nil
	}
	r.log.WithFields(map[string]interface{}{
		"recipient":      recipientUserID,
		"event":          n.Event,
		"tow_request_id": n.TowRequestID,
		"request_number": n.RequestNumber,
	}).Infof("notify: %s", n.Title)
	return nil
}

// BestEffort 尽力投递：失败只记日志，绝不向触发方传播。
// 状态流转不能因为通知失败而回滚。
func BestEffort(ctx context.Context, relay Relay, log logger.Logger, recipientUserID string, n Notification) {
	if relay == nil || recipientUserID == "" {
		return
	}
	if err := relay.Send(ctx, recipientUserID, n); err != nil && log != nil {
		log.WithFields(map[string]interface{}{
			"recipient":      recipientUserID,
			"event":          n.Event,
			"tow_request_id": n.TowRequestID,
		}).Warnf("notify send failed: %v", err)
	}
}
