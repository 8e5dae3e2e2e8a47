package handoff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TowLinkDrive/TowLinkDrive/internal/common/logger"
	"github.com/TowLinkDrive/TowLinkDrive/internal/common/middleware"
)

// WorkOrderFactory 外部工单（job card）子系统的创建接口。
type WorkOrderFactory interface {
	CreateWorkOrder(ctx context.Context, customerID, vehicleID, description string, scheduledDate time.Time) (workOrderID string, err error)
}

// Bridge 把拖车请求的完成动作接到工单子系统：
// 纯透传，外部调用用熔断器保护。失败必须向上传播，
// 由调度侧回滚完成事务，不允许悄悄吞掉。
type Bridge struct {
	factory WorkOrderFactory
	breaker *middleware.CircuitBreaker
	log     logger.Logger
}

func NewBridge(factory WorkOrderFactory, log logger.Logger) *Bridge {
	return &Bridge{
		factory: factory,
		breaker: middleware.NewCircuitBreaker("work-order-factory", 5, 30*time.Second),
		log:     log,
	}
}

func (b *Bridge) CreateWorkOrder(ctx context.Context, customerID, vehicleID, description string, scheduledDate time.Time) (string, error) {
	if b == nil || b.factory == nil {
		return "", fmt.Errorf("work-order factory not configured")
	}
	if strings.TrimSpace(customerID) == "" {
		return "", fmt.Errorf("customer_id required")
	}
	if strings.TrimSpace(vehicleID) == "" {
		return "", fmt.Errorf("vehicle_id required")
	}

	var id string
	err := b.breaker.Call(ctx, func() error {
		var callErr error
		id, callErr = b.factory.CreateWorkOrder(ctx, customerID, vehicleID, description, scheduledDate)
		return callErr
	})
	if err != nil {
		if b.log != nil {
			b.log.WithFields(map[string]interface{}{
				"customer_id": customerID,
				"vehicle_id":  vehicleID,
			}).Warnf("work order creation failed: %v", err)
		}
		return "", err
	}
	return id, nil
}
