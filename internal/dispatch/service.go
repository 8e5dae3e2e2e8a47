package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TowLinkDrive/TowLinkDrive/internal/common/logger"
	"github.com/TowLinkDrive/TowLinkDrive/internal/fleet"
	"github.com/TowLinkDrive/TowLinkDrive/internal/notify"
	"github.com/google/uuid"
)

// FleetDirectory 调度需要的车队只读视图（指派前校验资源存在）。
type FleetDirectory interface {
	GetDriver(ctx context.Context, id string) (*fleet.WreckerDriver, error)
	GetTruck(ctx context.Context, id string) (*fleet.TowTruck, error)
	GetWrecker(ctx context.Context, id string) (*fleet.ThirdPartyWrecker, error)
}

// WorkOrderCreator 完成时创建后续工单的端口（handoff.Bridge 实现）。
type WorkOrderCreator interface {
	CreateWorkOrder(ctx context.Context, customerID, vehicleID, description string, scheduledDate time.Time) (string, error)
}

// Coordinator 调度核心：创建请求、指派运力、状态流转、完成交接。
// 所有依赖经构造函数注入，不持有任何全局单例。
type Coordinator struct {
	store   Store
	seq     SequenceAllocator
	fleet   FleetDirectory
	handoff WorkOrderCreator
	relay   notify.Relay
	log     logger.Logger
	now     func() time.Time
}

func NewCoordinator(store Store, seq SequenceAllocator, dir FleetDirectory, handoff WorkOrderCreator, relay notify.Relay, log logger.Logger) *Coordinator {
	return &Coordinator{
		store:   store,
		seq:     seq,
		fleet:   dir,
		handoff: handoff,
		relay:   relay,
		log:     log,
		now:     time.Now,
	}
}

// CreateTowRequestInput 创建请求的入参。
type CreateTowRequestInput struct {
	CustomerID         string
	PickupLocation     string
	DropoffLocation    string
	VehicleID          string
	ProblemDescription string
}

func (c *Coordinator) CreateTowRequest(ctx context.Context, in CreateTowRequestInput) (*TowRequest, error) {
	if c == nil || c.store == nil || c.seq == nil {
		return nil, fmt.Errorf("coordinator not initialized")
	}
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, fmt.Errorf("customer_id required")
	}
	if strings.TrimSpace(in.PickupLocation) == "" {
		return nil, fmt.Errorf("pickup_location required")
	}

	now := c.now()
	number, err := c.seq.Allocate(ctx, now.Year())
	if err != nil {
		return nil, err
	}

	r := &TowRequest{
		ID:                 uuid.NewString(),
		RequestNumber:      number,
		CustomerID:         strings.TrimSpace(in.CustomerID),
		VehicleID:          strings.TrimSpace(in.VehicleID),
		Status:             StatusPending,
		PickupLocation:     strings.TrimSpace(in.PickupLocation),
		DropoffLocation:    strings.TrimSpace(in.DropoffLocation),
		ProblemDescription: strings.TrimSpace(in.ProblemDescription),
		RequestedAt:        now,
	}

	if err := c.store.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// AssignResourceInput 指派入参：自有（司机和/或车辆）与外协二选一。
type AssignResourceInput struct {
	RequestID           string
	DriverID            string
	TruckID             string
	ThirdPartyWreckerID string
}

func (c *Coordinator) AssignResource(ctx context.Context, in AssignResourceInput) (*TowRequest, error) {
	if c == nil || c.store == nil {
		return nil, fmt.Errorf("coordinator not initialized")
	}
	in.RequestID = strings.TrimSpace(in.RequestID)
	in.DriverID = strings.TrimSpace(in.DriverID)
	in.TruckID = strings.TrimSpace(in.TruckID)
	in.ThirdPartyWreckerID = strings.TrimSpace(in.ThirdPartyWreckerID)

	if in.RequestID == "" {
		return nil, fmt.Errorf("request_id required")
	}
	hasOwn := in.DriverID != "" || in.TruckID != ""
	hasThirdParty := in.ThirdPartyWreckerID != ""
	if !hasOwn && !hasThirdParty {
		return nil, fmt.Errorf("%w: no resource given", ErrAssignmentConflict)
	}
	if hasOwn && hasThirdParty {
		return nil, fmt.Errorf("%w: company resources and third-party wrecker are mutually exclusive", ErrAssignmentConflict)
	}

	// 指派前校验资源存在且可用
	var driverName string
	if hasThirdParty {
		w, err := c.fleet.GetWrecker(ctx, in.ThirdPartyWreckerID)
		if err != nil {
			return nil, err
		}
		if !w.IsActive {
			return nil, fmt.Errorf("%w: third-party wrecker %s is inactive", ErrAssignmentConflict, w.ID)
		}
	} else {
		if in.DriverID != "" {
			d, err := c.fleet.GetDriver(ctx, in.DriverID)
			if err != nil {
				return nil, err
			}
			if !d.IsActive {
				return nil, fmt.Errorf("%w: driver %s is inactive", ErrAssignmentConflict, d.ID)
			}
			driverName = d.Name
		}
		if in.TruckID != "" {
			if _, err := c.fleet.GetTruck(ctx, in.TruckID); err != nil {
				return nil, err
			}
		}
	}

	// 乐观并发：状态条件更新，冲突重试一次
	for attempt := 0; attempt < 2; attempt++ {
		r, err := c.store.GetByID(ctx, in.RequestID)
		if err != nil {
			return nil, err
		}
		if r.Status != StatusPending {
			return nil, fmt.Errorf("%w: request %s is %s, assignment requires pending", ErrAssignmentConflict, r.ID, r.Status)
		}

		expected := r.Status
		if hasThirdParty {
			r.WreckerType = WreckerThirdParty
			r.ThirdPartyWreckerID = in.ThirdPartyWreckerID
			r.AssignedDriverID = ""
			r.AssignedTruckID = ""
		} else {
			r.WreckerType = WreckerCompanyOwned
			r.AssignedDriverID = in.DriverID
			r.AssignedTruckID = in.TruckID
			r.ThirdPartyWreckerID = ""
		}
		if err := ApplyTransition(r, StatusDispatched, c.now()); err != nil {
			return nil, err
		}

		ok, err := c.store.UpdateIf(ctx, r, expected)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		c.notifyAssigned(ctx, r, driverName)
		return r, nil
	}

	return nil, fmt.Errorf("%w: request %s", ErrConcurrentModification, in.RequestID)
}

// UpdateStatus 按状态机规则流转。estimatedArrival 可选，随流转一并写入。
func (c *Coordinator) UpdateStatus(ctx context.Context, requestID string, to Status, estimatedArrival *time.Time) (*TowRequest, error) {
	if c == nil || c.store == nil {
		return nil, fmt.Errorf("coordinator not initialized")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, fmt.Errorf("request_id required")
	}
	if to == "" {
		return nil, fmt.Errorf("target status required")
	}
	// 指派与完成有专门入口，带各自的副作用
	if to == StatusDispatched {
		return nil, fmt.Errorf("%w: use AssignResource to dispatch", ErrInvalidTransition)
	}
	if to == StatusCompleted {
		return nil, fmt.Errorf("%w: use CompleteRequest to complete", ErrInvalidTransition)
	}

	// 乐观并发：冲突时重试一次再报 ErrConcurrentModification
	for attempt := 0; attempt < 2; attempt++ {
		r, err := c.store.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		expected := r.Status
		if err := ApplyTransition(r, to, c.now()); err != nil {
			return nil, err
		}
		if estimatedArrival != nil {
			r.EstimatedArrival = estimatedArrival
		}

		ok, err := c.store.UpdateIf(ctx, r, expected)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		switch to {
		case StatusEnRoute:
			c.notifyStatus(ctx, r, notify.EventEnRoute, "拖车已出发", "司机正在赶往现场")
		case StatusCancelled:
			c.notifyStatus(ctx, r, notify.EventCancelled, "拖车请求已取消", "本次拖车请求已取消")
		}
		return r, nil
	}

	return nil, fmt.Errorf("%w: request %s", ErrConcurrentModification, requestID)
}

// CompleteRequestInput 完成入参。
type CompleteRequestInput struct {
	RequestID        string
	ActualDistanceKm float64
	TotalPriceCents  int64
	CreateJobCard    bool
}

// CompleteRequest 完成请求并（可选）交接工单。
// 状态翻转与工单创建在同一个事务里：工单创建失败则完成整体回滚，
// 请求停留在 towing，不会出现"已完成但工单缺失"的中间态。
func (c *Coordinator) CompleteRequest(ctx context.Context, in CompleteRequestInput) (*TowRequest, error) {
	if c == nil || c.store == nil {
		return nil, fmt.Errorf("coordinator not initialized")
	}
	in.RequestID = strings.TrimSpace(in.RequestID)
	if in.RequestID == "" {
		return nil, fmt.Errorf("request_id required")
	}

	var out *TowRequest
	err := c.store.Transact(ctx, func(tx Store) error {
		r, err := tx.GetByID(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if r.Status != StatusTowing {
			return fmt.Errorf("%w: %s -> %s (request %s)", ErrInvalidTransition, r.Status, StatusCompleted, r.ID)
		}

		expected := r.Status
		now := c.now()

		if in.CreateJobCard && r.VehicleID != "" {
			if c.handoff == nil {
				return &HandoffError{RequestID: r.ID, Err: fmt.Errorf("work-order factory not configured")}
			}
			jobCardID, err := c.handoff.CreateWorkOrder(ctx, r.CustomerID, r.VehicleID, workOrderDescription(r), now)
			if err != nil {
				return &HandoffError{RequestID: r.ID, Err: err}
			}
			r.JobCardID = jobCardID
		}

		if err := ApplyTransition(r, StatusCompleted, now); err != nil {
			return err
		}
		r.ActualDistanceKm = in.ActualDistanceKm
		r.TotalPriceCents = in.TotalPriceCents

		ok, err := tx.UpdateIf(ctx, r, expected)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: request %s", ErrConcurrentModification, r.ID)
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.notifyStatus(ctx, out, notify.EventCompleted, "拖车已完成", "车辆已送达，感谢使用")
	return out, nil
}

func (c *Coordinator) GetRequest(ctx context.Context, id string) (*TowRequest, error) {
	if c == nil || c.store == nil {
		return nil, fmt.Errorf("coordinator not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	return c.store.GetByID(ctx, id)
}

// ListActiveRequests 进行中的请求（pending..towing）。
func (c *Coordinator) ListActiveRequests(ctx context.Context) ([]TowRequest, error) {
	if c == nil || c.store == nil {
		return nil, fmt.Errorf("coordinator not initialized")
	}
	return c.store.ListActive(ctx)
}

func (c *Coordinator) ListRequests(ctx context.Context, f ListFilter) ([]TowRequest, int64, error) {
	if c == nil || c.store == nil {
		return nil, 0, fmt.Errorf("coordinator not initialized")
	}
	f.CustomerID = strings.TrimSpace(f.CustomerID)
	return c.store.List(ctx, f)
}

// workOrderDescription 工单描述：嵌入取车地点与故障描述。
func workOrderDescription(r *TowRequest) string {
	desc := fmt.Sprintf("Towed-in vehicle (%s). Pickup: %s.", r.RequestNumber, r.PickupLocation)
	if r.ProblemDescription != "" {
		desc += " Reported problem: " + r.ProblemDescription
	}
	return desc
}

func (c *Coordinator) notifyAssigned(ctx context.Context, r *TowRequest, driverName string) {
	body := "已为您安排拖车"
	if driverName != "" {
		body = fmt.Sprintf("司机 %s 已接单", driverName)
	}
	c.notifyStatus(ctx, r, notify.EventAssigned, "拖车已指派", body)
}

func (c *Coordinator) notifyStatus(ctx context.Context, r *TowRequest, event, title, body string) {
	if r == nil {
		return
	}
	notify.BestEffort(ctx, c.relay, c.log, r.CustomerID, notify.Notification{
		Event:         event,
		Title:         title,
		Body:          body,
		TowRequestID:  r.ID,
		RequestNumber: r.RequestNumber,
	})
}
