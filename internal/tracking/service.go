package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TowLinkDrive/TowLinkDrive/internal/common/logger"
	"github.com/TowLinkDrive/TowLinkDrive/internal/common/middleware"
	"github.com/TowLinkDrive/TowLinkDrive/internal/fleet"
	"github.com/google/uuid"
)

var (
	// ErrDriverInactive 已停用司机不能上报定位。
	ErrDriverInactive = errors.New("driver is inactive")
	// ErrPingThrottled 上报超出该司机的限流额度，本次丢弃。
	ErrPingThrottled = errors.New("location ping throttled")
	// ErrInvalidCoordinate 坐标超出经纬度合法范围。
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// DriverResolver 定位上报需要的车队视图：按账号找司机、回写最新坐标。
type DriverResolver interface {
	FindDriverByUserID(ctx context.Context, userID string) (*fleet.WreckerDriver, error)
	UpdateDriverLocation(ctx context.Context, driverID string, lat, lng float64, at time.Time) error
}

// Tracker 定位上报与查询。
// 轨迹只追加；司机表上的坐标是冗余快照，落后于轨迹也没关系。
type Tracker struct {
	store   Store
	drivers DriverResolver
	limiter *middleware.KeyedLimiter
	log     logger.Logger
	now     func() time.Time
}

func NewTracker(store Store, drivers DriverResolver, limiter *middleware.KeyedLimiter, log logger.Logger) *Tracker {
	return &Tracker{
		store:   store,
		drivers: drivers,
		limiter: limiter,
		log:     log,
		now:     time.Now,
	}
}

// PingInput 一次定位上报。RecordedAt 为零值时取服务端当前时间。
type PingInput struct {
	TowRequestID string
	DriverUserID string
	Latitude     float64
	Longitude    float64
	RecordedAt   time.Time
}

// RecordPing 记录一次司机定位上报。
// 限流按司机维度；被限流的点直接丢弃，不影响其他司机。
func (t *Tracker) RecordPing(ctx context.Context, in PingInput) (*TowRequestLocation, error) {
	if t == nil || t.store == nil || t.drivers == nil {
		return nil, fmt.Errorf("tracker not initialized")
	}
	in.TowRequestID = strings.TrimSpace(in.TowRequestID)
	in.DriverUserID = strings.TrimSpace(in.DriverUserID)
	if in.TowRequestID == "" {
		return nil, fmt.Errorf("tow_request_id required")
	}
	if in.DriverUserID == "" {
		return nil, fmt.Errorf("driver user id required")
	}
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return nil, fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinate, in.Latitude, in.Longitude)
	}

	driver, err := t.drivers.FindDriverByUserID(ctx, in.DriverUserID)
	if err != nil {
		return nil, err
	}
	if !driver.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrDriverInactive, driver.ID)
	}

	if t.limiter != nil && !t.limiter.Allow(ctx, driver.ID) {
		return nil, fmt.Errorf("%w: driver %s", ErrPingThrottled, driver.ID)
	}

	recordedAt := in.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = t.now()
	}

	loc := &TowRequestLocation{
		ID:           uuid.NewString(),
		TowRequestID: in.TowRequestID,
		DriverID:     driver.ID,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		RecordedAt:   recordedAt,
	}
	if err := t.store.Append(ctx, loc); err != nil {
		return nil, err
	}

	// 冗余快照回写失败只记日志，轨迹点已经落库
	if err := t.drivers.UpdateDriverLocation(ctx, driver.ID, in.Latitude, in.Longitude, recordedAt); err != nil && t.log != nil {
		t.log.WithField("driver_id", driver.ID).Warnf("update driver location snapshot failed: %v", err)
	}
	return loc, nil
}

// LatestLocation 当前位置：RecordedAt 最大的点，没有记录时返回 (nil, nil)。
func (t *Tracker) LatestLocation(ctx context.Context, towRequestID string) (*TowRequestLocation, error) {
	if t == nil || t.store == nil {
		return nil, fmt.Errorf("tracker not initialized")
	}
	towRequestID = strings.TrimSpace(towRequestID)
	if towRequestID == "" {
		return nil, fmt.Errorf("tow_request_id required")
	}
	return t.store.Latest(ctx, towRequestID)
}

// LocationHistory 全部轨迹点，按采样时间倒序。
func (t *Tracker) LocationHistory(ctx context.Context, towRequestID string) ([]TowRequestLocation, error) {
	if t == nil || t.store == nil {
		return nil, fmt.Errorf("tracker not initialized")
	}
	towRequestID = strings.TrimSpace(towRequestID)
	if towRequestID == "" {
		return nil, fmt.Errorf("tow_request_id required")
	}
	return t.store.History(ctx, towRequestID)
}
