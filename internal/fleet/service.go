package fleet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TowLinkDrive/TowLinkDrive/internal/common/logger"
	"github.com/google/uuid"
)

// Registry 车队管理服务：可用性查询 + 行政维护入口。
//
// 注意：指派/完成不会自动翻转 is_available ——
// 可用性由调度员独立维护，与指派状态是两条线（与原系统一致，
// 所以“可用”列表可能包含正在执行任务的资源）。
type Registry struct {
	store Store
	log   logger.Logger
}

func NewRegistry(store Store, log logger.Logger) *Registry {
	return &Registry{store: store, log: log}
}

// TruckInput 创建/更新拖车的入参。
type TruckInput struct {
	PlateNumber   string
	Model         string
	TowCapacityKg int
	IsAvailable   *bool
	Notes         string
}

func (r *Registry) CreateTruck(ctx context.Context, in TruckInput) (*TowTruck, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	plate := strings.TrimSpace(in.PlateNumber)
	if plate == "" {
		return nil, fmt.Errorf("plate_number required")
	}

	t := &TowTruck{
		ID:            uuid.NewString(),
		PlateNumber:   plate,
		Model:         strings.TrimSpace(in.Model),
		TowCapacityKg: in.TowCapacityKg,
		IsAvailable:   true,
		Notes:         strings.TrimSpace(in.Notes),
	}
	if in.IsAvailable != nil {
		t.IsAvailable = *in.IsAvailable
	}
	if err := r.store.SaveTruck(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Registry) UpdateTruck(ctx context.Context, id string, in TruckInput) (*TowTruck, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	t, err := r.store.GetTruck(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if plate := strings.TrimSpace(in.PlateNumber); plate != "" {
		t.PlateNumber = plate
	}
	if m := strings.TrimSpace(in.Model); m != "" {
		t.Model = m
	}
	if in.TowCapacityKg > 0 {
		t.TowCapacityKg = in.TowCapacityKg
	}
	if in.IsAvailable != nil {
		t.IsAvailable = *in.IsAvailable
	}
	if n := strings.TrimSpace(in.Notes); n != "" {
		t.Notes = n
	}
	if err := r.store.SaveTruck(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RetireTruck 删除拖车记录。
// 没有“被进行中请求引用则禁止删除”的校验（沿用原系统行为）。
func (r *Registry) RetireTruck(ctx context.Context, id string) error {
	if r == nil || r.store == nil {
		return fmt.Errorf("registry not initialized")
	}
	return r.store.DeleteTruck(ctx, strings.TrimSpace(id))
}

// DriverInput 创建/更新司机的入参。
type DriverInput struct {
	UserID        string
	Name          string
	Phone         string
	LicenseNumber string
	IsAvailable   *bool
}

func (r *Registry) CreateDriver(ctx context.Context, in DriverInput) (*WreckerDriver, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, fmt.Errorf("user_id required")
	}

	d := &WreckerDriver{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          strings.TrimSpace(in.Name),
		Phone:         strings.TrimSpace(in.Phone),
		LicenseNumber: strings.TrimSpace(in.LicenseNumber),
		IsAvailable:   true,
		IsActive:      true,
	}
	if in.IsAvailable != nil {
		d.IsAvailable = *in.IsAvailable
	}
	if err := r.store.SaveDriver(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Registry) UpdateDriver(ctx context.Context, id string, in DriverInput) (*WreckerDriver, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	d, err := r.store.GetDriver(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if n := strings.TrimSpace(in.Name); n != "" {
		d.Name = n
	}
	if p := strings.TrimSpace(in.Phone); p != "" {
		d.Phone = p
	}
	if l := strings.TrimSpace(in.LicenseNumber); l != "" {
		d.LicenseNumber = l
	}
	if in.IsAvailable != nil {
		d.IsAvailable = *in.IsAvailable
	}
	if err := r.store.SaveDriver(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// RetireDriver 软停用：置 is_active=false，保留历史轨迹的归属。
func (r *Registry) RetireDriver(ctx context.Context, id string) error {
	if r == nil || r.store == nil {
		return fmt.Errorf("registry not initialized")
	}
	d, err := r.store.GetDriver(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	d.IsActive = false
	d.IsAvailable = false
	return r.store.SaveDriver(ctx, d)
}

// SetDriverAvailability 调度员手工维护司机可用性。
func (r *Registry) SetDriverAvailability(ctx context.Context, id string, available bool) (*WreckerDriver, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	d, err := r.store.GetDriver(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	d.IsAvailable = available
	if err := r.store.SaveDriver(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// WreckerInput 创建/更新外协公司的入参。
type WreckerInput struct {
	CompanyName  string
	ContactPhone string
	IsActive     *bool
	IsPreferred  *bool
}

func (r *Registry) CreateWrecker(ctx context.Context, in WreckerInput) (*ThirdPartyWrecker, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	name := strings.TrimSpace(in.CompanyName)
	if name == "" {
		return nil, fmt.Errorf("company_name required")
	}

	w := &ThirdPartyWrecker{
		ID:           uuid.NewString(),
		CompanyName:  name,
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		IsActive:     true,
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
	if in.IsPreferred != nil {
		w.IsPreferred = *in.IsPreferred
	}
	if err := r.store.SaveWrecker(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *Registry) UpdateWrecker(ctx context.Context, id string, in WreckerInput) (*ThirdPartyWrecker, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	w, err := r.store.GetWrecker(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if n := strings.TrimSpace(in.CompanyName); n != "" {
		w.CompanyName = n
	}
	if p := strings.TrimSpace(in.ContactPhone); p != "" {
		w.ContactPhone = p
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
	if in.IsPreferred != nil {
		w.IsPreferred = *in.IsPreferred
	}
	if err := r.store.SaveWrecker(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// --- 查询入口（调度核心消费） ---

func (r *Registry) ListAvailableTrucks(ctx context.Context) ([]TowTruck, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	return r.store.ListTrucks(ctx, true)
}

func (r *Registry) ListAvailableDrivers(ctx context.Context) ([]WreckerDriver, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	return r.store.ListDrivers(ctx, true)
}

func (r *Registry) ListActiveThirdPartyWreckers(ctx context.Context) ([]ThirdPartyWrecker, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	return r.store.ListActiveWreckers(ctx)
}

func (r *Registry) GetTruck(ctx context.Context, id string) (*TowTruck, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	return r.store.GetTruck(ctx, strings.TrimSpace(id))
}

func (r *Registry) GetDriver(ctx context.Context, id string) (*WreckerDriver, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	return r.store.GetDriver(ctx, strings.TrimSpace(id))
}

func (r *Registry) GetWrecker(ctx context.Context, id string) (*ThirdPartyWrecker, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	return r.store.GetWrecker(ctx, strings.TrimSpace(id))
}

// FindDriverByUserID 按登录账号反查司机记录（定位上报鉴权用）。
func (r *Registry) FindDriverByUserID(ctx context.Context, userID string) (*WreckerDriver, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("registry not initialized")
	}
	return r.store.FindDriverByUserID(ctx, strings.TrimSpace(userID))
}

// UpdateDriverLocation 定位上报的冗余字段回写（由 tracking 调用）。
func (r *Registry) UpdateDriverLocation(ctx context.Context, driverID string, lat, lng float64, at time.Time) error {
	if r == nil || r.store == nil {
		return fmt.Errorf("registry not initialized")
	}
	return r.store.UpdateDriverLocation(ctx, driverID, lat, lng, at)
}
