package dispatch

import "time"

// Status 拖车请求状态枚举（持久化为字符串）。
type Status string

const (
	StatusPending    Status = "pending"    // 已创建，待指派
	StatusDispatched Status = "dispatched" // 已指派车辆/司机或外协公司
	StatusEnRoute    Status = "en_route"   // 司机已出发
	StatusArrived    Status = "arrived"    // 已到达现场
	StatusTowing     Status = "towing"     // 拖车进行中
	StatusCompleted  Status = "completed"  // 已完成
	StatusCancelled  Status = "cancelled"  // 已取消
)

// WreckerType 指派的运力类型，指派时确定。
type WreckerType string

const (
	WreckerCompanyOwned WreckerType = "company_owned" // 自有车辆+司机
	WreckerThirdParty   WreckerType = "third_party"   // 外协拖车公司
)

// ActiveStatuses 进行中的状态集合（未到终态）。
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusDispatched, StatusEnRoute, StatusArrived, StatusTowing}
}

// TowRequest 拖车请求 GORM 模型（聚合根）。
//
// 不变式：
// - RequestNumber 分配后不可变，全局唯一
// - WreckerType 确定后，AssignedTruckID 与 ThirdPartyWreckerID 有且只有一个有值
// - JobCardID 最多写一次，且只在 completed 时写
type TowRequest struct {
	ID            string `gorm:"primaryKey;size:36"`
	RequestNumber string `gorm:"uniqueIndex;size:32;not null"` // 形如 TOW-2025-00001

	// 关联方
	CustomerID          string `gorm:"index;size:36;not null"`
	VehicleID           string `gorm:"size:36"` // 可选：待拖车辆
	AssignedDriverID    string `gorm:"index;size:36"`
	AssignedTruckID     string `gorm:"size:36"`
	ThirdPartyWreckerID string `gorm:"size:36"`

	WreckerType WreckerType `gorm:"type:varchar(16)"`
	Status      Status      `gorm:"type:varchar(16);index;not null"`

	// 业务信息
	PickupLocation     string `gorm:"size:255"`
	DropoffLocation    string `gorm:"size:255"`
	ProblemDescription string `gorm:"size:1024"`

	// 完成后回填
	ActualDistanceKm float64 `gorm:"not null;default:0"`
	TotalPriceCents  int64   `gorm:"not null;default:0"` // 单位：分
	JobCardID        string  `gorm:"size:36"`            // 成功交接后写入的工单 ID

	// 时间信息
	RequestedAt      time.Time `gorm:"not null"`
	EstimatedArrival *time.Time
	DispatchedAt     *time.Time
	ArrivedAt        *time.Time
	CompletedAt      *time.Time
	CancelledAt      *time.Time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// Active 是否处于进行中状态。
func (r *TowRequest) Active() bool {
	if r == nil {
		return false
	}
	switch r.Status {
	case StatusPending, StatusDispatched, StatusEnRoute, StatusArrived, StatusTowing:
		return true
	}
	return false
}

// RequestSequence 按年份一行的单号计数器，唯一需要原子读改写的表。
type RequestSequence struct {
	Year    int   `gorm:"primaryKey"`
	LastSeq int64 `gorm:"not null;default:0"`
}

func (RequestSequence) TableName() string {
	return "tow_request_sequences"
}
