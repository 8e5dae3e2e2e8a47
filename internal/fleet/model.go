package fleet

import "time"

// TowTruck 自有拖车 GORM 模型。
type TowTruck struct {
	ID            string    `gorm:"primaryKey;size:36"`
	PlateNumber   string    `gorm:"uniqueIndex;size:32;not null"`
	Model         string    `gorm:"size:64"`
	TowCapacityKg int       `gorm:"not null;default:0"` // 牵引能力（公斤）
	IsAvailable   bool      `gorm:"not null;default:true"`
	Notes         string    `gorm:"size:255"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// WreckerDriver 自有拖车司机。
// CurrentLat/CurrentLng 是定位上报的冗余字段（最近一次坐标），
// 完整轨迹在 tow_request_locations 表。
type WreckerDriver struct {
	ID            string     `gorm:"primaryKey;size:36"`
	UserID        string     `gorm:"index;size:36;not null"` // 关联登录账号
	Name          string     `gorm:"size:64"`
	Phone         string     `gorm:"size:32"`
	LicenseNumber string     `gorm:"size:64"`
	IsAvailable   bool       `gorm:"not null;default:true"`
	IsActive      bool       `gorm:"not null;default:true"`
	CurrentLat    *float64   // 最近上报纬度
	CurrentLng    *float64   // 最近上报经度
	LocatedAt     *time.Time // 最近上报时间
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

// ThirdPartyWrecker 外协拖车公司。
// IsPreferred 仅用于列表排序展示，不是强制指派策略。
type ThirdPartyWrecker struct {
	ID           string    `gorm:"primaryKey;size:36"`
	CompanyName  string    `gorm:"uniqueIndex;size:128;not null"`
	ContactPhone string    `gorm:"size:32"`
	IsActive     bool      `gorm:"not null;default:true"`
	IsPreferred  bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}
