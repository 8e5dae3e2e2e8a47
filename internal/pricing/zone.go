package pricing

import (
	"math"
	"time"
)

// PricingZone 取车区域定价（后台维护的静态表，调度核心只读）。
type PricingZone struct {
	ID             string    `gorm:"primaryKey;size:36"`
	Name           string    `gorm:"uniqueIndex;size:64;not null"`
	Description    string    `gorm:"size:255"`
	BaseFeeCents   int64     `gorm:"not null;default:0"` // 起步价（分）
	PerKmCents     int64     `gorm:"not null;default:0"` // 每公里（分）
	HookupFeeCents int64     `gorm:"not null;default:0"` // 挂车费（分）
	IsActive       bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// Quote 按距离估价（分）。只是平面查表计算，不涉及路线规划。
func (z PricingZone) Quote(distanceKm float64) int64 {
	if distanceKm < 0 {
		distanceKm = 0
	}
	return z.BaseFeeCents + z.HookupFeeCents + int64(math.Round(distanceKm*float64(z.PerKmCents)))
}
