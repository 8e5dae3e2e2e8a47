package tracking

import "time"

// TowRequestLocation 司机定位点（只追加，不更新不删除）。
// RecordedAt 是司机侧采样时间，消息乱序到达时以它为准判定"最新"。
type TowRequestLocation struct {
	ID           string    `gorm:"primaryKey;size:36"`
	TowRequestID string    `gorm:"index;size:36;not null"`
	DriverID     string    `gorm:"index;size:36;not null"`
	Latitude     float64   `gorm:"not null"`
	Longitude    float64   `gorm:"not null"`
	RecordedAt   time.Time `gorm:"index;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (TowRequestLocation) TableName() string {
	return "tow_request_locations"
}
