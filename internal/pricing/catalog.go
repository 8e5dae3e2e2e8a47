package pricing

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound 定价区域不存在。
var ErrNotFound = errors.New("pricing zone not found")

// Catalog 定价区域目录端口。
type Catalog interface {
	ListActiveZones(ctx context.Context) ([]PricingZone, error)
	GetZone(ctx context.Context, id string) (*PricingZone, error)
	Upsert(ctx context.Context, z *PricingZone) error
}

// GormCatalog Catalog 的 GORM/MySQL 实现。
type GormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

func (c *GormCatalog) ListActiveZones(ctx context.Context) ([]PricingZone, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("catalog db is nil")
	}
	var zones []PricingZone
	if err := c.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name asc").
		Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

func (c *GormCatalog) GetZone(ctx context.Context, id string) (*PricingZone, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("catalog db is nil")
	}
	var z PricingZone
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&z).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &z, nil
}

// Upsert 后台维护入口（调度核心不调用）。
func (c *GormCatalog) Upsert(ctx context.Context, z *PricingZone) error {
	if c == nil || c.db == nil {
		return fmt.Errorf("catalog db is nil")
	}
	return c.db.WithContext(ctx).Save(z).Error
}
