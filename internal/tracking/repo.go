package tracking

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Store 定位点持久化端口。
type Store interface {
	Append(ctx context.Context, loc *TowRequestLocation) error
	// Latest 返回 RecordedAt 最大的定位点；没有记录时返回 (nil, nil)。
	Latest(ctx context.Context, towRequestID string) (*TowRequestLocation, error)
	// History 按 RecordedAt 倒序返回全部定位点。
	History(ctx context.Context, towRequestID string) ([]TowRequestLocation, error)
}

// GormStore Store 的 GORM/MySQL 实现。
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) withCtx(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store db is nil")
	}
	return s.db.WithContext(ctx), nil
}

func (s *GormStore) Append(ctx context.Context, loc *TowRequestLocation) error {
	db, err := s.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Create(loc).Error
}

func (s *GormStore) Latest(ctx context.Context, towRequestID string) (*TowRequestLocation, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var locs []TowRequestLocation
	if err := db.Where("tow_request_id = ?", towRequestID).
		Order("recorded_at DESC").
		Limit(1).
		Find(&locs).Error; err != nil {
		return nil, err
	}
	if len(locs) == 0 {
		return nil, nil
	}
	return &locs[0], nil
}

func (s *GormStore) History(ctx context.Context, towRequestID string) ([]TowRequestLocation, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var locs []TowRequestLocation
	if err := db.Where("tow_request_id = ?", towRequestID).
		Order("recorded_at DESC").
		Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}
