package dispatch

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Store 拖车请求持久化端口。
type Store interface {
	Create(ctx context.Context, r *TowRequest) error
	GetByID(ctx context.Context, id string) (*TowRequest, error)
	// UpdateIf 条件更新：仅当库中状态仍为 expected 时写入，返回是否命中。
	// 这是状态流转/指派的乐观并发控制点。
	UpdateIf(ctx context.Context, r *TowRequest, expected Status) (bool, error)
	ListActive(ctx context.Context) ([]TowRequest, error)
	List(ctx context.Context, f ListFilter) ([]TowRequest, int64, error)
	// Transact 在一个存储事务中执行 fn；fn 返回错误则整体回滚。
	// 完成+工单交接必须走这里。
	Transact(ctx context.Context, fn func(Store) error) error
}

// ListFilter 查询条件。
type ListFilter struct {
	CustomerID string
	Status     Status
	Offset     int
	Limit      int
}

// updatableColumns 状态流转允许改写的列。
// CustomerID / RequestNumber / RequestedAt 等创建后不可变的列不在其中。
var updatableColumns = []string{
	"status", "wrecker_type",
	"assigned_driver_id", "assigned_truck_id", "third_party_wrecker_id",
	"estimated_arrival", "dispatched_at", "arrived_at", "completed_at", "cancelled_at",
	"actual_distance_km", "total_price_cents", "job_card_id",
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

func (s *GormStore) Create(ctx context.Context, r *TowRequest) error {
	db, err := s.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Create(r).Error
}

func (s *GormStore) GetByID(ctx context.Context, id string) (*TowRequest, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var r TowRequest
	if err := db.Where("id = ?", id).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) UpdateIf(ctx context.Context, r *TowRequest, expected Status) (bool, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return false, err
	}
	res := db.Model(&TowRequest{}).
		Where("id = ? AND status = ?", r.ID, expected).
		Select(updatableColumns).
		Updates(r)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) ListActive(ctx context.Context) ([]TowRequest, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var requests []TowRequest
	if err := db.Where("status IN ?", ActiveStatuses()).
		Order("requested_at asc").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// List 支持按 customer_id / status 过滤 + 分页。
func (s *GormStore) List(ctx context.Context, f ListFilter) ([]TowRequest, int64, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return nil, 0, err
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := db.Model(&TowRequest{})
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []TowRequest
	if err := q.Order("requested_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (s *GormStore) Transact(ctx context.Context, fn func(Store) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store db is nil")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
