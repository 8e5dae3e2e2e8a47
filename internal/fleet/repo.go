package fleet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound 车辆/司机/外协公司不存在。
var ErrNotFound = errors.New("fleet resource not found")

// Store 车队持久化端口。
type Store interface {
	SaveTruck(ctx context.Context, t *TowTruck) error
	GetTruck(ctx context.Context, id string) (*TowTruck, error)
	DeleteTruck(ctx context.Context, id string) error
	ListTrucks(ctx context.Context, onlyAvailable bool) ([]TowTruck, error)

	SaveDriver(ctx context.Context, d *WreckerDriver) error
	GetDriver(ctx context.Context, id string) (*WreckerDriver, error)
	FindDriverByUserID(ctx context.Context, userID string) (*WreckerDriver, error)
	ListDrivers(ctx context.Context, onlyAvailable bool) ([]WreckerDriver, error)
	UpdateDriverLocation(ctx context.Context, driverID string, lat, lng float64, at time.Time) error

	SaveWrecker(ctx context.Context, w *ThirdPartyWrecker) error
	GetWrecker(ctx context.Context, id string) (*ThirdPartyWrecker, error)
	ListActiveWreckers(ctx context.Context) ([]ThirdPartyWrecker, error)
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

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) SaveTruck(ctx context.Context, t *TowTruck) error {
	db, err := s.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Save(t).Error
}

func (s *GormStore) GetTruck(ctx context.Context, id string) (*TowTruck, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var t TowTruck
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translateErr(err)
	}
	return &t, nil
}

func (s *GormStore) DeleteTruck(ctx context.Context, id string) error {
	db, err := s.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&TowTruck{}).Error
}

func (s *GormStore) ListTrucks(ctx context.Context, onlyAvailable bool) ([]TowTruck, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	q := db.Model(&TowTruck{})
	if onlyAvailable {
		q = q.Where("is_available = ?", true)
	}
	var trucks []TowTruck
	if err := q.Order("plate_number asc").Find(&trucks).Error; err != nil {
		return nil, err
	}
	return trucks, nil
}

func (s *GormStore) SaveDriver(ctx context.Context, d *WreckerDriver) error {
	db, err := s.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Save(d).Error
}

func (s *GormStore) GetDriver(ctx context.Context, id string) (*WreckerDriver, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var d WreckerDriver
	if err := db.Where("id = ?", id).First(&d).Error; err != nil {
		return nil, translateErr(err)
	}
	return &d, nil
}

func (s *GormStore) FindDriverByUserID(ctx context.Context, userID string) (*WreckerDriver, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var d WreckerDriver
	if err := db.Where("user_id = ?", userID).First(&d).Error; err != nil {
		return nil, translateErr(err)
	}
	return &d, nil
}

// ListDrivers onlyAvailable 时要求 is_available 且 is_active。
func (s *GormStore) ListDrivers(ctx context.Context, onlyAvailable bool) ([]WreckerDriver, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	q := db.Model(&WreckerDriver{})
	if onlyAvailable {
		q = q.Where("is_available = ? AND is_active = ?", true, true)
	}
	var drivers []WreckerDriver
	if err := q.Order("name asc").Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

// UpdateDriverLocation 覆写司机最新坐标冗余字段（不经过 Save，避免覆盖其它列）。
func (s *GormStore) UpdateDriverLocation(ctx context.Context, driverID string, lat, lng float64, at time.Time) error {
	db, err := s.withCtx(ctx)
	if err != nil {
		return err
	}
	res := db.Model(&WreckerDriver{}).Where("id = ?", driverID).Updates(map[string]interface{}{
		"current_lat": lat,
		"current_lng": lng,
		"located_at":  at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SaveWrecker(ctx context.Context, w *ThirdPartyWrecker) error {
	db, err := s.withCtx(ctx)
	if err != nil {
		return err
	}
	return db.Save(w).Error
}

func (s *GormStore) GetWrecker(ctx context.Context, id string) (*ThirdPartyWrecker, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var w ThirdPartyWrecker
	if err := db.Where("id = ?", id).First(&w).Error; err != nil {
		return nil, translateErr(err)
	}
	return &w, nil
}

// ListActiveWreckers preferred 的公司排在前面（仅排序提示，非指派策略）。
func (s *GormStore) ListActiveWreckers(ctx context.Context) ([]ThirdPartyWrecker, error) {
	db, err := s.withCtx(ctx)
	if err != nil {
		return nil, err
	}
	var wreckers []ThirdPartyWrecker
	if err := db.Where("is_active = ?", true).
		Order("is_preferred desc, company_name asc").
		Find(&wreckers).Error; err != nil {
		return nil, err
	}
	return wreckers, nil
}
