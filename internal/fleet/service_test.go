package fleet

import (
	"context"
	"testing"
	"time"
)

// memStore 内存版 Store，只给 Registry 单测用。
type memStore struct {
	trucks   map[string]TowTruck
	drivers  map[string]WreckerDriver
	wreckers map[string]ThirdPartyWrecker
}

func newMemStore() *memStore {
	return &memStore{
		trucks:   make(map[string]TowTruck),
		drivers:  make(map[string]WreckerDriver),
		wreckers: make(map[string]ThirdPartyWrecker),
	}
}

func (m *memStore) SaveTruck(ctx context.Context, t *TowTruck) error {
	m.trucks[t.ID] = *t
	return nil
}

func (m *memStore) GetTruck(ctx context.Context, id string) (*TowTruck, error) {
	t, ok := m.trucks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := t
	return &cp, nil
}

func (m *memStore) DeleteTruck(ctx context.Context, id string) error {
	delete(m.trucks, id)
	return nil
}

func (m *memStore) ListTrucks(ctx context.Context, onlyAvailable bool) ([]TowTruck, error) {
	var out []TowTruck
	for _, t := range m.trucks {
		if onlyAvailable && !t.IsAvailable {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) SaveDriver(ctx context.Context, d *WreckerDriver) error {
	m.drivers[d.ID] = *d
	return nil
}

func (m *memStore) GetDriver(ctx context.Context, id string) (*WreckerDriver, error) {
	d, ok := m.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := d
	return &cp, nil
}

func (m *memStore) FindDriverByUserID(ctx context.Context, userID string) (*WreckerDriver, error) {
	for _, d := range m.drivers {
		if d.UserID == userID {
			cp := d
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) ListDrivers(ctx context.Context, onlyAvailable bool) ([]WreckerDriver, error) {
	var out []WreckerDriver
	for _, d := range m.drivers {
		if onlyAvailable && !(d.IsAvailable && d.IsActive) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *memStore) UpdateDriverLocation(ctx context.Context, driverID string, lat, lng float64, at time.Time) error {
	d, ok := m.drivers[driverID]
	if !ok {
		return ErrNotFound
	}
	d.CurrentLat = &lat
	d.CurrentLng = &lng
	d.LocatedAt = &at
	m.drivers[driverID] = d
	return nil
}

func (m *memStore) SaveWrecker(ctx context.Context, w *ThirdPartyWrecker) error {
	m.wreckers[w.ID] = *w
	return nil
}

func (m *memStore) GetWrecker(ctx context.Context, id string) (*ThirdPartyWrecker, error) {
	w, ok := m.wreckers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := w
	return &cp, nil
}

func (m *memStore) ListActiveWreckers(ctx context.Context) ([]ThirdPartyWrecker, error) {
	var out []ThirdPartyWrecker
	for _, w := range m.wreckers {
		if w.IsActive {
			out = append(out, w)
		}
	}
	return out, nil
}

func TestCreateTruckDefaults(t *testing.T) {
	r := NewRegistry(newMemStore(), nil)

	tr, err := r.CreateTruck(context.Background(), TruckInput{PlateNumber: " 云A-88888 ", Model: "Heavy Duty"})
	if err != nil {
		t.Fatalf("CreateTruck: %v", err)
	}
	if tr.ID == "" {
		t.Fatalf("expected generated id")
	}
	if tr.PlateNumber != "云A-88888" {
		t.Fatalf("expected trimmed plate, got %q", tr.PlateNumber)
	}
	if !tr.IsAvailable {
		t.Fatalf("expected new truck available by default")
	}
}

func TestCreateTruckRequiresPlate(t *testing.T) {
	r := NewRegistry(newMemStore(), nil)
	if _, err := r.CreateTruck(context.Background(), TruckInput{}); err == nil {
		t.Fatalf("expected error for empty plate")
	}
}

func TestRetireDriverDeactivates(t *testing.T) {
	store := newMemStore()
	r := NewRegistry(store, nil)

	d, err := r.CreateDriver(context.Background(), DriverInput{UserID: "u-1", Name: "老王"})
	if err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}
	if err := r.RetireDriver(context.Background(), d.ID); err != nil {
		t.Fatalf("RetireDriver: %v", err)
	}

	got, err := r.GetDriver(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("GetDriver: %v", err)
	}
	if got.IsActive || got.IsAvailable {
		t.Fatalf("expected retired driver inactive and unavailable, got %+v", got)
	}

	avail, err := r.ListAvailableDrivers(context.Background())
	if err != nil {
		t.Fatalf("ListAvailableDrivers: %v", err)
	}
	if len(avail) != 0 {
		t.Fatalf("expected no available drivers, got %d", len(avail))
	}
}

func TestAvailabilityNotToggledByCaller(t *testing.T) {
	// 指派不会改 is_available：这是调度员独立维护的字段。
	store := newMemStore()
	r := NewRegistry(store, nil)

	d, err := r.CreateDriver(context.Background(), DriverInput{UserID: "u-1"})
	if err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}

	avail, err := r.ListAvailableDrivers(context.Background())
	if err != nil {
		t.Fatalf("ListAvailableDrivers: %v", err)
	}
	if len(avail) != 1 || avail[0].ID != d.ID {
		t.Fatalf("expected driver to stay in available listing")
	}

	if _, err := r.SetDriverAvailability(context.Background(), d.ID, false); err != nil {
		t.Fatalf("SetDriverAvailability: %v", err)
	}
	avail, _ = r.ListAvailableDrivers(context.Background())
	if len(avail) != 0 {
		t.Fatalf("expected manual toggle to take effect")
	}
}

func TestFindDriverByUserID(t *testing.T) {
	r := NewRegistry(newMemStore(), nil)
	d, err := r.CreateDriver(context.Background(), DriverInput{UserID: "u-7"})
	if err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}

	got, err := r.FindDriverByUserID(context.Background(), "u-7")
	if err != nil {
		t.Fatalf("FindDriverByUserID: %v", err)
	}
	if got.ID != d.ID {
		t.Fatalf("driver id mismatch")
	}

	if _, err := r.FindDriverByUserID(context.Background(), "nobody"); err == nil {
		t.Fatalf("expected not found")
	}
}
