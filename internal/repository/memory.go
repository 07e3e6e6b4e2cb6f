package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"vagalivre/internal/db"
	apperrors "vagalivre/internal/errors"
)

// MemoryStore is an in-memory implementation of every store interface,
// used by the service tests and as a storage-free dev backend. A single
// mutex makes each store method atomic, which gives Create and Confirm
// the same check-then-write discipline the Postgres repositories get
// from their transaction plus advisory lock.
type MemoryStore struct {
	mu           sync.Mutex
	users        map[int64]db.User
	spots        map[int64]db.Spot
	windows      map[int64]db.AvailabilityWindow
	reservations map[int64]db.Reservation
	nextID       int64
}

var (
	_ ReservationStore  = (*MemoryStore)(nil)
	_ AvailabilityStore = (*MemoryStore)(nil)
	_ SpotStore         = memorySpotStore{}
	_ UserStore         = memoryUserStore{}
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]db.User),
		spots:        make(map[int64]db.Spot),
		windows:      make(map[int64]db.AvailabilityWindow),
		reservations: make(map[int64]db.Reservation),
	}
}

func (m *MemoryStore) nextSeq() int64 {
	m.nextID++
	return m.nextID
}

// --- ReservationStore ---

func (m *MemoryStore) Create(ctx context.Context, res *db.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.reservations {
		if existing.SpotID != res.SpotID || existing.SlotNumber != res.SlotNumber {
			continue
		}
		if !existing.Blocks() {
			continue
		}
		if existing.OverlapsInterval(res.StartTime, res.EndTime) {
			return apperrors.Conflictf("slot %d of spot %d is already reserved for part or all of the requested period", res.SlotNumber, res.SpotID)
		}
	}

	now := time.Now().UTC()
	res.ID = m.nextSeq()
	res.CreatedAt = now
	res.UpdatedAt = now
	m.reservations[res.ID] = *res
	return nil
}

func (m *MemoryStore) Confirm(ctx context.Context, id int64) (*db.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[id]
	if !ok {
		return nil, apperrors.NotFound("reservation", id)
	}
	if res.Status != db.StatusPending {
		return nil, apperrors.Validationf("cannot confirm reservation in status %q", res.Status)
	}

	for _, existing := range m.reservations {
		if existing.ID == id || existing.SpotID != res.SpotID || existing.SlotNumber != res.SlotNumber {
			continue
		}
		if existing.Status != db.StatusConfirmed {
			continue
		}
		if existing.OverlapsInterval(res.StartTime, res.EndTime) {
			return nil, apperrors.Conflictf("a confirmed reservation already occupies slot %d of spot %d in that period", res.SlotNumber, res.SpotID)
		}
	}

	res.Status = db.StatusConfirmed
	res.UpdatedAt = time.Now().UTC()
	m.reservations[id] = res
	return &res, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id int64, newStatus string, expect []string) (*db.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[id]
	if !ok {
		return nil, apperrors.NotFound("reservation", id)
	}
	allowed := false
	for _, s := range expect {
		if res.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperrors.Validationf("cannot transition reservation from status %q to %q", res.Status, newStatus)
	}

	res.Status = newStatus
	res.UpdatedAt = time.Now().UTC()
	m.reservations[id] = res
	return &res, nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*db.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[id]
	if !ok {
		return nil, apperrors.NotFound("reservation", id)
	}
	return &res, nil
}

func (m *MemoryStore) GetByCode(ctx context.Context, code string) (*db.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, res := range m.reservations {
		if res.Code == code {
			r := res
			return &r, nil
		}
	}
	return nil, apperrors.NotFound("reservation", code)
}

func (m *MemoryStore) ListBlocking(ctx context.Context, spotID int64, slot int, statuses []string, excludeID int64) ([]db.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []db.Reservation
	for _, res := range m.reservations {
		if res.SpotID != spotID || res.SlotNumber != slot || res.ID == excludeID {
			continue
		}
		if statusIn(res.Status, statuses) {
			out = append(out, res)
		}
	}
	sortByStart(out)
	return out, nil
}

func (m *MemoryStore) ListForSpotBetween(ctx context.Context, spotID int64, from, to time.Time, statuses []string) ([]db.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []db.Reservation
	for _, res := range m.reservations {
		if res.SpotID != spotID || !statusIn(res.Status, statuses) {
			continue
		}
		if res.OverlapsInterval(from, to) {
			out = append(out, res)
		}
	}
	sortByStart(out)
	return out, nil
}

func (m *MemoryStore) ListByRenter(ctx context.Context, renterID int64) ([]db.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []db.Reservation
	for _, res := range m.reservations {
		if res.RenterID == renterID {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) ListPendingStartedBefore(ctx context.Context, cutoff time.Time) ([]db.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []db.Reservation
	for _, res := range m.reservations {
		if res.Status == db.StatusPending && res.StartTime.Before(cutoff) {
			out = append(out, res)
		}
	}
	sortByStart(out)
	return out, nil
}

// --- SpotStore ---

func (m *MemoryStore) CreateSpot(ctx context.Context, spot *db.Spot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	spot.ID = m.nextSeq()
	spot.CreatedAt = time.Now().UTC()
	m.spots[spot.ID] = *spot
	return nil
}

func (m *MemoryStore) GetSpot(ctx context.Context, id int64) (*db.Spot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	spot, ok := m.spots[id]
	if !ok {
		return nil, apperrors.NotFound("spot", id)
	}
	return &spot, nil
}

func (m *MemoryStore) ListSpots(ctx context.Context) ([]db.Spot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []db.Spot
	for _, spot := range m.spots {
		out = append(out, spot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListSpotsByOwner(ctx context.Context, ownerID int64) ([]db.Spot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []db.Spot
	for _, spot := range m.spots {
		if spot.OwnerID == ownerID {
			out = append(out, spot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- AvailabilityStore ---

func (m *MemoryStore) ReplaceForSpot(ctx context.Context, spotID int64, windows []db.AvailabilityWindow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, w := range m.windows {
		if w.SpotID == spotID {
			delete(m.windows, id)
		}
	}
	for i := range windows {
		w := &windows[i]
		w.ID = m.nextSeq()
		w.SpotID = spotID
		m.windows[w.ID] = *w
	}
	return nil
}

func (m *MemoryStore) ListForSpotOnDate(ctx context.Context, spotID int64, date time.Time) ([]db.AvailabilityWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	y, mo, d := date.Date()
	var out []db.AvailabilityWindow
	for _, w := range m.windows {
		wy, wmo, wd := w.Date.Date()
		if w.SpotID == spotID && wy == y && wmo == mo && wd == d {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m *MemoryStore) ListForSpot(ctx context.Context, spotID int64) ([]db.AvailabilityWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []db.AvailabilityWindow
	for _, w := range m.windows {
		if w.SpotID == spotID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

// --- UserStore ---

func (m *MemoryStore) CreateUser(ctx context.Context, user *db.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return apperrors.Validationf("email %q is already registered", user.Email)
		}
	}
	user.ID = m.nextSeq()
	user.CreatedAt = time.Now().UTC()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user", email)
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id int64) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	return &user, nil
}

// Spots exposes the spot side of the store under the SpotStore method
// set. MemoryStore itself satisfies ReservationStore and
// AvailabilityStore.
func (m *MemoryStore) Spots() SpotStore { return memorySpotStore{m} }

// Users exposes the user side of the store under the UserStore method set.
func (m *MemoryStore) Users() UserStore { return memoryUserStore{m} }

type memorySpotStore struct{ *MemoryStore }

func (s memorySpotStore) Create(ctx context.Context, spot *db.Spot) error {
	return s.CreateSpot(ctx, spot)
}

func (s memorySpotStore) GetByID(ctx context.Context, id int64) (*db.Spot, error) {
	return s.GetSpot(ctx, id)
}

func (s memorySpotStore) List(ctx context.Context) ([]db.Spot, error) {
	return s.ListSpots(ctx)
}

func (s memorySpotStore) ListByOwner(ctx context.Context, ownerID int64) ([]db.Spot, error) {
	return s.ListSpotsByOwner(ctx, ownerID)
}

type memoryUserStore struct{ *MemoryStore }

func (s memoryUserStore) Create(ctx context.Context, user *db.User) error {
	return s.CreateUser(ctx, user)
}

func (s memoryUserStore) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	return s.GetUserByEmail(ctx, email)
}

func (s memoryUserStore) GetByID(ctx context.Context, id int64) (*db.User, error) {
	return s.GetUserByID(ctx, id)
}

func statusIn(status string, statuses []string) bool {
	for _, s := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

func sortByStart(reservations []db.Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].StartTime.Before(reservations[j].StartTime)
	})
}
