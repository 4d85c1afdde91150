package db

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Nixie-Tech-LLC/sekine/internal/model"
)

// MemoryStore is a Store kept in process memory, for tests and local runs
// without PostgreSQL.
type MemoryStore struct {
	mu      sync.Mutex
	users   map[int]model.User
	screens map[int]model.Screen
	nextID  int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: map[int]model.User{}, screens: map[int]model.Screen{}}
}

func (m *MemoryStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return 0, errors.New("duplicate email")
		}
	}
	now := time.Now()
	u := model.User{ID: m.id(), Email: email, HashedPassword: hashedPassword, Name: name, CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFound(errNoRows, "user")
}

func (m *MemoryStore) GetUserByID(id int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, notFound(errNoRows, "user")
	}
	return &u, nil
}

func (m *MemoryStore) UpdateUserProfile(id int, email string, name *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return notFound(errNoRows, "user")
	}
	u.Email, u.Name, u.UpdatedAt = email, name, time.Now()
	m.users[id] = u
	return nil
}

func (m *MemoryStore) sorted(keep func(model.Screen) bool) []model.Screen {
	out := []model.Screen{}
	for _, s := range m.screens {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemoryStore) ListScreens(ownerID int) ([]model.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(s model.Screen) bool { return s.CreatedBy == ownerID }), nil
}

func (m *MemoryStore) ListAnnounceableScreens() ([]model.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(s model.Screen) bool {
		return s.Paired && s.DeviceID != nil && s.Latitude != nil && s.Longitude != nil
	}), nil
}

func (m *MemoryStore) GetScreenByID(id int) (model.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.screens[id]
	if !ok {
		return model.Screen{}, notFound(errNoRows, "screen")
	}
	return s, nil
}

func (m *MemoryStore) GetScreenByDeviceID(deviceID string) (model.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.screens {
		if s.DeviceID != nil && *s.DeviceID == deviceID {
			return s, nil
		}
	}
	return model.Screen{}, notFound(errNoRows, "screen")
}

func (m *MemoryStore) IsDevicePaired(deviceID string) (bool, error) {
	s, err := m.GetScreenByDeviceID(deviceID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return s.Paired, err
}

func (m *MemoryStore) CreateScreen(name string, location *string, createdBy int) (model.Screen, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	s := model.Screen{ID: m.id(), Name: name, Location: location, CreatedBy: createdBy, CreatedAt: now, UpdatedAt: now}
	m.screens[s.ID] = s
	return s, nil
}

func (m *MemoryStore) update(id int, fn func(*model.Screen)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.screens[id]
	if !ok {
		return notFound(errNoRows, "screen")
	}
	fn(&s)
	s.UpdatedAt = time.Now()
	m.screens[id] = s
	return nil
}

func (m *MemoryStore) UpdateScreen(id int, name, location *string) error {
	return m.update(id, func(s *model.Screen) {
		if name != nil {
			s.Name = *name
		}
		if location != nil {
			s.Location = location
		}
	})
}

func (m *MemoryStore) SetScreenCoordinates(id int, lat, lon float64, timezone *string) error {
	return m.update(id, func(s *model.Screen) {
		s.Latitude, s.Longitude = &lat, &lon
		if timezone != nil {
			s.Timezone = timezone
		}
	})
}

// PairScreen rejects a device held by another screen, like the UNIQUE
// constraint on screens.device_id.
func (m *MemoryStore) PairScreen(id int, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.screens {
		if s.ID != id && s.DeviceID != nil && *s.DeviceID == deviceID {
			return fmt.Errorf("pair screen %d: %w", id, ErrDeviceTaken)
		}
	}
	s, ok := m.screens[id]
	if !ok {
		return notFound(errNoRows, "screen")
	}
	s.DeviceID = &deviceID
	s.Paired = true
	s.UpdatedAt = time.Now()
	m.screens[id] = s
	return nil
}

func (m *MemoryStore) DeleteScreen(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.screens, id)
	return nil
}
