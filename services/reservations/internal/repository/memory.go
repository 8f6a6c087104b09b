package repository

import (
	"context"
	"sync"
	"time"

	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

type memoryKey struct {
	bookingID int64
	expires   time.Time
}

type memoryData struct {
	rooms    []domain.Room
	roomIdx  map[string]int
	bookings map[int64]domain.Booking
	order    []int64
	nextID   int64
	keys     map[string]memoryKey
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		rooms:    make([]domain.Room, len(d.rooms)),
		roomIdx:  make(map[string]int, len(d.roomIdx)),
		bookings: make(map[int64]domain.Booking, len(d.bookings)),
		order:    append([]int64(nil), d.order...),
		nextID:   d.nextID,
		keys:     make(map[string]memoryKey, len(d.keys)),
	}
	for i, r := range d.rooms {
		c.rooms[i] = copyRoom(r)
	}
	for k, v := range d.roomIdx {
		c.roomIdx[k] = v
	}
	for k, v := range d.bookings {
		c.bookings[k] = v
	}
	for k, v := range d.keys {
		c.keys[k] = v
	}
	return c
}

func copyRoom(r domain.Room) domain.Room {
	r.Amenities = append([]string(nil), r.Amenities...)
	if r.Occupant != nil {
		o := *r.Occupant
		r.Occupant = &o
	}
	if r.LastCleaned != nil {
		t := *r.LastCleaned
		r.LastCleaned = &t
	}
	if r.WeeklyRate != nil {
		v := *r.WeeklyRate
		r.WeeklyRate = &v
	}
	if r.MonthlyRate != nil {
		v := *r.MonthlyRate
		r.MonthlyRate = &v
	}
	return r
}

// MemoryStore keeps everything in process. Atomic snapshots the data and
// restores it when fn fails, so a failed transition leaves no trace.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	inTx bool
	now  func() time.Time
}

func NewMemoryStore(rooms []domain.Room) *MemoryStore {
	d := &memoryData{
		roomIdx:  make(map[string]int),
		bookings: make(map[int64]domain.Booking),
		nextID:   1,
		keys:     make(map[string]memoryKey),
	}
	for _, r := range rooms {
		if r.Status == "" {
			r.Status = domain.RoomVacant
		}
		d.roomIdx[r.Number] = len(d.rooms)
		d.rooms = append(d.rooms, copyRoom(r))
	}
	return &MemoryStore{mu: &sync.Mutex{}, data: d, now: time.Now}
}

// Seed inserts bookings as-is, keeping their ids when set. Intended for fixtures.
func (s *MemoryStore) Seed(bookings ...domain.Booking) {
	s.lock()
	defer s.unlock()
	for _, b := range bookings {
		if b.ID == 0 {
			b.ID = s.data.nextID
		}
		if b.ID >= s.data.nextID {
			s.data.nextID = b.ID + 1
		}
		if b.Nights == 0 {
			b.Nights = b.Stay().Nights()
		}
		if _, exists := s.data.bookings[b.ID]; !exists {
			s.data.order = append(s.data.order, b.ID)
		}
		s.data.bookings[b.ID] = b
	}
}

func (s *MemoryStore) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *MemoryStore) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (s *MemoryStore) Rooms() RoomStore { return memoryRooms{s} }

func (s *MemoryStore) Bookings() BookingStore { return memoryBookings{s} }

func (s *MemoryStore) Idempotency() IdempotencyStore { return memoryKeys{s} }

func (s *MemoryStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, data: s.data, inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

type memoryRooms struct{ s *MemoryStore }

func (m memoryRooms) List(ctx context.Context) ([]domain.Room, error) {
	m.s.lock()
	defer m.s.unlock()
	out := make([]domain.Room, len(m.s.data.rooms))
	for i, r := range m.s.data.rooms {
		out[i] = copyRoom(r)
	}
	return out, nil
}

func (m memoryRooms) Get(ctx context.Context, number string) (*domain.Room, error) {
	m.s.lock()
	defer m.s.unlock()
	i, ok := m.s.data.roomIdx[number]
	if !ok {
		return nil, &domain.RoomNotFoundError{Number: number}
	}
	r := copyRoom(m.s.data.rooms[i])
	return &r, nil
}

func (m memoryRooms) Update(ctx context.Context, number string, patch domain.RoomPatch) (*domain.Room, error) {
	m.s.lock()
	defer m.s.unlock()
	i, ok := m.s.data.roomIdx[number]
	if !ok {
		return nil, &domain.RoomNotFoundError{Number: number}
	}
	patch.Apply(&m.s.data.rooms[i])
	r := copyRoom(m.s.data.rooms[i])
	return &r, nil
}

type memoryBookings struct{ s *MemoryStore }

func (m memoryBookings) List(ctx context.Context) ([]domain.Booking, error) {
	m.s.lock()
	defer m.s.unlock()
	out := make([]domain.Booking, 0, len(m.s.data.order))
	for _, id := range m.s.data.order {
		out = append(out, m.s.data.bookings[id])
	}
	return out, nil
}

func (m memoryBookings) ListByRoom(ctx context.Context, roomNumber string) ([]domain.Booking, error) {
	m.s.lock()
	defer m.s.unlock()
	var out []domain.Booking
	for _, id := range m.s.data.order {
		if b := m.s.data.bookings[id]; b.RoomNumber == roomNumber {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m memoryBookings) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	m.s.lock()
	defer m.s.unlock()
	b, ok := m.s.data.bookings[id]
	if !ok {
		return nil, &domain.BookingNotFoundError{ID: id}
	}
	return &b, nil
}

func (m memoryBookings) Append(ctx context.Context, b *domain.Booking) (int64, error) {
	m.s.lock()
	defer m.s.unlock()
	if _, ok := m.s.data.roomIdx[b.RoomNumber]; !ok {
		return 0, &domain.RoomNotFoundError{Number: b.RoomNumber}
	}
	now := m.s.now().UTC()
	b.ID = m.s.data.nextID
	b.CreatedAt, b.UpdatedAt = now, now
	m.s.data.nextID++
	m.s.data.bookings[b.ID] = *b
	m.s.data.order = append(m.s.data.order, b.ID)
	return b.ID, nil
}

func (m memoryBookings) Update(ctx context.Context, id int64, patch domain.BookingPatch) (*domain.Booking, error) {
	m.s.lock()
	defer m.s.unlock()
	b, ok := m.s.data.bookings[id]
	if !ok {
		return nil, &domain.BookingNotFoundError{ID: id}
	}
	if patch.IfStatus != nil && b.Status != *patch.IfStatus {
		return nil, domain.ErrStatusChanged
	}
	patch.Apply(&b, m.s.now().UTC())
	m.s.data.bookings[id] = b
	return &b, nil
}

type memoryKeys struct{ s *MemoryStore }

func (m memoryKeys) Lookup(ctx context.Context, key string) (int64, error) {
	m.s.lock()
	defer m.s.unlock()
	k, ok := m.s.data.keys[hashKey(key)]
	if !ok || !k.expires.After(m.s.now()) {
		return 0, nil
	}
	return k.bookingID, nil
}

func (m memoryKeys) Remember(ctx context.Context, key string, bookingID int64) error {
	m.s.lock()
	defer m.s.unlock()
	h := hashKey(key)
	if k, ok := m.s.data.keys[h]; ok && k.expires.After(m.s.now()) {
		return nil
	}
	m.s.data.keys[h] = memoryKey{bookingID: bookingID, expires: m.s.now().Add(idempotencyTTL)}
	return nil
}

func (m memoryKeys) Purge(ctx context.Context) (int64, error) {
	m.s.lock()
	defer m.s.unlock()
	var n int64
	now := m.s.now()
	for h, k := range m.s.data.keys {
		if !k.expires.After(now) {
			delete(m.s.data.keys, h)
			n++
		}
	}
	return n, nil
}
