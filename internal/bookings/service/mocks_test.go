package service

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingserrors "innkeep/internal/bookings/errors"
	"innkeep/internal/bookings/lifecycle"
	mongotx "innkeep/pkg/db/mongo"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ────────────────────────────────────────────────
// In-memory booking repository
// ────────────────────────────────────────────────

type mockBookingRepository struct {
	mu            sync.Mutex
	bookings      map[string]*model.Booking
	updateStateFn func(ctx context.Context, id string, t *model.BookingTransition) (*model.Booking, error)
	transactions  int
}

func newMockBookingRepository() *mockBookingRepository {
	return &mockBookingRepository{bookings: map[string]*model.Booking{}}
}

func (m *mockBookingRepository) seed(b *model.Booking) *model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = primitive.NewObjectID().Hex()
	}
	stored := *b
	m.bookings[b.ID] = &stored
	return b
}

func (m *mockBookingRepository) get(id string) *model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil
	}
	copied := *b
	return &copied
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking.ID = primitive.NewObjectID().Hex()
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	stored := *booking
	m.bookings[booking.ID] = &stored
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, bookingserrors.ErrInvalidID
	}
	b := m.get(id)
	if b == nil {
		return nil, bookingserrors.ErrNotFound
	}
	return b, nil
}

func (m *mockBookingRepository) List(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range m.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	list, _ := m.List(ctx, filter, 0, 0)
	return int64(len(list)), nil
}

func (m *mockBookingRepository) FindActiveOverlapping(ctx context.Context, roomID string, stay model.StayInterval) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range m.bookings {
		if b.RoomID != roomID || !lifecycle.IsActive(b.Status) {
			continue
		}
		if b.CheckIn.Before(stay.CheckOut) && stay.CheckIn.Before(b.CheckOut) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) UpdateState(ctx context.Context, id string, t *model.BookingTransition) (*model.Booking, error) {
	if m.updateStateFn != nil {
		return m.updateStateFn(ctx, id, t)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if b.Status != t.FromStatus || b.PaymentStatus != t.FromPaymentStatus {
		return nil, bookingserrors.ErrStateConflict
	}
	b.Status = t.ToStatus
	b.PaymentStatus = t.ToPaymentStatus
	if t.PaymentReference != "" {
		b.PaymentReference = t.PaymentReference
	}
	if t.CancellationReason != "" {
		b.CancellationReason = t.CancellationReason
	}
	b.UpdatedAt = time.Now().UTC()
	copied := *b
	return &copied, nil
}

func (m *mockBookingRepository) FindDueForCompletion(ctx context.Context, cutoff time.Time, limit int) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range m.bookings {
		if b.Status == model.StatusConfirmed && b.PaymentStatus == model.PaymentPaid && !b.CheckOut.After(cutoff) {
			copied := *b
			out = append(out, &copied)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.mu.Lock()
	m.transactions++
	m.mu.Unlock()
	return fn(nil)
}

// ────────────────────────────────────────────────
// Lock repository, directory, publisher, verifier
// ────────────────────────────────────────────────

type mockLockRepository struct {
	mu       sync.Mutex
	held     map[string]string
	acquired int
	released int
}

func newMockLockRepository() *mockLockRepository {
	return &mockLockRepository{held: map[string]string{}}
}

func (m *mockLockRepository) Acquire(ctx context.Context, lock *model.BookingLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[lock.ID]; ok {
		return bookingserrors.ErrLockHeld
	}
	m.held[lock.ID] = lock.Owner
	m.acquired++
	return nil
}

func (m *mockLockRepository) Release(ctx context.Context, lockID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[lockID] == owner {
		delete(m.held, lockID)
		m.released++
	}
	return nil
}

type mockDirectory struct {
	rooms    map[string]*model.Room
	packages map[string]*model.Package
}

func (m *mockDirectory) GetRoom(ctx context.Context, id string) (*model.Room, error) {
	room, ok := m.rooms[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Room", id)
	}
	copied := *room
	return &copied, nil
}

func (m *mockDirectory) GetPackage(ctx context.Context, id string) (*model.Package, error) {
	pkg, ok := m.packages[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Package", id)
	}
	copied := *pkg
	return &copied, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*model.BookingEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *model.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type stubVerifier struct {
	err   error
	calls int
}

func (v *stubVerifier) Verify(ctx context.Context, booking *model.Booking, outcome *model.PaymentOutcome) error {
	v.calls++
	return v.err
}
