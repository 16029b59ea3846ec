package bookings

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository stores booking requests. A session owns at most one booking: Create on a
// session that already has one returns the stored booking with created=false.
type Repository interface {
	Create(ctx context.Context, req *CreateBookingRequest) (booking *Booking, created bool, err error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter ListFilter) ([]*Booking, error)
}

// InMemoryRepository is used when no database is configured.
type InMemoryRepository struct {
	mu        sync.RWMutex
	bookings  map[string]*Booking
	bySession map[string]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		bookings:  make(map[string]*Booking),
		bySession: make(map[string]string),
	}
}

func (r *InMemoryRepository) Create(_ context.Context, req *CreateBookingRequest) (*Booking, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.bySession[req.SessionID]; ok {
		cp := *r.bookings[id]
		return &cp, false, nil
	}
	booking := req.toBooking(uuid.New().String(), time.Now().UTC())
	r.bookings[booking.ID] = booking
	r.bySession[booking.SessionID] = booking.ID

	cp := *booking
	return &cp, true, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *booking
	return &cp, nil
}

func (r *InMemoryRepository) List(_ context.Context, filter ListFilter) ([]*Booking, error) {
	filter = filter.normalized()

	r.mu.RLock()
	all := make([]*Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		cp := *b
		all = append(all, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if filter.Offset >= len(all) {
		return []*Booking{}, nil
	}
	all = all[filter.Offset:]
	if len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}
