package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	domainbooking "glampstay/internal/domain/booking"
	domainproperty "glampstay/internal/domain/property"
)

type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
	// Fail makes every call return this error. Tests use it to simulate an unreachable store.
	Fail error
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return b.Clone(), nil
}

// Save stores a copy. A version mismatch means another writer got there first.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b == nil || b.ID == "" {
		return domainbooking.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	if current, ok := r.items[b.ID]; ok && current.Version != b.Version {
		return ErrConcurrentUpdate
	}
	b.Version++
	r.items[b.ID] = b.Clone()
	return nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID domainproperty.ID, statuses ...domainbooking.Status) ([]*domainbooking.Booking, error) {
	return r.List(ctx, domainbooking.ListFilter{PropertyID: propertyID, Statuses: statuses})
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	if userID == "" {
		return nil, nil
	}
	return r.List(ctx, domainbooking.ListFilter{UserID: userID})
}

func (r *BookingRepository) List(ctx context.Context, filter domainbooking.ListFilter) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if filter.PropertyID != "" && b.PropertyID != filter.PropertyID {
			continue
		}
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, b.Status) {
			continue
		}
		out = append(out, b.Clone())
	}
	return out, nil
}

func (r *BookingRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.Status != domainbooking.StatusConfirmed || !b.ReminderSentAt.IsZero() {
			continue
		}
		if b.Range.CheckIn.Before(from) || !b.Range.CheckIn.Before(to) {
			continue
		}
		out = append(out, b.Clone())
	}
	return out, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
