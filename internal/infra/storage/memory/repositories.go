package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainbooking "plek/internal/domain/booking"
	domainproperty "plek/internal/domain/property"
	"plek/internal/domain/shared/daterange"
)

// PropertyRepository is an in-memory implementation for dev mode and tests.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.ID]*domainproperty.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperty.ID]*domainproperty.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.ID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainproperty.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *PropertyRepository) BySlug(ctx context.Context, slug string) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.Slug == slug {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domainproperty.ErrNotFound
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.items[p.ID] = &clone
	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id domainproperty.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainproperty.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *PropertyRepository) ListByHost(ctx context.Context, hostID string) ([]*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainproperty.Property
	for _, p := range r.items {
		if p.HostID == hostID {
			clone := *p
			out = append(out, &clone)
		}
	}
	sortProperties(out)
	return out, nil
}

func (r *PropertyRepository) ListActive(ctx context.Context) ([]*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainproperty.Property
	for _, p := range r.items {
		if p.Active {
			clone := *p
			out = append(out, &clone)
		}
	}
	sortProperties(out)
	return out, nil
}

func sortProperties(props []*domainproperty.Property) {
	sort.Slice(props, func(i, j int) bool { return props[i].CreatedAt.Before(props[j].CreatedAt) })
}

// BookingStore keeps bookings in memory. Insert holds the write lock across
// the overlap scan and the append, so concurrent inserts for an overlapping
// range serialize and exactly one wins.
type BookingStore struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingStore() *BookingStore {
	return &BookingStore{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (s *BookingStore) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (s *BookingStore) ByEstimateID(ctx context.Context, id domainbooking.EstimateID) (*domainbooking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.items {
		if b.EstimateID != "" && b.EstimateID == id {
			clone := *b
			return &clone, nil
		}
	}
	return nil, domainbooking.ErrBookingNotFound
}

func (s *BookingStore) FindOverlapping(ctx context.Context, propertyID domainproperty.ID, dr daterange.DateRange) ([]*domainbooking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlappingLocked(propertyID, dr), nil
}

func (s *BookingStore) overlappingLocked(propertyID domainproperty.ID, dr daterange.DateRange) []*domainbooking.Booking {
	var out []*domainbooking.Booking
	for _, b := range s.items {
		if b.PropertyID == propertyID && b.Range.Overlaps(dr) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out
}

func (s *BookingStore) ListByProperty(ctx context.Context, propertyID domainproperty.ID) ([]*domainbooking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range s.items {
		if b.PropertyID == propertyID {
			clone := *b
			out = append(out, &clone)
		}
	}
	sortBookings(out)
	return out, nil
}

func (s *BookingStore) ListByCustomer(ctx context.Context, customerID string) ([]*domainbooking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range s.items {
		if b.CustomerID == customerID {
			clone := *b
			out = append(out, &clone)
		}
	}
	sortBookings(out)
	return out, nil
}

func (s *BookingStore) Insert(ctx context.Context, b *domainbooking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.overlappingLocked(b.PropertyID, b.Range)) > 0 {
		return domainbooking.ErrDateConflict
	}
	clone := *b
	s.items[b.ID] = &clone
	return nil
}

func (s *BookingStore) Delete(ctx context.Context, id domainbooking.BookingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domainbooking.ErrBookingNotFound
	}
	delete(s.items, id)
	return nil
}

func sortBookings(bookings []*domainbooking.Booking) {
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].Range.From.Before(bookings[j].Range.From) })
}

// EstimateStore keeps estimates in memory, keyed by id with a secondary
// (property, customer, range) lookup.
type EstimateStore struct {
	mu    sync.RWMutex
	items map[domainbooking.EstimateID]*domainbooking.Estimate
}

func NewEstimateStore() *EstimateStore {
	return &EstimateStore{items: make(map[domainbooking.EstimateID]*domainbooking.Estimate)}
}

func (s *EstimateStore) ByID(ctx context.Context, id domainbooking.EstimateID) (*domainbooking.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	if !ok {
		return nil, domainbooking.ErrEstimateNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *EstimateStore) ByPropertyCustomerRange(ctx context.Context, propertyID domainproperty.ID, customerID string, dr daterange.DateRange) (*domainbooking.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.items {
		if e.PropertyID == propertyID && e.CustomerID == customerID && e.Range.Equal(dr) {
			clone := *e
			return &clone, nil
		}
	}
	return nil, domainbooking.ErrEstimateNotFound
}

func (s *EstimateStore) Upsert(ctx context.Context, e *domainbooking.Estimate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *e
	s.items[e.ID] = &clone
	return nil
}

func (s *EstimateStore) MarkPaid(ctx context.Context, id domainbooking.EstimateID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return domainbooking.ErrEstimateNotFound
	}
	e.PaymentStatus = domainbooking.PaymentPaid
	e.UpdatedAt = now.UTC()
	return nil
}

func (s *EstimateStore) ListByCustomer(ctx context.Context, customerID string) ([]*domainbooking.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domainbooking.Estimate
	for _, e := range s.items {
		if e.CustomerID == customerID {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
