// Package memory provides in-process implementations of the reservation store
// and the property/user directories. It backs STORE=memory and the engine tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/model"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/repository"
	"github.com/google/uuid"
)

// ReservationStore keeps reservations in a map guarded by a mutex.
type ReservationStore struct {
	mu           sync.RWMutex
	reservations map[string]model.Reservation

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

var _ repository.ReservationStore = (*ReservationStore)(nil)

// NewReservationStore returns an empty store.
func NewReservationStore() *ReservationStore {
	return &ReservationStore{
		reservations: make(map[string]model.Reservation),
		locks:        make(map[string]*sync.Mutex),
	}
}

// WithPropertyLock holds a per-property mutex while fn runs.
// Writes are applied immediately; fn must validate before it writes.
func (s *ReservationStore) WithPropertyLock(ctx context.Context, propertyID string, fn func(repository.ReservationStore) error) error {
	lock := s.propertyLock(propertyID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(lockedStore{s})
}

func (s *ReservationStore) propertyLock(propertyID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[propertyID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[propertyID] = l
	}
	return l
}

func (s *ReservationStore) FindOverlapping(_ context.Context, propertyID string, in model.Interval, f model.OverlapFilter) ([]model.Reservation, error) {
	return s.filter(func(r model.Reservation) bool {
		return r.PropertyID == propertyID &&
			r.ID != f.ExcludeID &&
			!f.Ignores(r.Status) &&
			r.Interval.Overlaps(in)
	}, byStartAsc), nil
}

func (s *ReservationStore) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *ReservationStore) FindByIDAndTenant(ctx context.Context, id, tenantID string) (*model.Reservation, error) {
	r, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (s *ReservationStore) FindByTenant(_ context.Context, tenantID string) ([]model.Reservation, error) {
	return s.filter(func(r model.Reservation) bool {
		return r.TenantID == tenantID
	}, byStartDesc), nil
}

func (s *ReservationStore) FindByTenantAndStatus(_ context.Context, tenantID string, status model.Status) ([]model.Reservation, error) {
	return s.filter(func(r model.Reservation) bool {
		return r.TenantID == tenantID && r.Status == status
	}, byStartDesc), nil
}

func (s *ReservationStore) FindByProperty(_ context.Context, propertyID string) ([]model.Reservation, error) {
	return s.filter(func(r model.Reservation) bool {
		return r.PropertyID == propertyID
	}, byStartAsc), nil
}

// Save inserts (assigning an id) or updates dates and status.
func (s *ReservationStore) Save(_ context.Context, r *model.Reservation) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := *r
	if out.ID == "" {
		out.ID = uuid.New().String()
		if out.CreatedAt.IsZero() {
			out.CreatedAt = time.Now().UTC()
		}
		s.reservations[out.ID] = out
		return &out, nil
	}

	cur, ok := s.reservations[out.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cur.Interval = out.Interval
	cur.Status = out.Status
	s.reservations[out.ID] = cur
	return &cur, nil
}

func (s *ReservationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

// Len returns the number of stored reservations.
func (s *ReservationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reservations)
}

func (s *ReservationStore) filter(keep func(model.Reservation) bool, less func(a, b model.Reservation) bool) []model.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Reservation
	for _, r := range s.reservations {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byStartAsc(a, b model.Reservation) bool {
	if a.Interval.Start.Equal(b.Interval.Start) {
		return a.ID < b.ID
	}
	return a.Interval.Start.Before(b.Interval.Start)
}

func byStartDesc(a, b model.Reservation) bool { return byStartAsc(b, a) }

// lockedStore is handed to WithPropertyLock callbacks. The property lock is
// already held, so nested WithPropertyLock calls for it run fn directly.
type lockedStore struct {
	*ReservationStore
}

func (l lockedStore) WithPropertyLock(ctx context.Context, _ string, fn func(repository.ReservationStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(l)
}
