package visit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and demos. It honors the same
// compare-and-swap contract as the sqlite store.
type MemoryStore struct {
	mu     sync.Mutex
	visits map[string]*Visit
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{visits: make(map[string]*Visit)}
}

func (s *MemoryStore) Create(ctx context.Context, v *Visit) (*Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *v
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.Status == "" {
		cp.Status = StatusPlanned
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.Orders = cloneOrders(v.Orders)
	cp.TotalOrderAmount = TotalOf(cp.Orders)

	s.visits[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visits[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *v
	out.Orders = cloneOrders(v.Orders)
	return &out, nil
}

func (s *MemoryStore) List(ctx context.Context, ownerID string, opts ListOptions) ([]*Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var visits []*Visit
	for _, v := range s.visits {
		if v.OwnerID != ownerID {
			continue
		}
		if opts.From != nil && v.PlannedDate.Before(*opts.From) {
			continue
		}
		if opts.To != nil && !v.PlannedDate.Before(*opts.To) {
			continue
		}
		if opts.Status != "" && v.Status != opts.Status {
			continue
		}
		out := *v
		out.Orders = cloneOrders(v.Orders)
		visits = append(visits, &out)
	}
	sort.Slice(visits, func(i, j int) bool {
		if !visits[i].PlannedDate.Equal(visits[j].PlannedDate) {
			return visits[i].PlannedDate.Before(visits[j].PlannedDate)
		}
		return visits[i].CreatedAt.Before(visits[j].CreatedAt)
	})
	return visits, nil
}

func (s *MemoryStore) Update(ctx context.Context, v *Visit) (*Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.visits[v.ID]
	if !ok || cur.OwnerID != v.OwnerID {
		return nil, ErrNotFound
	}
	cur.Customer.Name = v.Customer.Name
	cur.Customer.Address = v.Customer.Address
	cur.Customer.Phone = v.Customer.Phone
	cur.PlannedDate = v.PlannedDate
	cur.Notes = v.Notes
	cur.UpdatedAt = time.Now().UTC()

	out := *cur
	out.Orders = cloneOrders(cur.Orders)
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visits[id]
	if !ok || v.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.visits, id)
	return nil
}

func (s *MemoryStore) CompareAndSwapStatus(ctx context.Context, id string, expected Status, patch Patch) (*Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visits[id]
	if !ok {
		return nil, ErrNotFound
	}
	if v.Status != expected {
		return nil, ErrConflict
	}

	v.Status = patch.Status
	if patch.ActualDate != nil {
		v.ActualDate = patch.ActualDate
	}
	if patch.Notes != nil {
		v.Notes = *patch.Notes
	}
	if patch.Orders != nil {
		v.Orders = cloneOrders(patch.Orders)
	}
	if patch.TotalOrderAmount != nil {
		v.TotalOrderAmount = *patch.TotalOrderAmount
	}
	if patch.Confirmation != nil {
		v.Confirmation = *patch.Confirmation
	}
	v.UpdatedAt = time.Now().UTC()

	out := *v
	out.Orders = cloneOrders(v.Orders)
	return &out, nil
}

func cloneOrders(lines []OrderLine) []OrderLine {
	if lines == nil {
		return nil
	}
	out := make([]OrderLine, len(lines))
	copy(out, lines)
	return out
}
