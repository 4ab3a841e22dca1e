package testutil

import (
	"context"
	"sort"
	"sync"

	ierr "github.com/flexprice/donorsync/internal/errors"
)

// FilterFunc is a generic filter function type
type FilterFunc[T any] func(ctx context.Context, item T) bool

// SortFunc is a generic sort function type
type SortFunc[T any] func(i, j T) bool

// InMemoryStore implements a generic in-memory store. List returns items in
// insertion order unless a SortFunc is supplied, mirroring the natural order
// of a CRM query without ORDER BY.
type InMemoryStore[T any] struct {
	mu     sync.RWMutex
	items  map[string]T
	order  []string
	faults *Faults
}

// NewInMemoryStore creates a new InMemoryStore
func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items:  make(map[string]T),
		faults: NewFaults(),
	}
}

// FailOn makes every subsequent call of op return err; nil clears it
func (s *InMemoryStore[T]) FailOn(op string, err error) {
	s.faults.Set(op, err)
}

// Fault returns the injected error for op, if any
func (s *InMemoryStore[T]) Fault(op string) error {
	return s.faults.Get(op)
}

// Create adds a new item to the store
func (s *InMemoryStore[T]) Create(ctx context.Context, id string, item T) error {
	return s.CreateUnique(ctx, id, item, nil)
}

// CreateUnique adds item unless conflict reports an error against an existing
// item. The check and the insert happen under one lock.
func (s *InMemoryStore[T]) CreateUnique(ctx context.Context, id string, item T, conflict func(existing T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewError("item already exists").
			WithHintf("Item %s already exists", id).
			Mark(ierr.ErrAlreadyExists)
	}

	if conflict != nil {
		for _, existingID := range s.order {
			if err := conflict(s.items[existingID]); err != nil {
				return err
			}
		}
	}

	s.items[id] = item
	s.order = append(s.order, id)
	return nil
}

// Get retrieves an item by ID
func (s *InMemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[id]; exists {
		return item, nil
	}

	var zero T
	return zero, ierr.NewError("item not found").
		WithHintf("Item %s not found", id).
		Mark(ierr.ErrNotFound)
}

// List retrieves items based on filter
func (s *InMemoryStore[T]) List(ctx context.Context, filterFn FilterFunc[T], sortFn SortFunc[T]) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, 0)
	for _, id := range s.order {
		item := s.items[id]
		if filterFn == nil || filterFn(ctx, item) {
			result = append(result, item)
		}
	}

	if sortFn != nil {
		sort.SliceStable(result, func(i, j int) bool {
			return sortFn(result[i], result[j])
		})
	}

	return result, nil
}

// Count returns the total number of items matching the filter
func (s *InMemoryStore[T]) Count(ctx context.Context, filterFn FilterFunc[T]) (int, error) {
	items, err := s.List(ctx, filterFn, nil)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Update applies fn to the stored item atomically. fn may reject the update
// by returning an error.
func (s *InMemoryStore[T]) Update(ctx context.Context, id string, fn func(current T) (T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.items[id]
	if !exists {
		return ierr.NewError("item not found").
			WithHintf("Item %s not found", id).
			Mark(ierr.ErrNotFound)
	}

	updated, err := fn(current)
	if err != nil {
		return err
	}

	s.items[id] = updated
	return nil
}

// Clear removes all items from the store
func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
	s.order = nil
	s.faults.Clear()
}

// Faults holds injected errors keyed by operation name
type Faults struct {
	mu   sync.RWMutex
	errs map[string]error
}

func NewFaults() *Faults {
	return &Faults{errs: make(map[string]error)}
}

func (f *Faults) Set(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, op)
		return
	}
	f.errs[op] = err
}

func (f *Faults) Get(op string) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.errs[op]
}

func (f *Faults) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = make(map[string]error)
}
