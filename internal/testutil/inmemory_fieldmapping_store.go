package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/flexprice/donorsync/internal/domain/fieldmapping"
)

// InMemoryFieldMappingStore implements fieldmapping.Repository
type InMemoryFieldMappingStore struct {
	mu      sync.RWMutex
	mapping fieldmapping.Mapping
	faults  *Faults
	reads   atomic.Int64
}

// NewInMemoryFieldMappingStore creates a store holding mapping
func NewInMemoryFieldMappingStore(mapping fieldmapping.Mapping) *InMemoryFieldMappingStore {
	return &InMemoryFieldMappingStore{
		mapping: mapping,
		faults:  NewFaults(),
	}
}

func (s *InMemoryFieldMappingStore) Get(ctx context.Context) (fieldmapping.Mapping, error) {
	s.reads.Add(1)
	if err := s.faults.Get("Get"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(fieldmapping.Mapping, len(s.mapping))
	for k, v := range s.mapping {
		out[k] = v
	}
	return out, nil
}

// Set replaces the stored mapping
func (s *InMemoryFieldMappingStore) Set(mapping fieldmapping.Mapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapping = mapping
}

// FailOn makes op return err
func (s *InMemoryFieldMappingStore) FailOn(op string, err error) {
	s.faults.Set(op, err)
}

// Reads returns how many times Get was called
func (s *InMemoryFieldMappingStore) Reads() int64 {
	return s.reads.Load()
}
