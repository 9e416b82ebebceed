package repository

import (
	"context"
	"maps"
	"sync"

	"bizrecords/internal/model"
)

type MemoryNamespaceStore struct {
	mu   sync.RWMutex
	data map[string][]model.Record
}

func NewMemoryNamespaceStore() *MemoryNamespaceStore {
	return &MemoryNamespaceStore{data: map[string][]model.Record{}}
}

func (s *MemoryNamespaceStore) Get(_ context.Context, key string) ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneRecords(s.data[key]), nil
}

func (s *MemoryNamespaceStore) Set(_ context.Context, key string, records []model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = cloneRecords(records)
	return nil
}

func cloneRecords(records []model.Record) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, record := range records {
		out = append(out, maps.Clone(record))
	}
	return out
}
