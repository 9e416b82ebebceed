package repository

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"

	"bizrecords/internal/model"
)

type MemoryEntityRepository struct {
	mu          sync.Mutex
	collections map[string]*MemoryEntityCollection
}

func NewMemoryEntityRepository() *MemoryEntityRepository {
	return &MemoryEntityRepository{collections: map[string]*MemoryEntityCollection{}}
}

// Collection returns the named collection, creating it on first use.
func (r *MemoryEntityRepository) Collection(name string) *MemoryEntityCollection {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.collections[name]; ok {
		return c
	}
	c := &MemoryEntityCollection{name: name, docs: map[string]model.Record{}}
	r.collections[name] = c
	return c
}

type MemoryEntityCollection struct {
	name  string
	mu    sync.RWMutex
	order []string
	docs  map[string]model.Record
}

func (c *MemoryEntityCollection) Create(_ context.Context, record model.Record) (string, error) {
	id := uuid.NewString()
	c.Put(id, record)
	return id, nil
}

// Put stores record under an explicit id, replacing any existing document.
func (c *MemoryEntityCollection) Put(id string, record model.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc := maps.Clone(record)
	if doc == nil {
		doc = model.Record{}
	}
	doc["id"] = id

	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = doc
}

func (c *MemoryEntityCollection) ReadAll(_ context.Context) ([]model.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records := make([]model.Record, 0, len(c.order))
	for _, id := range c.order {
		records = append(records, maps.Clone(c.docs[id]))
	}
	return records, nil
}

func (c *MemoryEntityCollection) Update(_ context.Context, id string, record model.Record) error {
	c.mu.RLock()
	_, exists := c.docs[id]
	c.mu.RUnlock()
	if !exists {
		return fmt.Errorf("update %s entity %s: %w", c.name, id, model.ErrEntityNotFound)
	}

	c.Put(id, record)
	return nil
}

func (c *MemoryEntityCollection) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[id]; !exists {
		return
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
