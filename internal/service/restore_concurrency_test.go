package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizrecords/internal/event"
	"bizrecords/internal/model"
	"bizrecords/internal/repository"
)

// slowCollection widens the read-modify-write window of parent merges.
type slowCollection struct {
	*repository.MemoryEntityCollection
	delay time.Duration
}

func (c slowCollection) ReadAll(ctx context.Context) ([]model.Record, error) {
	time.Sleep(c.delay)
	return c.MemoryEntityCollection.ReadAll(ctx)
}

type slowNamespaceStore struct {
	*repository.MemoryNamespaceStore
	delay time.Duration
}

func (s slowNamespaceStore) Get(ctx context.Context, key string) ([]model.Record, error) {
	time.Sleep(s.delay)
	return s.MemoryNamespaceStore.Get(ctx, key)
}

func restoreAllConcurrently(t *testing.T, router *RestorationRouter, trashIDs []string) {
	t.Helper()

	var wg sync.WaitGroup
	errs := make([]error, len(trashIDs))
	for i, id := range trashIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = router.Restore(context.Background(), id, testActor)
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestConcurrentRestoresIntoOneParent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	entities := repository.NewMemoryEntityRepository()
	materials := entities.Collection(string(model.TypeRawMaterial))
	materials.Put("rm1", model.Record{"name": "Steel Rod", "quotes": []any{}})

	bus := event.NewBus()
	registry := NewRegistry()
	registry.MustRegister(Registration{
		Type:        model.TypeRawMaterialQuote,
		Strategy:    NewNestedMergeStrategy(slowCollection{MemoryEntityCollection: materials, delay: 5 * time.Millisecond}, "quotes", "parentId", QuoteAggregate),
		ParentField: "parentId",
	})
	trash := NewTrashService(repository.NewMemoryTrashRepository(), registry, bus)
	router := NewRestorationRouter(trash, registry, bus)

	trashIDs := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		result, err := trash.MoveToTrash(ctx, model.Record{
			"id":           fmt.Sprintf("q%d", i),
			"supplierName": fmt.Sprintf("Supplier %d", i),
			"price":        fmt.Sprintf("%d.50", 10+i),
			"parentId":     "rm1",
		}, model.TypeRawMaterialQuote, testActor)
		require.NoError(t, err)
		trashIDs = append(trashIDs, result.TrashID)
	}

	restoreAllConcurrently(t, router, trashIDs)

	parents, err := materials.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Len(t, recordsOf(parents[0]["quotes"]), 4)
	assert.Equal(t, "10.5", parents[0]["lowestPrice"])

	remaining, err := trash.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestConcurrentRestoresIntoOneNamespace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	namespaces := repository.NewMemoryNamespaceStore()
	bus := event.NewBus()

	strategy := NewNamespaceStrategy(slowNamespaceStore{MemoryNamespaceStore: namespaces, delay: 5 * time.Millisecond}, nil, "tenderItems", []string{"name", "unit"}, event.TypeTenderItemRestored)
	registry := NewRegistry()
	registry.MustRegister(Registration{Type: model.TypeTenderItem, Strategy: strategy, OwnerField: "tenderId"})
	trash := NewTrashService(repository.NewMemoryTrashRepository(), registry, bus)
	router := NewRestorationRouter(trash, registry, bus)

	trashIDs := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		result, err := trash.MoveToTrash(ctx, model.Record{
			"id":       fmt.Sprintf("ti%d", i),
			"name":     fmt.Sprintf("Item %d", i),
			"unit":     "bag",
			"tenderId": "t1",
		}, model.TypeTenderItem, testActor)
		require.NoError(t, err)
		trashIDs = append(trashIDs, result.TrashID)
	}

	restoreAllConcurrently(t, router, trashIDs)

	items, err := namespaces.Get(ctx, strategy.NamespaceKey("t1"))
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestKeyedMutex(t *testing.T) {
	t.Parallel()

	var locks keyedMutex
	unlockA := locks.Lock("a")

	// a different key is never blocked by a held one
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("b")
		unlockB()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent key blocked")
	}

	acquired := make(chan struct{})
	go func() {
		unlock := locks.Lock("a")
		close(acquired)
		unlock()
	}()
	select {
	case <-acquired:
		t.Fatal("held key acquired twice")
	case <-time.After(20 * time.Millisecond):
	}

	unlockA()
	<-acquired

	assert.Eventually(t, func() bool {
		locks.mu.Lock()
		defer locks.mu.Unlock()
		return len(locks.locks) == 0
	}, time.Second, time.Millisecond)
}
