package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"bizrecords/internal/event"
	"bizrecords/internal/model"
	"bizrecords/internal/repository"
)

type testEnv struct {
	trashRepo  *repository.MemoryTrashRepository
	entities   *repository.MemoryEntityRepository
	namespaces *repository.MemoryNamespaceStore
	bus        *event.InMemoryBus
	registry   *Registry
	trash      *TrashService
	router     *RestorationRouter
}

var testActor = model.AuditActor{UserID: "u-1", Username: "editor", Role: "editor", IP: "127.0.0.1"}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		trashRepo:  repository.NewMemoryTrashRepository(),
		entities:   repository.NewMemoryEntityRepository(),
		namespaces: repository.NewMemoryNamespaceStore(),
		bus:        event.NewBus(),
	}
	env.registry = NewDefaultRegistry(Collaborators{
		Collections: func(name string) FlatCollaborator { return env.entities.Collection(name) },
		Namespaces:  env.namespaces,
		Notifier:    event.NewBusNotifier(env.bus),
	})
	env.trash = NewTrashService(env.trashRepo, env.registry, env.bus)
	env.router = NewRestorationRouter(env.trash, env.registry, env.bus)
	return env
}

func (e *testEnv) move(t *testing.T, originalType model.OriginalType, payload model.Record) string {
	t.Helper()

	result, err := e.trash.MoveToTrash(context.Background(), payload, originalType, testActor)
	require.NoError(t, err)
	require.False(t, result.AlreadyTrashed)
	require.NotEmpty(t, result.TrashID)
	return result.TrashID
}

func (e *testEnv) listIDs(t *testing.T) []string {
	t.Helper()

	records, err := e.trash.ListAll(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	return ids
}
