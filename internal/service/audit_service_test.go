package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizrecords/internal/model"
	"bizrecords/internal/repository"
	"bizrecords/pkg/apierror"
)

func TestAuditService(t *testing.T) {
	t.Parallel()

	store, err := repository.NewFileAuditRepository(filepath.Join(t.TempDir(), "logs", "audit.log"))
	require.NoError(t, err)
	svc := NewAuditService(store)
	ctx := context.Background()

	svc.Log(ctx, AuditActionMove, testActor, "success", AuditResource(model.TypeSupplier, "t1"), nil, map[string]string{"original_id": "s1"}, "")
	svc.Log(ctx, AuditActionRestore, testActor, "failed", AuditResource(model.TypeRawMaterialQuote, "t2"), nil, nil, "parent record not found")
	svc.Log(ctx, AuditActionPurge, model.AuditActor{UserID: "admin-1"}, "success", "", nil, map[string]int{"count": 2}, "")

	t.Run("filters by action and status", func(t *testing.T) {
		items, meta, err := svc.Query(ctx, model.AuditQuery{Action: AuditActionRestore, Status: "FAILED"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "rawmaterial_quotes/t2", items[0].Resource)
		assert.Equal(t, 1, meta.Total)
	})

	t.Run("filters by type and actor", func(t *testing.T) {
		items, _, err := svc.Query(ctx, model.AuditQuery{Type: string(model.TypeSupplier)})
		require.NoError(t, err)
		assert.Len(t, items, 1)

		items, _, err = svc.Query(ctx, model.AuditQuery{ActorID: "admin-1"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, AuditActionPurge, items[0].Action)
	})

	t.Run("pages newest first", func(t *testing.T) {
		items, meta, err := svc.Query(ctx, model.AuditQuery{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, 3, meta.Total)
		assert.Equal(t, 2, meta.TotalPages)
	})

	t.Run("invalid time bound is a bad request", func(t *testing.T) {
		_, _, err := svc.Query(ctx, model.AuditQuery{From: "yesterday"})

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "BAD_REQUEST", apiErr.Code)
	})

	t.Run("nil service ignores writes", func(t *testing.T) {
		var nilSvc *AuditService
		assert.NotPanics(t, func() { nilSvc.Log(ctx, AuditActionDelete, testActor, "success", "", nil, nil, "") })
	})
}

type failingAuditStore struct{}

func (failingAuditStore) Log(context.Context, model.AuditEntry) error {
	return errors.New("disk full")
}

func (failingAuditStore) Query(context.Context, model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	return nil, model.Meta{}, errors.New("disk full")
}

func TestAuditServiceSwallowsWriteFailures(t *testing.T) {
	svc := NewAuditService(failingAuditStore{})
	assert.NotPanics(t, func() {
		svc.Log(context.Background(), AuditActionMove, testActor, "success", "suppliers/t1", nil, nil, "")
	})

	_, _, err := svc.Query(context.Background(), model.AuditQuery{})
	assert.Error(t, err)
}
