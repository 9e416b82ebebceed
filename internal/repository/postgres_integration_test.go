//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizrecords/internal/database"
	"bizrecords/internal/model"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, url, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE trash_records, entities, audit_entries`)
	require.NoError(t, err)
	return db
}

func TestPostgresTrashRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewTrashRepository(db.Pool)
	ctx := context.Background()

	rec := model.TrashRecord{
		OriginalID:   "rm1",
		OriginalType: model.TypeRawMaterial,
		Fingerprint:  "fp-1",
		Payload:      model.Record{"name": "Steel Rod", "stock": float64(4)},
		ContextRefs:  model.ContextRefs{ParentID: "p1"},
		DeletedAt:    time.Now().UTC().Format(time.RFC3339Nano),
		DeletedBy:    model.AuditActor{UserID: "u-1", Role: "editor"},
	}

	id, err := repo.Add(ctx, rec)
	require.NoError(t, err)

	_, err = repo.Add(ctx, rec)
	assert.ErrorIs(t, err, model.ErrAlreadyTrashed)

	found, err := repo.FindActive(ctx, model.TypeRawMaterial, "rm1", "fp-1")
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)
	assert.Equal(t, "Steel Rod", found.Payload["name"])
	assert.Equal(t, "p1", found.ContextRefs.ParentID)

	records, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.NoError(t, repo.Remove(ctx, id))
	assert.ErrorIs(t, repo.Remove(ctx, id), model.ErrTrashItemNotFound)

	_, err = repo.FindByID(ctx, id)
	assert.ErrorIs(t, err, model.ErrTrashItemNotFound)
}

func TestPostgresEntityCollection(t *testing.T) {
	db := openTestDB(t)
	products := NewEntityRepository(db.Pool).Collection("products")
	ctx := context.Background()

	id, err := products.Create(ctx, model.Record{"name": "Widget"})
	require.NoError(t, err)

	require.NoError(t, products.Update(ctx, id, model.Record{"name": "Widget", "quotes": []any{}}))

	docs, err := products.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0]["id"])
}

func TestPostgresAuditRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewAuditRepository(db.Pool)
	ctx := context.Background()

	require.NoError(t, repo.Log(ctx, model.AuditEntry{
		Action:     "trash.move",
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
		Actor:      model.AuditActor{UserID: "u-1"},
		Status:     "success",
		Resource:   "suppliers/t1",
		After:      map[string]any{"trash_id": "t1"},
	}))

	items, meta, err := repo.Query(ctx, model.AuditQuery{Type: "suppliers", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, meta.Total)
	assert.Equal(t, map[string]any{"trash_id": "t1"}, items[0].After)
}
