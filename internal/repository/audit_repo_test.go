package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizrecords/internal/model"
)

func TestClauseBuilder(t *testing.T) {
	var empty clauseBuilder
	assert.Empty(t, empty.where())

	var b clauseBuilder
	b.add("actor_user_id = $%d", "u-1")
	b.add("starts_with(resource, $%d)", "suppliers/")

	assert.Equal(t, "WHERE actor_user_id = $1 AND starts_with(resource, $2)", b.where())
	assert.Equal(t, []any{"u-1", "suppliers/"}, b.args)
}

func TestAuditJSONColumns(t *testing.T) {
	raw, err := encodeAuditJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
	assert.Nil(t, decodeAuditJSON(raw))

	raw, err = encodeAuditJSON(map[string]int{"count": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": float64(3)}, decodeAuditJSON(raw))
	assert.Nil(t, decodeAuditJSON([]byte("{broken")))
}

func TestFileAuditRepositoryTimeRange(t *testing.T) {
	repo, err := NewFileAuditRepository(filepath.Join(t.TempDir(), "audit", "trail.log"))
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []string{"trash.move", "trash.restore", "trash.delete"} {
		require.NoError(t, repo.Log(ctx, model.AuditEntry{
			Action:     action,
			OccurredAt: base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339Nano),
			Status:     "success",
			Resource:   "suppliers/t" + action,
		}))
	}

	items, meta, err := repo.Query(ctx, model.AuditQuery{
		From:  base.Add(30 * time.Minute).Format(time.RFC3339),
		To:    base.Add(3 * time.Hour).Format(time.RFC3339),
		Page:  1,
		Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, meta.Total)
	assert.Equal(t, "trash.delete", items[0].Action)
	assert.Equal(t, "trash.restore", items[1].Action)

	items, meta, err = repo.Query(ctx, model.AuditQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 2, meta.TotalPages)
}
