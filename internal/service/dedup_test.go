package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizrecords/internal/model"
	"bizrecords/internal/repository"
)

func TestResolveOriginalID(t *testing.T) {
	t.Parallel()

	guard := NewDeduplicationGuard(repository.NewMemoryTrashRepository())
	guard.now = func() time.Time { return time.UnixMilli(1700000000123) }

	t.Run("uses payload id", func(t *testing.T) {
		assert.Equal(t, "rm1", guard.ResolveOriginalID(model.Record{"id": "rm1"}))
		assert.Equal(t, "42", guard.ResolveOriginalID(model.Record{"id": float64(42)}))
	})

	t.Run("numeric ids keep every digit", func(t *testing.T) {
		assert.Equal(t, "1700000000123", guard.ResolveOriginalID(model.Record{"id": float64(1700000000123)}))
		assert.Equal(t, "1700000000123", guard.ResolveOriginalID(model.Record{"id": json.Number("1700000000123")}))
		assert.Equal(t, "12.5", guard.ResolveOriginalID(model.Record{"id": 12.5}))
	})

	t.Run("synthesizes timestamped id when missing", func(t *testing.T) {
		first := guard.ResolveOriginalID(model.Record{"name": "Acme"})
		second := guard.ResolveOriginalID(model.Record{"id": "  "})

		assert.True(t, strings.HasPrefix(first, "gen-1700000000123-"))
		assert.True(t, IsSyntheticID(first))
		assert.True(t, IsSyntheticID(second))
		assert.NotEqual(t, first, second)
		assert.False(t, IsSyntheticID("rm1"))
	})
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("prefers the first identifying field", func(t *testing.T) {
		a := Fingerprint(model.Record{"name": "Steel Rod", "title": "x"}, "1")
		b := Fingerprint(model.Record{"name": "  steel rod "}, "2")
		c := Fingerprint(model.Record{"title": "Steel Rod"}, "1")

		assert.Equal(t, a, b)
		assert.NotEqual(t, a, c)
		assert.Len(t, a, 64)
	})

	t.Run("falls back to original id", func(t *testing.T) {
		assert.Equal(t, Fingerprint(model.Record{"qty": 3}, "x1"), Fingerprint(model.Record{"qty": 9}, "x1"))
		assert.NotEqual(t, Fingerprint(model.Record{}, "x1"), Fingerprint(model.Record{}, "x2"))
	})

	t.Run("supplier name identifies quotes", func(t *testing.T) {
		assert.Equal(t,
			Fingerprint(model.Record{"supplierName": "Acme", "price": "10"}, "q1"),
			Fingerprint(model.Record{"supplierName": "Acme", "price": "12"}, "q2"))
	})
}

func TestDeduplicationGuardCheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryTrashRepository()
	guard := NewDeduplicationGuard(repo)

	fp := Fingerprint(model.Record{"name": "Acme"}, "s1")
	_, err := repo.Add(ctx, model.TrashRecord{ID: "t1", OriginalID: "s1", OriginalType: model.TypeSupplier, Fingerprint: fp})
	require.NoError(t, err)
	_, err = repo.Add(ctx, model.TrashRecord{ID: "t2", OriginalID: "gen-1-abc", OriginalType: model.TypeRawMaterialQuote, Fingerprint: "fq"})
	require.NoError(t, err)

	t.Run("finds matching tuple", func(t *testing.T) {
		rec, found, err := guard.Check(ctx, model.TypeSupplier, "s1", fp)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "t1", rec.ID)
	})

	t.Run("different type is not a duplicate", func(t *testing.T) {
		_, found, err := guard.Check(ctx, model.TypeCustomer, "s1", fp)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("synthesized ids match on fingerprint", func(t *testing.T) {
		rec, found, err := guard.Check(ctx, model.TypeRawMaterialQuote, "gen-2-def", "fq")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "t2", rec.ID)
	})
}
