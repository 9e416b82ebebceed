package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizrecords/internal/model"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("rejects incomplete and duplicate registrations", func(t *testing.T) {
		registry := NewRegistry()

		assert.ErrorIs(t, registry.Register(Registration{Strategy: NewFlatStrategy(failingCollection{})}), model.ErrInvalidInput)
		assert.ErrorIs(t, registry.Register(Registration{Type: model.TypeSupplier}), model.ErrInvalidInput)

		require.NoError(t, registry.Register(Registration{Type: model.TypeSupplier, Strategy: NewFlatStrategy(failingCollection{})}))
		assert.Error(t, registry.Register(Registration{Type: model.TypeSupplier, Strategy: NewFlatStrategy(failingCollection{})}))
	})

	t.Run("default registry covers every family", func(t *testing.T) {
		registry := NewDefaultRegistry(Collaborators{
			Collections: func(string) FlatCollaborator { return failingCollection{} },
		})

		assert.Len(t, registry.Types(), 11)

		families := map[model.OriginalType]Family{
			model.TypeSupplier:         FamilyFlat,
			model.TypeManufactured:     FamilyFlat,
			model.TypeRawMaterialQuote: FamilyNested,
			model.TypeProductQuote:     FamilyNested,
			model.TypeTenderItem:       FamilyNamespace,
			model.TypeTenderDocument:   FamilyNamespace,
		}
		for originalType, family := range families {
			reg, ok := registry.Lookup(originalType)
			require.True(t, ok, originalType)
			assert.Equal(t, family, reg.Strategy.Family(), originalType)
		}
	})

	t.Run("context refs follow the registration", func(t *testing.T) {
		registry := NewDefaultRegistry(Collaborators{
			Collections: func(string) FlatCollaborator { return failingCollection{} },
		})

		assert.Equal(t, model.ContextRefs{ParentID: "p1"},
			registry.ContextRefs(model.TypeProductQuote, model.Record{"parentId": "p1", "tenderId": "t1"}))
		assert.Equal(t, model.ContextRefs{OwnerID: "t1"},
			registry.ContextRefs(model.TypeTenderDocument, model.Record{"parentId": "p1", "tenderId": "t1"}))
		assert.True(t, registry.ContextRefs(model.TypeSupplier, model.Record{"parentId": "p1"}).IsZero())
		assert.True(t, registry.ContextRefs("invoices", model.Record{"parentId": "p1"}).IsZero())
	})
}
