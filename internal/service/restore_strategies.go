package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"bizrecords/internal/event"
	"bizrecords/internal/model"
	"bizrecords/internal/util"
)

// FlatStrategy recreates a top-level entity through its collection service.
// The collection assigns a fresh id; the original id is never reused.
type FlatStrategy struct {
	collection FlatCollaborator
}

func NewFlatStrategy(collection FlatCollaborator) *FlatStrategy {
	return &FlatStrategy{collection: collection}
}

func (s *FlatStrategy) Family() Family { return FamilyFlat }

func (s *FlatStrategy) Restore(ctx context.Context, record model.TrashRecord, payload model.Record) (model.RestoreResult, error) {
	id, err := s.collection.Create(ctx, payload)
	if err != nil {
		return model.RestoreResult{}, fmt.Errorf("%w: recreate %s: %w", model.ErrStorageWrite, record.OriginalType, err)
	}

	return model.RestoreResult{RestoredID: id}, nil
}

// Aggregate recomputes derived parent fields after its sub-records changed.
type Aggregate func(parent model.Record, items []model.Record)

// NestedMergeStrategy appends a sub-record back into the array field of its
// parent document and rewrites the parent.
type NestedMergeStrategy struct {
	parents     NestedCollaborator
	arrayField  string
	parentField string
	aggregate   Aggregate
	newID       func() string
	parentLocks keyedMutex
}

func NewNestedMergeStrategy(parents NestedCollaborator, arrayField string, parentField string, aggregate Aggregate) *NestedMergeStrategy {
	return &NestedMergeStrategy{
		parents:     parents,
		arrayField:  arrayField,
		parentField: parentField,
		aggregate:   aggregate,
		newID:       func() string { return xid.New().String() },
	}
}

func (s *NestedMergeStrategy) Family() Family { return FamilyNested }

func (s *NestedMergeStrategy) Restore(ctx context.Context, record model.TrashRecord, payload model.Record) (model.RestoreResult, error) {
	parentID := record.ContextRefs.ParentID
	if parentID == "" {
		return model.RestoreResult{}, fmt.Errorf("%w: %s has no parent reference", model.ErrMissingParent, record.OriginalType)
	}

	// the parent array is rewritten whole; concurrent merges into one parent
	// would otherwise overwrite each other
	unlock := s.parentLocks.Lock(parentID)
	defer unlock()

	parents, err := s.parents.ReadAll(ctx)
	if err != nil {
		return model.RestoreResult{}, fmt.Errorf("read parents of %s: %w", record.OriginalType, err)
	}

	parent, found := lo.Find(parents, func(p model.Record) bool {
		return stringField(p, "id") == parentID
	})
	if !found {
		return model.RestoreResult{}, fmt.Errorf("%w: %s parent %s", model.ErrMissingParent, record.OriginalType, parentID)
	}

	items := recordsOf(parent[s.arrayField])
	subID := s.freeID(items)

	item := maps.Clone(payload)
	if item == nil {
		item = model.Record{}
	}
	if s.parentField != "" {
		delete(item, s.parentField)
	}
	item["id"] = subID
	items = append(items, item)

	parent = maps.Clone(parent)
	parent[s.arrayField] = lo.Map(items, func(r model.Record, _ int) any { return map[string]any(r) })
	if s.aggregate != nil {
		s.aggregate(parent, items)
	}

	if err := s.parents.Update(ctx, parentID, parent); err != nil {
		return model.RestoreResult{}, fmt.Errorf("%w: update parent %s: %w", model.ErrStorageWrite, parentID, err)
	}

	return model.RestoreResult{RestoredID: subID, ParentID: parentID}, nil
}

// freeID returns a sub-id unused among items, escalating to UUIDv4 when the
// short id collides.
func (s *NestedMergeStrategy) freeID(items []model.Record) string {
	taken := lo.SliceToMap(items, func(r model.Record) (string, struct{}) {
		return stringField(r, "id"), struct{}{}
	})

	id := s.newID()
	for {
		if _, used := taken[id]; !used {
			return id
		}
		id = uuid.NewString()
	}
}

// QuoteAggregate records the cheapest quote on the parent as lowestPrice and
// lowestPriceSupplier. Quotes whose price does not parse are ignored; with no
// usable price both fields are removed.
func QuoteAggregate(parent model.Record, items []model.Record) {
	var lowest decimal.Decimal
	var supplier any
	found := false

	for _, item := range items {
		price, ok := parsePrice(item["price"])
		if !ok {
			continue
		}
		if !found || price.LessThan(lowest) {
			lowest = price
			supplier = item["supplierName"]
			found = true
		}
	}

	if !found {
		delete(parent, "lowestPrice")
		delete(parent, "lowestPriceSupplier")
		return
	}

	parent["lowestPrice"] = lowest.String()
	if supplier == nil {
		delete(parent, "lowestPriceSupplier")
	} else {
		parent["lowestPriceSupplier"] = supplier
	}
}

func parsePrice(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case string:
		price, err := decimal.NewFromString(v)
		return price, err == nil
	case json.Number:
		price, err := decimal.NewFromString(v.String())
		return price, err == nil
	case decimal.Decimal:
		return v, true
	default:
		return decimal.Decimal{}, false
	}
}

// recordsOf converts a decoded JSON array into records, skipping anything
// that is not an object.
func recordsOf(raw any) []model.Record {
	switch v := raw.(type) {
	case []model.Record:
		return lo.Map(v, func(r model.Record, _ int) model.Record { return maps.Clone(r) })
	case []map[string]any:
		return lo.Map(v, func(r map[string]any, _ int) model.Record { return model.Record(maps.Clone(r)) })
	case []any:
		out := make([]model.Record, 0, len(v))
		for _, elem := range v {
			switch m := elem.(type) {
			case map[string]any:
				out = append(out, model.Record(maps.Clone(m)))
			case model.Record:
				out = append(out, maps.Clone(m))
			}
		}
		return out
	default:
		return []model.Record{}
	}
}

// NamespaceStrategy appends a sub-record to the owner-scoped list kept in the
// namespace store and notifies open views.
type NamespaceStrategy struct {
	store        NamespaceStore
	notifier     Notifier
	resourceKind string
	businessKey  []string
	restoredType event.Type
	now          func() time.Time
	keyLocks     keyedMutex
}

func NewNamespaceStrategy(store NamespaceStore, notifier Notifier, resourceKind string, businessKey []string, restoredType event.Type) *NamespaceStrategy {
	return &NamespaceStrategy{
		store:        store,
		notifier:     notifier,
		resourceKind: resourceKind,
		businessKey:  businessKey,
		restoredType: restoredType,
		now:          time.Now,
	}
}

func (s *NamespaceStrategy) Family() Family { return FamilyNamespace }

// NamespaceKey returns the storage key for the records of ownerID.
func (s *NamespaceStrategy) NamespaceKey(ownerID string) string {
	return s.resourceKind + "_" + ownerID
}

func (s *NamespaceStrategy) Restore(ctx context.Context, record model.TrashRecord, payload model.Record) (model.RestoreResult, error) {
	ownerID := record.ContextRefs.OwnerID
	if ownerID == "" {
		return model.RestoreResult{}, fmt.Errorf("%w: %s has no owner reference", model.ErrMissingParent, record.OriginalType)
	}

	key := s.NamespaceKey(ownerID)
	unlock := s.keyLocks.Lock(key)
	defer unlock()

	existing, err := s.store.Get(ctx, key)
	if err != nil {
		return model.RestoreResult{}, fmt.Errorf("read namespace %s: %w", key, err)
	}

	item := maps.Clone(payload)
	if item == nil {
		item = model.Record{}
	}

	id := record.OriginalID
	if s.conflicts(existing, id, item) {
		id = uuid.NewString()
	}
	item["id"] = id
	item["restoredAt"] = util.FormatTime(s.now())
	item["restoredFrom"] = "trash"

	if err := s.store.Set(ctx, key, append(existing, item)); err != nil {
		return model.RestoreResult{}, fmt.Errorf("%w: write namespace %s: %w", model.ErrStorageWrite, key, err)
	}

	s.notify(string(event.TypeNamespaceChanged), map[string]string{"key": key, "ownerId": ownerID})
	if s.restoredType != "" {
		s.notify(string(s.restoredType), map[string]any{"record": item, "ownerId": ownerID})
	}

	return model.RestoreResult{RestoredID: id, Namespace: key}, nil
}

func (s *NamespaceStrategy) conflicts(existing []model.Record, id string, item model.Record) bool {
	return lo.SomeBy(existing, func(other model.Record) bool {
		if stringField(other, "id") == id {
			return true
		}
		if len(s.businessKey) == 0 {
			return false
		}
		return lo.EveryBy(s.businessKey, func(field string) bool {
			value := stringField(item, field)
			return value != "" && value == stringField(other, field)
		})
	})
}

// notify never lets a notifier failure reach the restore outcome.
func (s *NamespaceStrategy) notify(eventName string, detail any) {
	if s.notifier == nil {
		return
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			slog.Warn("restore notification failed", "event", eventName, "panic", recovered)
		}
	}()
	s.notifier.Notify(eventName, detail)
}
