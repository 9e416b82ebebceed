package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"

	"bizrecords/internal/model"
)

// Family groups restore strategies by where the restored record lives.
type Family string

const (
	FamilyFlat      Family = "flat"
	FamilyNested    Family = "nested"
	FamilyNamespace Family = "namespace"
)

// RestoreStrategy puts a trashed record back into its home location.
type RestoreStrategy interface {
	Family() Family
	Restore(ctx context.Context, record model.TrashRecord, payload model.Record) (model.RestoreResult, error)
}

// Registration binds an OriginalType to its restore strategy and display
// mapping. ParentField and OwnerField name the payload fields captured into
// ContextRefs when a record is trashed.
type Registration struct {
	Type        model.OriginalType
	Strategy    RestoreStrategy
	Display     model.DisplayInfo
	ParentField string
	OwnerField  string
}

type Registry struct {
	mu      sync.RWMutex
	entries map[model.OriginalType]Registration
}

func NewRegistry() *Registry {
	return &Registry{entries: map[model.OriginalType]Registration{}}
}

func (r *Registry) Register(reg Registration) error {
	if strings.TrimSpace(string(reg.Type)) == "" {
		return fmt.Errorf("register restore strategy: %w: type is required", model.ErrInvalidInput)
	}
	if reg.Strategy == nil {
		return fmt.Errorf("register restore strategy for %q: %w: strategy is required", reg.Type, model.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[reg.Type]; exists {
		return fmt.Errorf("register restore strategy: type %q already registered", reg.Type)
	}
	r.entries[reg.Type] = reg
	return nil
}

func (r *Registry) MustRegister(reg Registration) {
	if err := r.Register(reg); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(originalType model.OriginalType) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.entries[originalType]
	return reg, ok
}

func (r *Registry) Types() []model.OriginalType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := lo.Keys(r.entries)
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ContextRefs extracts the owning parent references of payload according to
// the registration for originalType. Unregistered types carry none.
func (r *Registry) ContextRefs(originalType model.OriginalType, payload model.Record) model.ContextRefs {
	reg, ok := r.Lookup(originalType)
	if !ok {
		return model.ContextRefs{}
	}

	return model.ContextRefs{
		ParentID: stringField(payload, reg.ParentField),
		OwnerID:  stringField(payload, reg.OwnerField),
	}
}

func stringField(record model.Record, field string) string {
	if field == "" || record == nil {
		return ""
	}
	value, ok := record[field]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(scalarString(value))
}

// scalarString renders numeric ids decoded from JSON without exponent
// notation, so 1700000000123 stays "1700000000123".
func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(value)
	}
}
