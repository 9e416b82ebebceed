package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"bizrecords/internal/event"
	"bizrecords/internal/model"
)

// storeOnlyFields are written by the trash store and never restored.
var storeOnlyFields = []string{"id", "originalId", "originalType", "deletedAt", "deletedBy", "trashId"}

// RestorationRouter brings trashed records back through the strategy
// registered for their type. A failed restore leaves the trash record in
// place; a successful one removes it.
type RestorationRouter struct {
	trash    *TrashService
	registry *Registry
	bus      event.Bus

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewRestorationRouter(trash *TrashService, registry *Registry, bus event.Bus) *RestorationRouter {
	return &RestorationRouter{
		trash:    trash,
		registry: registry,
		bus:      bus,
		inFlight: map[string]struct{}{},
	}
}

func (r *RestorationRouter) Restore(ctx context.Context, trashID string, actor model.AuditActor) (model.RestoreResult, error) {
	if !r.begin(trashID) {
		return model.RestoreResult{}, fmt.Errorf("%w: %s", model.ErrRestoreInProgress, trashID)
	}
	defer r.end(trashID)

	record, err := r.trash.Get(ctx, trashID)
	if err != nil {
		return model.RestoreResult{}, err
	}

	reg, ok := r.registry.Lookup(record.OriginalType)
	if !ok {
		return model.RestoreResult{}, fmt.Errorf("%w: %q", model.ErrUnsupportedType, record.OriginalType)
	}

	result, err := reg.Strategy.Restore(ctx, record, RecoverPayload(record))
	if err != nil {
		slog.Warn("restore failed; record kept in trash", "trash_id", trashID, "type", record.OriginalType, "error", err)
		return model.RestoreResult{}, fmt.Errorf("restore %s: %w", trashID, err)
	}

	result.TrashID = record.ID
	result.OriginalType = record.OriginalType
	result.Strategy = string(reg.Strategy.Family())

	if err := r.trash.PermanentlyDelete(ctx, record.ID, actor); err != nil {
		slog.Error("record restored but trash record not removed", "trash_id", trashID, "restored_id", result.RestoredID, "error", err)
		return result, fmt.Errorf("remove restored trash record %s: %w", trashID, err)
	}

	slog.Info("trash record restored", "trash_id", trashID, "type", record.OriginalType, "restored_id", result.RestoredID)
	if r.bus != nil {
		r.bus.Publish(event.Event{Type: event.TypeTrashRestored, Payload: result, ActorID: actor.UserID})
	}

	return result, nil
}

// IsRestoring reports whether a restore of trashID is currently running.
func (r *RestorationRouter) IsRestoring(trashID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, busy := r.inFlight[trashID]
	return busy
}

func (r *RestorationRouter) begin(trashID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.inFlight[trashID]; busy {
		return false
	}
	r.inFlight[trashID] = struct{}{}
	return true
}

func (r *RestorationRouter) end(trashID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.inFlight, trashID)
}

// RecoverPayload returns the restorable fields of record, without the
// bookkeeping fields the trash store owns.
func RecoverPayload(record model.TrashRecord) model.Record {
	payload := maps.Clone(record.Payload)
	if payload == nil {
		return model.Record{}
	}
	for _, field := range storeOnlyFields {
		delete(payload, field)
	}
	return payload
}

