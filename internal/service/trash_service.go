package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bizrecords/internal/event"
	"bizrecords/internal/model"
	"bizrecords/internal/util"
)

var originalTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// TrashService is the soft-delete store: it snapshots deleted records, lists
// them and removes them for good.
type TrashService struct {
	store    TrashStore
	guard    *DeduplicationGuard
	registry *Registry
	bus      event.Bus
	now      func() time.Time
}

func NewTrashService(store TrashStore, registry *Registry, bus event.Bus) *TrashService {
	return &TrashService{
		store:    store,
		guard:    NewDeduplicationGuard(store),
		registry: registry,
		bus:      bus,
		now:      time.Now,
	}
}

// MoveToTrash snapshots payload as a trash record of the given type. Moving
// an entity that is already in the trash is a no-op reported through
// MoveResult.AlreadyTrashed.
func (s *TrashService) MoveToTrash(ctx context.Context, payload model.Record, originalType model.OriginalType, actor model.AuditActor) (model.MoveResult, error) {
	req := model.MoveToTrashRequest{Type: originalType, Payload: payload}
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Type, validation.Required, validation.Match(originalTypePattern)),
		validation.Field(&req.Payload, validation.Required),
	); err != nil {
		return model.MoveResult{}, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	if _, ok := s.registry.Lookup(originalType); !ok {
		slog.Warn("trashing record of unregistered type", "type", originalType)
	}

	sanitized := util.Sanitize(payload)
	originalID := s.guard.ResolveOriginalID(sanitized)
	fingerprint := Fingerprint(sanitized, originalID)

	existing, found, err := s.guard.Check(ctx, originalType, originalID, fingerprint)
	if err != nil {
		return model.MoveResult{}, err
	}
	if found {
		return model.MoveResult{TrashID: existing.ID, AlreadyTrashed: true}, nil
	}

	record := model.TrashRecord{
		OriginalID:   originalID,
		OriginalType: originalType,
		Fingerprint:  fingerprint,
		Payload:      sanitized,
		ContextRefs:  s.registry.ContextRefs(originalType, sanitized),
		DeletedAt:    util.FormatTime(s.now()),
		DeletedBy:    actor,
	}

	id, err := s.store.Add(ctx, record)
	if errors.Is(err, model.ErrAlreadyTrashed) {
		// lost a race against a concurrent delete of the same entity
		existing, findErr := s.store.FindActive(ctx, originalType, originalID, fingerprint)
		if findErr != nil {
			return model.MoveResult{}, fmt.Errorf("resolve concurrent trash record: %w", findErr)
		}
		return model.MoveResult{TrashID: existing.ID, AlreadyTrashed: true}, nil
	}
	if err != nil {
		return model.MoveResult{}, fmt.Errorf("%w: move %s %s to trash: %w", model.ErrStorageWrite, originalType, originalID, err)
	}

	record.ID = id
	slog.Info("record moved to trash", "trash_id", id, "type", originalType, "original_id", originalID)
	s.publish(event.TypeTrashMoved, record, actor)

	return model.MoveResult{TrashID: id}, nil
}

// ListAll returns every trash record, newest first. Records left behind by
// earlier deduplication gaps are purged on the way; only the newest of each
// group is kept.
func (s *TrashService) ListAll(ctx context.Context) ([]model.TrashRecord, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}

	seen := make(map[string]struct{}, len(records))
	kept := make([]model.TrashRecord, 0, len(records))
	for _, rec := range records {
		key := repairKey(rec)
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			kept = append(kept, rec)
			continue
		}

		if err := s.remove(ctx, rec.ID); err != nil {
			slog.Warn("failed to purge duplicate trash record", "trash_id", rec.ID, "error", err)
			kept = append(kept, rec)
			continue
		}
		slog.Warn("purged duplicate trash record", "trash_id", rec.ID, "type", rec.OriginalType, "original_id", rec.OriginalID)
	}

	return kept, nil
}

func (s *TrashService) Get(ctx context.Context, trashID string) (model.TrashRecord, error) {
	rec, err := s.store.FindByID(ctx, trashID)
	if err != nil {
		return model.TrashRecord{}, fmt.Errorf("get trash record %s: %w", trashID, err)
	}
	return rec, nil
}

// PermanentlyDelete removes a trash record and confirms it is gone. Deleting
// an absent record succeeds.
func (s *TrashService) PermanentlyDelete(ctx context.Context, trashID string, actor model.AuditActor) error {
	if err := s.remove(ctx, trashID); err != nil {
		return err
	}

	slog.Info("trash record deleted", "trash_id", trashID)
	s.publish(event.TypeTrashDeleted, map[string]string{"id": trashID}, actor)
	return nil
}

// PurgeAll empties the trash without confirmation and returns the number of
// records removed.
func (s *TrashService) PurgeAll(ctx context.Context, actor model.AuditActor) (int, error) {
	count, err := s.store.RemoveAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: purge trash: %w", model.ErrStorageWrite, err)
	}

	slog.Warn("trash purged", "count", count, "actor", actor.Username)
	s.publish(event.TypeTrashPurged, map[string]int{"count": count}, actor)
	return count, nil
}

func (s *TrashService) remove(ctx context.Context, trashID string) error {
	if _, err := s.store.FindByID(ctx, trashID); err != nil {
		if errors.Is(err, model.ErrTrashItemNotFound) {
			return nil
		}
		return fmt.Errorf("read trash record %s: %w", trashID, err)
	}

	if err := s.store.Remove(ctx, trashID); err != nil && !errors.Is(err, model.ErrTrashItemNotFound) {
		return fmt.Errorf("%w: delete trash record %s: %w", model.ErrStorageWrite, trashID, err)
	}

	_, err := s.store.FindByID(ctx, trashID)
	switch {
	case errors.Is(err, model.ErrTrashItemNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("%w: %s: %w", model.ErrDeleteVerification, trashID, err)
	default:
		return fmt.Errorf("%w: %s", model.ErrDeleteVerification, trashID)
	}
}

func (s *TrashService) publish(eventType event.Type, payload any, actor model.AuditActor) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{Type: eventType, Payload: payload, ActorID: actor.UserID})
}
