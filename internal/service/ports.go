package service

import (
	"context"

	"bizrecords/internal/model"
)

// TrashStore persists trash records. Remove and FindByID report
// model.ErrTrashItemNotFound for unknown ids; Add reports
// model.ErrAlreadyTrashed when the dedup tuple is already taken.
type TrashStore interface {
	Add(ctx context.Context, record model.TrashRecord) (string, error)
	List(ctx context.Context) ([]model.TrashRecord, error)
	FindByID(ctx context.Context, id string) (model.TrashRecord, error)
	FindActive(ctx context.Context, originalType model.OriginalType, originalID string, fingerprint string) (model.TrashRecord, error)
	Remove(ctx context.Context, id string) error
	RemoveAll(ctx context.Context) (int, error)
}

// NestedCollaborator owns parent documents that embed sub-records in an
// array field. Update rewrites the whole parent.
type NestedCollaborator interface {
	ReadAll(ctx context.Context) ([]model.Record, error)
	Update(ctx context.Context, id string, record model.Record) error
}

// FlatCollaborator is the CRUD service of a top-level business collection.
type FlatCollaborator interface {
	NestedCollaborator
	Create(ctx context.Context, record model.Record) (string, error)
}

// NamespaceStore is the per-owner key-value area outside the primary store.
type NamespaceStore interface {
	Get(ctx context.Context, key string) ([]model.Record, error)
	Set(ctx context.Context, key string, records []model.Record) error
}

// Notifier delivers fire-and-forget UI notifications.
type Notifier interface {
	Notify(eventName string, detail any)
}
