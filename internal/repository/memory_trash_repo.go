package repository

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bizrecords/internal/model"
)

// MemoryTrashRepository keeps trash records in process memory. It honours the
// same contract as TrashRepository, including the dedup tuple constraint.
type MemoryTrashRepository struct {
	mu      sync.RWMutex
	records map[string]memoryTrashEntry
	seq     int64
}

type memoryTrashEntry struct {
	record model.TrashRecord
	seq    int64
}

func NewMemoryTrashRepository() *MemoryTrashRepository {
	return &MemoryTrashRepository{records: map[string]memoryTrashEntry{}}
}

func (r *MemoryTrashRepository) Add(_ context.Context, record model.TrashRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := record.DedupKey()
	for _, entry := range r.records {
		if entry.record.DedupKey() == key {
			return "", model.ErrAlreadyTrashed
		}
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if _, exists := r.records[record.ID]; exists {
		return "", model.ErrAlreadyTrashed
	}

	r.seq++
	r.records[record.ID] = memoryTrashEntry{record: cloneTrashRecord(record), seq: r.seq}
	return record.ID, nil
}

func (r *MemoryTrashRepository) List(_ context.Context) ([]model.TrashRecord, error) {
	r.mu.RLock()
	entries := make([]memoryTrashEntry, 0, len(r.records))
	for _, entry := range r.records {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		left, right := entries[i], entries[j]
		leftAt, leftErr := time.Parse(time.RFC3339Nano, left.record.DeletedAt)
		rightAt, rightErr := time.Parse(time.RFC3339Nano, right.record.DeletedAt)
		if leftErr == nil && rightErr == nil && !leftAt.Equal(rightAt) {
			return leftAt.After(rightAt)
		}
		return left.seq > right.seq
	})

	records := make([]model.TrashRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, cloneTrashRecord(entry.record))
	}
	return records, nil
}

func (r *MemoryTrashRepository) FindByID(_ context.Context, id string) (model.TrashRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.records[id]
	if !ok {
		return model.TrashRecord{}, model.ErrTrashItemNotFound
	}
	return cloneTrashRecord(entry.record), nil
}

func (r *MemoryTrashRepository) FindActive(_ context.Context, originalType model.OriginalType, originalID string, fingerprint string) (model.TrashRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := model.TrashRecord{OriginalType: originalType, OriginalID: originalID, Fingerprint: fingerprint}.DedupKey()
	for _, entry := range r.records {
		if entry.record.DedupKey() == key {
			return cloneTrashRecord(entry.record), nil
		}
	}
	return model.TrashRecord{}, model.ErrTrashItemNotFound
}

func (r *MemoryTrashRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return model.ErrTrashItemNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *MemoryTrashRepository) RemoveAll(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := len(r.records)
	r.records = map[string]memoryTrashEntry{}
	return count, nil
}

// Insert stores record as-is, bypassing the dedup constraint. It exists to
// seed legacy or corrupted states that the listing repair pass must heal.
func (r *MemoryTrashRepository) Insert(record model.TrashRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	r.seq++
	r.records[record.ID] = memoryTrashEntry{record: cloneTrashRecord(record), seq: r.seq}
}

func cloneTrashRecord(record model.TrashRecord) model.TrashRecord {
	record.Payload = maps.Clone(record.Payload)
	if record.Payload == nil {
		record.Payload = model.Record{}
	}
	return record
}
