package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/crypto/blake2b"

	"bizrecords/internal/model"
)

const syntheticIDPrefix = "gen-"

// identifyingFields are checked in order; the first non-empty one feeds the
// content fingerprint.
var identifyingFields = []string{"name", "title", "fileName", "supplierName"}

// DeduplicationGuard keeps at most one stored record per
// (type, original id, fingerprint) and makes repeated deletes no-ops.
type DeduplicationGuard struct {
	store TrashStore
	now   func() time.Time
}

func NewDeduplicationGuard(store TrashStore) *DeduplicationGuard {
	return &DeduplicationGuard{store: store, now: time.Now}
}

// ResolveOriginalID returns the payload id, or a synthesized
// timestamp-plus-random id when the payload carries none.
func (g *DeduplicationGuard) ResolveOriginalID(payload model.Record) string {
	if id := stringField(payload, "id"); id != "" {
		return id
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return syntheticIDPrefix + strconv.FormatInt(g.now().UnixMilli(), 10) + "-" + suffix
}

// IsSyntheticID reports whether id was produced by ResolveOriginalID rather
// than taken from the payload.
func IsSyntheticID(id string) bool {
	return strings.HasPrefix(id, syntheticIDPrefix)
}

// Fingerprint hashes the first identifying field present in payload. Records
// without one are fingerprinted by their original id.
func Fingerprint(payload model.Record, originalID string) string {
	source := "id:" + originalID
	for _, field := range identifyingFields {
		if value := stringField(payload, field); value != "" {
			source = field + ":" + strings.ToLower(value)
			break
		}
	}

	sum := blake2b.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Check looks for a stored record that makes a new delete of the same entity
// redundant. Synthesized ids never repeat, so for those the match is on type
// and fingerprint among other synthesized records.
func (g *DeduplicationGuard) Check(ctx context.Context, originalType model.OriginalType, originalID string, fingerprint string) (model.TrashRecord, bool, error) {
	if !IsSyntheticID(originalID) {
		existing, err := g.store.FindActive(ctx, originalType, originalID, fingerprint)
		if errors.Is(err, model.ErrTrashItemNotFound) {
			return model.TrashRecord{}, false, nil
		}
		if err != nil {
			return model.TrashRecord{}, false, fmt.Errorf("check duplicate trash record: %w", err)
		}
		return existing, true, nil
	}

	records, err := g.store.List(ctx)
	if err != nil {
		return model.TrashRecord{}, false, fmt.Errorf("check duplicate trash record: %w", err)
	}

	existing, found := lo.Find(records, func(rec model.TrashRecord) bool {
		return rec.OriginalType == originalType && rec.Fingerprint == fingerprint && IsSyntheticID(rec.OriginalID)
	})
	return existing, found, nil
}

// repairKey groups records that describe the same deleted entity.
func repairKey(rec model.TrashRecord) string {
	originalID := rec.OriginalID
	if IsSyntheticID(originalID) {
		originalID = syntheticIDPrefix
	}
	return string(rec.OriginalType) + "|" + originalID + "|" + rec.Fingerprint
}
