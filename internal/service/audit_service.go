package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bizrecords/internal/model"
	"bizrecords/pkg/apierror"
)

// Trash audit actions.
const (
	AuditActionMove    = "trash.move"
	AuditActionRestore = "trash.restore"
	AuditActionDelete  = "trash.delete"
	AuditActionPurge   = "trash.purge"
)

// AuditResource names the audited trash record.
func AuditResource(originalType model.OriginalType, trashID string) string {
	return string(originalType) + "/" + trashID
}

// AuditStore persists audit entries. Query receives a normalized query.
type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

// AuditService records one entry per trash action. Write failures are logged
// and swallowed so auditing never fails the action itself.
type AuditService struct {
	store AuditStore
	now   func() time.Time
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, before any, after any, errText string) {
	if s == nil || s.store == nil {
		return
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now().UTC().Format(time.RFC3339Nano),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
		Before:     before,
		After:      after,
		Error:      errText,
	}

	// the action already happened; a cancelled request must not drop its entry
	if err := s.store.Log(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("audit entry not written", "action", action, "resource", resource, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 200 {
		query.Limit = 200
	}

	query.From = strings.TrimSpace(query.From)
	query.To = strings.TrimSpace(query.To)
	if !validAuditTime(query.From) {
		return nil, model.Meta{}, apierror.BadRequest("invalid 'from' datetime format", query.From)
	}
	if !validAuditTime(query.To) {
		return nil, model.Meta{}, apierror.BadRequest("invalid 'to' datetime format", query.To)
	}

	return s.store.Query(ctx, query)
}

func validAuditTime(raw string) bool {
	if raw == "" {
		return true
	}
	_, err := time.Parse(time.RFC3339Nano, raw)
	return err == nil
}
