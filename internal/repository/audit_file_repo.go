package repository

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"bizrecords/internal/model"
)

// FileAuditRepository keeps audit entries as JSON lines in a local file. It
// backs the audit trail when no database is configured.
type FileAuditRepository struct {
	filePath string
	mu       sync.Mutex
}

func NewFileAuditRepository(filePath string) (*FileAuditRepository, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("prepare audit directory: %w", err)
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := os.WriteFile(filePath, []byte{}, 0o644); err != nil {
			return nil, fmt.Errorf("initialize audit file: %w", err)
		}
	}

	return &FileAuditRepository{filePath: filePath}, nil
}

func (r *FileAuditRepository) Path() string {
	return r.filePath
}

func (r *FileAuditRepository) Log(_ context.Context, entry model.AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Query expects a normalized query: Page and Limit positive, From and To
// empty or RFC 3339.
func (r *FileAuditRepository) Query(_ context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	from, err := parseOptionalAuditTime(query.From)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("parse from: %w", err)
	}
	to, err := parseOptionalAuditTime(query.To)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("parse to: %w", err)
	}

	action := strings.ToLower(strings.TrimSpace(query.Action))
	status := strings.ToLower(strings.TrimSpace(query.Status))
	actorID := strings.TrimSpace(query.ActorID)
	typeFilter := strings.TrimSpace(query.Type)

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	items := make([]model.AuditEntry, 0, 128)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry model.AuditEntry
		if unmarshalErr := json.Unmarshal([]byte(line), &entry); unmarshalErr != nil {
			continue
		}

		if action != "" && strings.ToLower(strings.TrimSpace(entry.Action)) != action {
			continue
		}
		if status != "" && strings.ToLower(strings.TrimSpace(entry.Status)) != status {
			continue
		}
		if actorID != "" && strings.TrimSpace(entry.Actor.UserID) != actorID {
			continue
		}
		if typeFilter != "" && !strings.HasPrefix(entry.Resource, typeFilter+"/") {
			continue
		}

		at, timeErr := parseAuditTime(entry.OccurredAt)
		if timeErr != nil {
			continue
		}
		if !from.IsZero() && at.Before(from) {
			continue
		}
		if !to.IsZero() && at.After(to) {
			continue
		}

		items = append(items, entry)
	}

	if scanErr := scanner.Err(); scanErr != nil {
		return nil, model.Meta{}, scanErr
	}

	sort.SliceStable(items, func(i int, j int) bool {
		left, leftErr := parseAuditTime(items[i].OccurredAt)
		right, rightErr := parseAuditTime(items[j].OccurredAt)
		if leftErr != nil || rightErr != nil {
			return items[i].OccurredAt > items[j].OccurredAt
		}
		return left.After(right)
	})

	total := len(items)
	start := min((query.Page-1)*query.Limit, total)
	end := min(start+query.Limit, total)

	return items[start:end], auditMeta(query, total), nil
}

func auditMeta(query model.AuditQuery, total int) model.Meta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + query.Limit - 1) / query.Limit
	}
	return model.Meta{Page: query.Page, Limit: query.Limit, Total: total, TotalPages: totalPages}
}

func parseOptionalAuditTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}
	return parseAuditTime(trimmed)
}

func parseAuditTime(raw string) (time.Time, error) {
	if value, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return value.UTC(), nil
	}

	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return value.UTC(), nil
}
