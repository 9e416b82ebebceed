package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bizrecords/internal/model"
)

const trashColumns = `id, original_id, original_type, fingerprint, payload, parent_id, owner_id, deleted_at,
	deleted_by_user_id, deleted_by_username, deleted_by_role, deleted_by_ip`

type TrashRepository struct {
	pool *pgxpool.Pool
}

func NewTrashRepository(pool *pgxpool.Pool) *TrashRepository {
	return &TrashRepository{pool: pool}
}

// Add inserts record and returns its id. A record that collides with an
// existing (type, original id, fingerprint) tuple yields ErrAlreadyTrashed.
func (r *TrashRepository) Add(ctx context.Context, record model.TrashRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return "", fmt.Errorf("encode trash payload: %w", err)
	}

	deletedAt, err := parseStoredTime(record.DeletedAt)
	if err != nil {
		return "", fmt.Errorf("parse deleted_at: %w", err)
	}

	var id string
	err = r.pool.QueryRow(ctx,
		`INSERT INTO trash_records
		 (id, original_id, original_type, fingerprint, payload, parent_id, owner_id, deleted_at,
		  deleted_by_user_id, deleted_by_username, deleted_by_role, deleted_by_ip)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (original_type, original_id, fingerprint) DO NOTHING
		 RETURNING id`,
		record.ID, record.OriginalID, string(record.OriginalType), record.Fingerprint, payload,
		record.ContextRefs.ParentID, record.ContextRefs.OwnerID, deletedAt,
		record.DeletedBy.UserID, record.DeletedBy.Username,
		record.DeletedBy.Role, record.DeletedBy.IP).
		Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", model.ErrAlreadyTrashed
	}
	if err != nil {
		return "", fmt.Errorf("create trash record: %w", err)
	}
	return id, nil
}

func (r *TrashRepository) List(ctx context.Context) ([]model.TrashRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+trashColumns+`
		 FROM trash_records
		 ORDER BY deleted_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}
	defer rows.Close()

	records := make([]model.TrashRecord, 0)
	for rows.Next() {
		rec, err := scanTrashRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trash record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *TrashRepository) FindByID(ctx context.Context, id string) (model.TrashRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+trashColumns+`
		 FROM trash_records
		 WHERE id = $1`, id)

	rec, err := scanTrashRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TrashRecord{}, model.ErrTrashItemNotFound
	}
	if err != nil {
		return model.TrashRecord{}, fmt.Errorf("find trash by id: %w", err)
	}
	return rec, nil
}

func (r *TrashRepository) FindActive(ctx context.Context, originalType model.OriginalType, originalID string, fingerprint string) (model.TrashRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+trashColumns+`
		 FROM trash_records
		 WHERE original_type = $1 AND original_id = $2 AND fingerprint = $3
		 ORDER BY deleted_at DESC LIMIT 1`,
		string(originalType), originalID, fingerprint)

	rec, err := scanTrashRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TrashRecord{}, model.ErrTrashItemNotFound
	}
	if err != nil {
		return model.TrashRecord{}, fmt.Errorf("find active trash record: %w", err)
	}
	return rec, nil
}

func (r *TrashRepository) Remove(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trash_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trash record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTrashItemNotFound
	}
	return nil
}

func (r *TrashRepository) RemoveAll(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trash_records`)
	if err != nil {
		return 0, fmt.Errorf("empty trash records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanTrashRecord(row pgx.Row) (model.TrashRecord, error) {
	var rec model.TrashRecord
	var originalType string
	var payload []byte
	var deletedAt time.Time

	if err := row.Scan(
		&rec.ID, &rec.OriginalID, &originalType, &rec.Fingerprint, &payload,
		&rec.ContextRefs.ParentID, &rec.ContextRefs.OwnerID, &deletedAt,
		&rec.DeletedBy.UserID, &rec.DeletedBy.Username,
		&rec.DeletedBy.Role, &rec.DeletedBy.IP,
	); err != nil {
		return model.TrashRecord{}, err
	}

	rec.OriginalType = model.OriginalType(originalType)
	rec.DeletedAt = deletedAt.UTC().Format(time.RFC3339Nano)
	rec.Payload = model.Record{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &rec.Payload); err != nil {
			return model.TrashRecord{}, fmt.Errorf("decode trash payload: %w", err)
		}
	}
	return rec, nil
}

func parseStoredTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339Nano, raw)
}
