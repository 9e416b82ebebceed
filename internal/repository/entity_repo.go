package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"bizrecords/internal/model"
)

// EntityRepository stores business documents as JSONB rows grouped by
// collection name.
type EntityRepository struct {
	pool *pgxpool.Pool
}

func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

func (r *EntityRepository) Collection(name string) *EntityCollection {
	return &EntityCollection{pool: r.pool, name: name}
}

type EntityCollection struct {
	pool *pgxpool.Pool
	name string
}

// Create stores record under a freshly generated id and returns it.
func (c *EntityCollection) Create(ctx context.Context, record model.Record) (string, error) {
	id := uuid.NewString()
	doc := maps.Clone(record)
	if doc == nil {
		doc = model.Record{}
	}
	doc["id"] = id

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s entity: %w", c.name, err)
	}

	if _, err := c.pool.Exec(ctx,
		`INSERT INTO entities (collection, id, data) VALUES ($1, $2, $3)`,
		c.name, id, data); err != nil {
		return "", fmt.Errorf("create %s entity: %w", c.name, err)
	}
	return id, nil
}

func (c *EntityCollection) ReadAll(ctx context.Context) ([]model.Record, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, data FROM entities WHERE collection = $1 ORDER BY created_at, id`, c.name)
	if err != nil {
		return nil, fmt.Errorf("list %s entities: %w", c.name, err)
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s entity: %w", c.name, err)
		}

		record := model.Record{}
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("decode %s entity %s: %w", c.name, id, err)
		}
		record["id"] = id
		records = append(records, record)
	}
	return records, rows.Err()
}

// Update replaces the whole document stored under id.
func (c *EntityCollection) Update(ctx context.Context, id string, record model.Record) error {
	doc := maps.Clone(record)
	if doc == nil {
		doc = model.Record{}
	}
	doc["id"] = id

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s entity: %w", c.name, err)
	}

	tag, err := c.pool.Exec(ctx,
		`UPDATE entities SET data = $3, updated_at = now() WHERE collection = $1 AND id = $2`,
		c.name, id, data)
	if err != nil {
		return fmt.Errorf("update %s entity %s: %w", c.name, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s entity %s: %w", c.name, id, model.ErrEntityNotFound)
	}
	return nil
}
