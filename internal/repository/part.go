package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"spareparts/catalog/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PartRepository mirrors catalog parts into Postgres for the storefront search.
type PartRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveParts(ctx context.Context, categoryID, subcategoryID string, parts []domain.Part) error
}

type partRepository struct {
	db *pgxpool.Pool
}

func NewPartRepository(db *pgxpool.Pool) PartRepository {
	return &partRepository{
		db: db,
	}
}

func (r *partRepository) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS spare_parts (
		part_no        TEXT PRIMARY KEY,
		category_id    TEXT NOT NULL,
		subcategory_id TEXT NOT NULL,
		data           JSONB NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create spare_parts table: %w", err)
	}
	return nil
}

const upsertPartQuery = `
	INSERT INTO spare_parts (part_no, category_id, subcategory_id, data)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (part_no)
	DO UPDATE SET category_id = EXCLUDED.category_id,
		subcategory_id = EXCLUDED.subcategory_id,
		data = EXCLUDED.data,
		updated_at = now()`

// SaveParts upserts the parts in one batch. Repeated part numbers keep the last row.
func (r *partRepository) SaveParts(ctx context.Context, categoryID, subcategoryID string, parts []domain.Part) error {
	if len(parts) == 0 {
		return nil
	}

	batch, err := upsertBatch(categoryID, subcategoryID, parts)
	if err != nil {
		return err
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save parts for %s/%s: %w", categoryID, subcategoryID, err)
	}

	return nil
}

func upsertBatch(categoryID, subcategoryID string, parts []domain.Part) (*pgx.Batch, error) {
	batch := &pgx.Batch{}
	for _, part := range parts {
		data, err := json.Marshal(part)
		if err != nil {
			return nil, fmt.Errorf("failed to encode part %s: %w", part.PartNo, err)
		}
		batch.Queue(upsertPartQuery, part.PartNo, categoryID, subcategoryID, data)
	}
	return batch, nil
}
