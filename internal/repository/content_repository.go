package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"

	"github.com/noah-isme/backoffice-api/internal/models"
)

// ContentRepository stores the published dashboard home page.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a ContentRepository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// GetActive returns the most recently published page.
func (r *ContentRepository) GetActive(ctx context.Context) (*models.HomePage, error) {
	const query = `SELECT id, content, is_active, created_at, updated_at FROM home_pages WHERE is_active = TRUE ORDER BY updated_at DESC LIMIT 1`
	var page models.HomePage
	if err := r.db.GetContext(ctx, &page, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get home page: %w", err)
	}
	return &page, nil
}

// Upsert replaces the content of the active page, creating it on first publish.
func (r *ContentRepository) Upsert(ctx context.Context, content string) (*models.HomePage, error) {
	now := time.Now().UTC()
	page := &models.HomePage{Content: content, IsActive: true, UpdatedAt: now}

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id string
		err := tx.GetContext(ctx, &id, `SELECT id FROM home_pages WHERE is_active = TRUE ORDER BY updated_at DESC LIMIT 1 FOR UPDATE`)
		switch {
		case err == sql.ErrNoRows:
			page.ID = ulid.Make().String()
			page.CreatedAt = now
			if _, err := tx.NamedExecContext(ctx, `INSERT INTO home_pages (id, content, is_active, created_at, updated_at) VALUES (:id, :content, :is_active, :created_at, :updated_at)`, page); err != nil {
				return fmt.Errorf("insert home page: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("lock home page: %w", err)
		}

		page.ID = id
		if _, err := tx.ExecContext(ctx, `UPDATE home_pages SET content = $2, updated_at = $3 WHERE id = $1`, id, content, now); err != nil {
			return fmt.Errorf("update home page: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
