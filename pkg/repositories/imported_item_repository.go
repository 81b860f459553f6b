package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/database"
	"github.com/civicsynth/deliberation-engine/pkg/models"
)

// ImportedItemRepository provides data access for externally sourced opinions
// queued for extraction.
type ImportedItemRepository interface {
	// Create inserts a new imported item in pending status.
	Create(ctx context.Context, item *models.ImportedItem) error

	// GetByID retrieves an imported item by id.
	GetByID(ctx context.Context, id uuid.UUID) (*models.ImportedItem, error)

	// ListByTheme returns the imported items for a theme, newest first.
	ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.ImportedItem, error)

	// UpdateStatus moves the item to a new processing status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ImportStatus) error
}

type importedItemRepository struct {
	db *database.DB
}

// NewImportedItemRepository creates a new ImportedItemRepository.
func NewImportedItemRepository(db *database.DB) ImportedItemRepository {
	return &importedItemRepository{db: db}
}

var _ ImportedItemRepository = (*importedItemRepository)(nil)

const importedItemColumns = `id, theme_id, source_type, content, metadata, status, created_at, updated_at`

func (r *importedItemRepository) Create(ctx context.Context, item *models.ImportedItem) error {
	now := time.Now()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.Status == "" {
		item.Status = models.ImportStatusPending
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	metadata, err := marshalJSON(item.Metadata, "metadata")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO imported_items (id, theme_id, source_type, content, metadata, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.Exec(ctx, query,
		item.ID, item.ThemeID, item.SourceType, item.Content, metadata, item.Status,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create imported item: %w", err)
	}
	return nil
}

func (r *importedItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ImportedItem, error) {
	query := `SELECT ` + importedItemColumns + ` FROM imported_items WHERE id = $1`
	return scanImportedItem(r.db.QueryRow(ctx, query, id))
}

func (r *importedItemRepository) ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.ImportedItem, error) {
	query := `SELECT ` + importedItemColumns + ` FROM imported_items WHERE theme_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, themeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list imported items: %w", err)
	}
	defer rows.Close()

	var items []*models.ImportedItem
	for rows.Next() {
		item, err := scanImportedItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *importedItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ImportStatus) error {
	query := `UPDATE imported_items SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update import status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanImportedItem(row pgx.Row) (*models.ImportedItem, error) {
	var (
		item     models.ImportedItem
		metadata []byte
	)
	err := row.Scan(
		&item.ID, &item.ThemeID, &item.SourceType, &item.Content, &metadata, &item.Status,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan imported item: %w", err)
	}

	if err := unmarshalJSON(metadata, &item.Metadata, "metadata"); err != nil {
		return nil, err
	}
	return &item, nil
}
