package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/apperrors"
	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/repositories"
)

// ExtractionTrigger schedules background extraction for an origin. The
// dispatcher implements it; services depend on this narrow interface so they
// can be tested without a running queue.
type ExtractionTrigger interface {
	EnqueueExtraction(ref models.SourceRef) error
}

// ImportService accepts external opinions and queues them for extraction.
type ImportService struct {
	themes  repositories.ThemeRepository
	imports repositories.ImportedItemRepository
	trigger ExtractionTrigger
	logger  *zap.Logger
}

// NewImportService creates a new ImportService.
func NewImportService(
	themes repositories.ThemeRepository,
	imports repositories.ImportedItemRepository,
	trigger ExtractionTrigger,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		themes:  themes,
		imports: imports,
		trigger: trigger,
		logger:  logger.Named("import"),
	}
}

// Submit stores the item in pending status and schedules extraction. When
// the queue is full the item stays pending; re-triggering extraction for the
// theme will pick it up, so a full queue is reported but not fatal.
func (s *ImportService) Submit(ctx context.Context, themeID uuid.UUID, sourceType, content string, metadata map[string]any) (*models.ImportedItem, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", apperrors.ErrInvalidInput)
	}
	if sourceType == "" {
		sourceType = "other"
	}
	if _, err := s.themes.GetByID(ctx, themeID); err != nil {
		return nil, fmt.Errorf("failed to load theme %s: %w", themeID, err)
	}

	item := &models.ImportedItem{
		ThemeID:    themeID,
		SourceType: sourceType,
		Content:    content,
		Metadata:   metadata,
		Status:     models.ImportStatusPending,
	}
	if err := s.imports.Create(ctx, item); err != nil {
		return nil, err
	}

	ref := models.SourceRef{Kind: models.SourceKindImportedItem, ID: item.ID}
	if err := s.trigger.EnqueueExtraction(ref); err != nil {
		s.logger.Warn("extraction not scheduled for imported item",
			zap.String("item_id", item.ID.String()),
			zap.Error(err))
	}

	return item, nil
}

// GetItem retrieves an imported item by id.
func (s *ImportService) GetItem(ctx context.Context, id uuid.UUID) (*models.ImportedItem, error) {
	return s.imports.GetByID(ctx, id)
}

// ListItems lists a theme's imported items, newest first.
func (s *ImportService) ListItems(ctx context.Context, themeID uuid.UUID) ([]*models.ImportedItem, error) {
	return s.imports.ListByTheme(ctx, themeID)
}
