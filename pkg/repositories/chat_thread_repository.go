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

// ChatThreadRepository provides data access for chat threads. Messages live
// inside the thread row as a JSONB document, so appends rewrite the whole
// message list.
type ChatThreadRepository interface {
	// Create inserts a new chat thread.
	Create(ctx context.Context, thread *models.ChatThread) error

	// GetByID retrieves a chat thread by id.
	GetByID(ctx context.Context, id uuid.UUID) (*models.ChatThread, error)

	// ListByTheme returns the threads for a theme, newest first.
	ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.ChatThread, error)

	// AppendMessages adds messages to the end of the thread and returns the
	// updated thread.
	AppendMessages(ctx context.Context, id uuid.UUID, messages []models.Message) (*models.ChatThread, error)

	// AppendExtractedIDs records problem and solution ids produced from this
	// thread so the conversation can surface its own extractions.
	AppendExtractedIDs(ctx context.Context, id uuid.UUID, problemIDs, solutionIDs []uuid.UUID) error
}

type chatThreadRepository struct {
	db *database.DB
}

// NewChatThreadRepository creates a new ChatThreadRepository.
func NewChatThreadRepository(db *database.DB) ChatThreadRepository {
	return &chatThreadRepository{db: db}
}

var _ ChatThreadRepository = (*chatThreadRepository)(nil)

const chatThreadColumns = `id, theme_id, user_id, messages, extracted_problem_ids, extracted_solution_ids,
	created_at, updated_at`

func (r *chatThreadRepository) Create(ctx context.Context, thread *models.ChatThread) error {
	now := time.Now()
	if thread.ID == uuid.Nil {
		thread.ID = uuid.New()
	}
	thread.CreatedAt = now
	thread.UpdatedAt = now

	messages, err := marshalJSON(thread.Messages, "messages")
	if err != nil {
		return err
	}
	problemIDs, err := marshalJSON(thread.ExtractedProblemIDs, "extracted problem ids")
	if err != nil {
		return err
	}
	solutionIDs, err := marshalJSON(thread.ExtractedSolutionIDs, "extracted solution ids")
	if err != nil {
		return err
	}

	query := `
		INSERT INTO chat_threads (id, theme_id, user_id, messages, extracted_problem_ids, extracted_solution_ids,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.Exec(ctx, query,
		thread.ID, thread.ThemeID, thread.UserID, messages, problemIDs, solutionIDs,
		thread.CreatedAt, thread.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat thread: %w", err)
	}
	return nil
}

func (r *chatThreadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ChatThread, error) {
	query := `SELECT ` + chatThreadColumns + ` FROM chat_threads WHERE id = $1`
	return scanChatThread(r.db.QueryRow(ctx, query, id))
}

func (r *chatThreadRepository) ListByTheme(ctx context.Context, themeID uuid.UUID) ([]*models.ChatThread, error) {
	query := `SELECT ` + chatThreadColumns + ` FROM chat_threads WHERE theme_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, themeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat threads: %w", err)
	}
	defer rows.Close()

	var threads []*models.ChatThread
	for rows.Next() {
		thread, err := scanChatThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	return threads, rows.Err()
}

func (r *chatThreadRepository) AppendMessages(ctx context.Context, id uuid.UUID, messages []models.Message) (*models.ChatThread, error) {
	appended, err := marshalJSON(messages, "messages")
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE chat_threads
		SET messages = messages || $2::jsonb, updated_at = $3
		WHERE id = $1
		RETURNING ` + chatThreadColumns

	return scanChatThread(r.db.QueryRow(ctx, query, id, appended, time.Now()))
}

func (r *chatThreadRepository) AppendExtractedIDs(ctx context.Context, id uuid.UUID, problemIDs, solutionIDs []uuid.UUID) error {
	problems, err := marshalJSON(problemIDs, "extracted problem ids")
	if err != nil {
		return err
	}
	solutions, err := marshalJSON(solutionIDs, "extracted solution ids")
	if err != nil {
		return err
	}

	query := `
		UPDATE chat_threads
		SET extracted_problem_ids = extracted_problem_ids || $2::jsonb,
			extracted_solution_ids = extracted_solution_ids || $3::jsonb,
			updated_at = $4
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, problems, solutions, time.Now())
	if err != nil {
		return fmt.Errorf("failed to append extracted ids: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanChatThread(row pgx.Row) (*models.ChatThread, error) {
	var (
		thread      models.ChatThread
		messages    []byte
		problemIDs  []byte
		solutionIDs []byte
	)
	err := row.Scan(
		&thread.ID, &thread.ThemeID, &thread.UserID, &messages, &problemIDs, &solutionIDs,
		&thread.CreatedAt, &thread.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan chat thread: %w", err)
	}

	if err := unmarshalJSON(messages, &thread.Messages, "messages"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(problemIDs, &thread.ExtractedProblemIDs, "extracted problem ids"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(solutionIDs, &thread.ExtractedSolutionIDs, "extracted solution ids"); err != nil {
		return nil, err
	}
	return &thread, nil
}
