package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicsynth/deliberation-engine/pkg/models"
	"github.com/civicsynth/deliberation-engine/pkg/repositories"
	"github.com/civicsynth/deliberation-engine/pkg/services/workqueue"
)

// Dispatcher schedules pipeline stages on the work queue and chains their
// follow-ups: extraction feeds synthesis and back-linking, synthesis feeds
// linking for new questions. Trigger endpoints return as soon as the task is
// accepted; results land in the database when the stage finishes.
type Dispatcher struct {
	queue      *workqueue.Queue
	extraction *ExtractionService
	synthesis  *SynthesisService
	linking    *LinkingService
	policy     *PolicyService
	digest     *DigestService
	questions  repositories.SharpQuestionRepository
	logger     *zap.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(
	queue *workqueue.Queue,
	extraction *ExtractionService,
	synthesis *SynthesisService,
	linking *LinkingService,
	policy *PolicyService,
	digest *DigestService,
	questions repositories.SharpQuestionRepository,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		queue:      queue,
		extraction: extraction,
		synthesis:  synthesis,
		linking:    linking,
		policy:     policy,
		digest:     digest,
		questions:  questions,
		logger:     logger.Named("dispatcher"),
	}
}

var _ ExtractionTrigger = (*Dispatcher)(nil)

// EnqueueExtraction schedules extraction for an origin. On success the theme
// is queued for question synthesis, and each new statement is scored against
// the theme's existing questions.
func (d *Dispatcher) EnqueueExtraction(ref models.SourceRef) error {
	return d.queue.Enqueue(d.extractionTask(ref))
}

func (d *Dispatcher) extractionTask(ref models.SourceRef) workqueue.Task {
	return workqueue.NewTaskFunc("extraction", func(ctx context.Context, enqueuer workqueue.TaskEnqueuer) error {
		result, err := d.extraction.ExtractFromSource(ctx, ref)
		if err != nil {
			return fmt.Errorf("extraction for %s: %w", ref, err)
		}

		if len(result.NewProblems)+len(result.RefinedProblems) > 0 {
			d.chain(enqueuer, d.synthesisTask(result.ThemeID))
		}
		for _, problem := range result.NewProblems {
			d.chain(enqueuer, d.linkItemTask(problem.ID, models.LinkedItemTypeProblem))
		}
		for _, solution := range result.NewSolutions {
			d.chain(enqueuer, d.linkItemTask(solution.ID, models.LinkedItemTypeSolution))
		}
		return nil
	})
}

// EnqueueSynthesis schedules question synthesis for a theme. Every question
// the run processes is queued for relevance linking.
func (d *Dispatcher) EnqueueSynthesis(themeID uuid.UUID) error {
	return d.queue.Enqueue(d.synthesisTask(themeID))
}

func (d *Dispatcher) synthesisTask(themeID uuid.UUID) workqueue.Task {
	return workqueue.NewTaskFunc("question-synthesis", func(ctx context.Context, enqueuer workqueue.TaskEnqueuer) error {
		result, err := d.synthesis.SynthesizeQuestions(ctx, themeID)
		if err != nil {
			return fmt.Errorf("synthesis for theme %s: %w", themeID, err)
		}

		// Pre-existing questions are rescored too: a refined statement keeps
		// its old link score until the question is linked again.
		for _, question := range result.Created {
			d.chain(enqueuer, d.linkQuestionTask(question.ID))
		}
		for _, question := range result.Existing {
			d.chain(enqueuer, d.linkQuestionTask(question.ID))
		}
		return nil
	})
}

// EnqueueLinkQuestion schedules relevance scoring of every statement in the
// question's theme against the question.
func (d *Dispatcher) EnqueueLinkQuestion(questionID uuid.UUID) error {
	return d.queue.Enqueue(d.linkQuestionTask(questionID))
}

func (d *Dispatcher) linkQuestionTask(questionID uuid.UUID) workqueue.Task {
	return workqueue.NewTaskFunc("link-question", func(ctx context.Context, _ workqueue.TaskEnqueuer) error {
		if err := d.linking.LinkQuestionToAllItems(ctx, questionID); err != nil {
			return fmt.Errorf("linking question %s: %w", questionID, err)
		}
		return nil
	})
}

// EnqueueLinkItem schedules relevance scoring of one statement against every
// question in its theme.
func (d *Dispatcher) EnqueueLinkItem(itemID uuid.UUID, itemType models.LinkedItemType) error {
	return d.queue.Enqueue(d.linkItemTask(itemID, itemType))
}

func (d *Dispatcher) linkItemTask(itemID uuid.UUID, itemType models.LinkedItemType) workqueue.Task {
	return workqueue.NewTaskFunc("link-item", func(ctx context.Context, _ workqueue.TaskEnqueuer) error {
		if err := d.linking.LinkItemToAllQuestions(ctx, itemID, itemType); err != nil {
			return fmt.Errorf("linking %s %s: %w", itemType, itemID, err)
		}
		return nil
	})
}

// EnqueuePolicyGeneration schedules policy draft generation for a question.
// The question is resolved before dispatch so an unknown id fails the caller
// instead of a background task.
func (d *Dispatcher) EnqueuePolicyGeneration(ctx context.Context, questionID uuid.UUID) error {
	if _, err := d.questions.GetByID(ctx, questionID); err != nil {
		return fmt.Errorf("failed to load question %s: %w", questionID, err)
	}
	return d.queue.Enqueue(workqueue.NewTaskFunc("policy-draft", func(ctx context.Context, _ workqueue.TaskEnqueuer) error {
		if _, err := d.policy.GeneratePolicyDraft(ctx, questionID); err != nil {
			return fmt.Errorf("policy draft for question %s: %w", questionID, err)
		}
		return nil
	}))
}

// EnqueueDigestGeneration schedules digest generation for a question. Like
// policy generation, an unknown question id is rejected before dispatch.
func (d *Dispatcher) EnqueueDigestGeneration(ctx context.Context, questionID uuid.UUID) error {
	if _, err := d.questions.GetByID(ctx, questionID); err != nil {
		return fmt.Errorf("failed to load question %s: %w", questionID, err)
	}
	return d.queue.Enqueue(workqueue.NewTaskFunc("digest-draft", func(ctx context.Context, _ workqueue.TaskEnqueuer) error {
		if _, err := d.digest.GenerateDigestDraft(ctx, questionID); err != nil {
			return fmt.Errorf("digest for question %s: %w", questionID, err)
		}
		return nil
	}))
}

// chain enqueues a follow-up task from inside a running task. A full queue
// drops the follow-up; the stage can always be re-triggered.
func (d *Dispatcher) chain(enqueuer workqueue.TaskEnqueuer, task workqueue.Task) {
	if err := enqueuer.Enqueue(task); err != nil {
		d.logger.Warn("follow-up task dropped",
			zap.String("task_name", task.Name()),
			zap.Error(err))
	}
}
