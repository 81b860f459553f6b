package workqueue

import (
	"context"

	"github.com/google/uuid"
)

// Task is a unit of background pipeline work.
type Task interface {
	// ID returns a unique identifier for this task instance.
	ID() string

	// Name returns a short name for logging.
	Name() string

	// Execute runs the task. The enqueuer lets a task schedule follow-up
	// work, which is how pipeline stages chain without blocking the
	// request that triggered them.
	Execute(ctx context.Context, enqueuer TaskEnqueuer) error
}

// TaskEnqueuer allows tasks to enqueue follow-up tasks.
type TaskEnqueuer interface {
	Enqueue(task Task) error
}

// BaseTask provides ID and Name for concrete tasks to embed.
type BaseTask struct {
	id   string
	name string
}

// NewBaseTask creates a new base task with a generated id.
func NewBaseTask(name string) BaseTask {
	return BaseTask{id: uuid.New().String(), name: name}
}

func (t BaseTask) ID() string { return t.id }

func (t BaseTask) Name() string { return t.name }

// TaskFunc adapts a plain function into a Task.
type TaskFunc struct {
	BaseTask
	Fn func(ctx context.Context, enqueuer TaskEnqueuer) error
}

// NewTaskFunc wraps fn as a named task.
func NewTaskFunc(name string, fn func(ctx context.Context, enqueuer TaskEnqueuer) error) *TaskFunc {
	return &TaskFunc{BaseTask: NewBaseTask(name), Fn: fn}
}

func (t *TaskFunc) Execute(ctx context.Context, enqueuer TaskEnqueuer) error {
	return t.Fn(ctx, enqueuer)
}
