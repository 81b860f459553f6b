package apperrors

import "errors"

var (
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a malformed request (bad id format, missing
	// required fields). Surfaced synchronously to trigger callers.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a uniqueness violation (duplicate theme title or slug).
	ErrConflict = errors.New("conflict")

	// ErrPreconditionFailed indicates a stage precondition is not met, such as
	// digest generation with no policy draft for the question.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrQueueFull indicates the pipeline dispatcher rejected a task because
	// its queue is at capacity.
	ErrQueueFull = errors.New("task queue full")
)
