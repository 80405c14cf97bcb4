package taskgate

import (
	"fmt"
	"time"

	"github.com/dddabtc/winremote-mcp/internal/errors"
)

// Status represents the current state of a submitted task.
type Status string

const (
	// StatusPending indicates the task is registered but not yet admitted.
	StatusPending Status = "pending"

	// StatusRunning indicates the task holds a category slot and its
	// operation is executing.
	StatusRunning Status = "running"

	// StatusSucceeded indicates the operation returned normally.
	StatusSucceeded Status = "succeeded"

	// StatusFailed indicates the operation returned an error or panicked.
	StatusFailed Status = "failed"

	// StatusCancelled indicates the task ended via cancellation, either
	// before the operation started or cooperatively while running.
	StatusCancelled Status = "cancelled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
// No transition ever leaves a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

// Category classifies an operation and determines which concurrency
// ceiling applies to it. The set of categories is closed: submissions
// with an unrecognized category are rejected, never silently defaulted.
type Category string

const (
	// CategoryDesktop covers pointer, keyboard and screen operations.
	// Exclusive: concurrent input operations would race on one physical
	// input stream.
	CategoryDesktop Category = "desktop"

	// CategoryFile covers file system operations.
	CategoryFile Category = "file"

	// CategoryQuery covers read-only system queries.
	CategoryQuery Category = "query"

	// CategoryShell covers shell command execution.
	CategoryShell Category = "shell"

	// CategoryNetwork covers network probes.
	CategoryNetwork Category = "network"
)

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDesktop, CategoryFile, CategoryQuery, CategoryShell, CategoryNetwork:
		return true
	}
	return false
}

// Categories returns all known categories.
func Categories() []Category {
	return []Category{CategoryDesktop, CategoryFile, CategoryQuery, CategoryShell, CategoryNetwork}
}

// ParseCategory converts a string into a Category, rejecting unknown values.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownCategory, s)
	}
	return c, nil
}

// DefaultLimits returns the default concurrency ceiling per category.
func DefaultLimits() map[Category]int {
	return map[Category]int{
		CategoryDesktop: 1,
		CategoryFile:    3,
		CategoryQuery:   5,
		CategoryShell:   2,
		CategoryNetwork: 3,
	}
}

// DefaultHistoryCapacity is the default number of terminal task records
// retained for diagnostics before FIFO eviction.
const DefaultHistoryCapacity = 100

// Record is the metadata and state of one submitted task. Registry methods
// return value copies, so a Record held by a caller is a stable snapshot
// unaffected by concurrent mutation.
type Record struct {
	// ID is the opaque task identifier, unique among all records
	// currently held by the registry.
	ID string `json:"task_id"`

	// Tool is the name of the submitted tool operation.
	Tool string `json:"tool_name"`

	// Category is the concurrency category applied to the task.
	Category Category `json:"category"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// CreatedAt is when the task was submitted.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the task entered the running state.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the task reached a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Result holds the success payload for succeeded tasks.
	Result string `json:"result,omitempty"`

	// Error holds the structured failure description for failed tasks.
	Error string `json:"error,omitempty"`

	// CancelRequested is set once cancellation has been requested,
	// regardless of whether the operation honors it.
	CancelRequested bool `json:"cancel_requested"`
}

// Duration returns how long the operation has been running, or ran,
// rounded to the millisecond. It returns 0 for tasks that never started.
func (r *Record) Duration() time.Duration {
	if r.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if r.CompletedAt != nil {
		end = *r.CompletedAt
	}
	return end.Sub(*r.StartedAt).Round(time.Millisecond)
}

// Outcome is what every submission reports back to the original caller.
// TaskID is always present so long-running operations can be tracked or
// cancelled even after the initial call returns.
type Outcome struct {
	TaskID  string `json:"task_id"`
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Stats is a snapshot of registry state counts.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}
