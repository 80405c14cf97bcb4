package taskgate

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/dddabtc/winremote-mcp/internal/errors"
	"github.com/dddabtc/winremote-mcp/internal/logging"
)

// Operation is a submitted unit of work. The context fires when the task's
// cancellation is requested; operations that honor it end as cancelled,
// while atomic native calls are free to ignore it and complete normally.
type Operation func(ctx context.Context) (string, error)

// Executor is the uniform envelope every submitted operation passes
// through: registry bookkeeping, cancellation short-circuiting, gate
// acquisition, invocation, and result capture.
type Executor struct {
	reg  *Registry
	gate *Gate
	log  *logging.Logger
}

// NewExecutor creates an Executor over the given registry and gate.
func NewExecutor(reg *Registry, gate *Gate, log *logging.Logger) *Executor {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Executor{reg: reg, gate: gate, log: log}
}

// Registry returns the executor's registry, for read-side consumers.
func (e *Executor) Registry() *Registry {
	return e.reg
}

// Submit runs op through the execution envelope and blocks until the task
// reaches a terminal state. The returned Outcome always carries the task
// id (except for submissions rejected before a record exists), and no
// error or panic raised by op ever propagates past this boundary.
func (e *Executor) Submit(ctx context.Context, tool string, category Category, op Operation) Outcome {
	if !e.gate.Admits(category) {
		e.log.Warn("submission rejected", "tool", tool, "category", string(category))
		return Outcome{
			Success: false,
			Error:   fmt.Sprintf("submission rejected: unknown category %q", category),
		}
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	rec := e.reg.Create(tool, category, cancel)
	log := e.log.WithTask(rec.ID).With("tool", tool, "category", string(category))
	log.Debug("task created")

	// Cancel may have raced ahead of execution before the record was even
	// queued at the gate.
	if snap, err := e.reg.Get(rec.ID); err == nil && snap.CancelRequested {
		_ = e.reg.MarkCancelled(rec.ID)
		log.Info("task cancelled before admission")
		return e.cancelledOutcome(rec.ID)
	}

	if err := e.gate.Acquire(taskCtx, category); err != nil {
		_ = e.reg.MarkCancelled(rec.ID)
		log.Info("task cancelled while waiting for slot")
		return e.cancelledOutcome(rec.ID)
	}
	defer e.gate.Release(category)

	// MarkRunning re-checks the cancel flag atomically with the running
	// transition, closing the race between "cancel arrives while queued"
	// and "gate admits".
	if err := e.reg.MarkRunning(rec.ID); err != nil {
		log.Info("task cancelled at admission")
		return e.cancelledOutcome(rec.ID)
	}
	log.Debug("task running")

	result, err := e.invoke(taskCtx, op)
	switch {
	case err == nil:
		_ = e.reg.MarkSucceeded(rec.ID, result)
		log.Debug("task succeeded")
		return Outcome{TaskID: rec.ID, Success: true, Result: result}
	case errors.IsCancelled(err) || errors.Is(err, context.Canceled):
		_ = e.reg.MarkCancelled(rec.ID)
		log.Info("task cancelled during execution")
		return e.cancelledOutcome(rec.ID)
	default:
		_ = e.reg.MarkFailed(rec.ID, err.Error())
		log.Warn("task failed", "error", err.Error())
		return Outcome{TaskID: rec.ID, Success: false, Error: err.Error()}
	}
}

// Cancel requests cooperative cancellation of a task by id.
func (e *Executor) Cancel(id string) error {
	return e.reg.RequestCancel(id)
}

// invoke runs the operation, converting a panic into an error so that no
// fault inside a tool can destabilize the surrounding server.
func (e *Executor) invoke(ctx context.Context, op Operation) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("operation panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return op(ctx)
}

func (e *Executor) cancelledOutcome(id string) Outcome {
	return Outcome{TaskID: id, Success: false, Error: errors.ErrCancelled.Error()}
}
