// Package taskgate provides the task execution core: it admits tool
// operations under per-category concurrency limits, assigns task identity,
// tracks lifecycle, and supports cooperative cancellation.
//
// Every exposed tool call passes through the same envelope. The submitting
// caller supplies a category tag and an operation closure; the executor
// creates a registry record, acquires a category slot (blocking if the
// category is at its ceiling), invokes the operation, and captures success,
// failure, or panic as a structured result. No failure inside an operation
// can escape the envelope, so the surrounding server stays available no
// matter what an individual tool does.
//
// The core types are [Registry] (the single source of truth for task state),
// [Gate] (bounded admission semaphores per category), [Executor] (the
// operation wrapper), and [Reporter] (read-only status queries).
//
// Cancellation is cooperative, never preemptive. Cancelling a pending task
// prevents the operation from ever being invoked. Cancelling a running task
// fires the task's context; operations that honor their context end as
// cancelled, while atomic native calls may still complete normally.
//
// Usage:
//
//	reg := taskgate.NewRegistry(100, logger)
//	gate, err := taskgate.NewGate(taskgate.DefaultLimits())
//	exec := taskgate.NewExecutor(reg, gate, logger)
//
//	outcome := exec.Submit(ctx, "Shell", taskgate.CategoryShell, func(ctx context.Context) (string, error) {
//	    return runCommand(ctx, "uname -a")
//	})
package taskgate
