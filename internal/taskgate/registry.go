package taskgate

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dddabtc/winremote-mcp/internal/errors"
	"github.com/dddabtc/winremote-mcp/internal/logging"
)

// entry is the registry's internal task representation: the public record
// plus the cancel function that fires the task's context.
type entry struct {
	Record
	cancel context.CancelFunc
}

// Registry is the authoritative store of task records and their lifecycle
// transitions. All mutating operations share one critical section; reads
// return independent snapshots so concurrent iteration is never affected
// by in-flight mutation.
type Registry struct {
	mu       sync.Mutex
	tasks    map[string]*entry
	order    []string // task IDs in creation order
	capacity int      // max terminal records retained
	log      *logging.Logger
}

// NewRegistry creates a Registry that retains up to capacity terminal
// records before evicting the oldest. A capacity below 1 falls back to
// DefaultHistoryCapacity.
func NewRegistry(capacity int, log *logging.Logger) *Registry {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	if log == nil {
		log = logging.NopLogger()
	}
	return &Registry{
		tasks:    make(map[string]*entry),
		capacity: capacity,
		log:      log,
	}
}

// newTaskID returns a 12-character hex identifier. Uniqueness within the
// registry is re-checked under the lock on the (vanishingly unlikely)
// chance of a collision with a record still held.
func newTaskID() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failure means the process is in serious trouble,
		// but a timestamp id keeps the registry functional.
		return fmt.Sprintf("%012x", time.Now().UnixNano()&0xffffffffffff)
	}
	return hex.EncodeToString(b[:])
}

// Create registers a new task in the pending state and returns its
// snapshot. The cancel function is invoked when cancellation is requested,
// firing the task's context for cooperating operations.
func (r *Registry) Create(tool string, category Category, cancel context.CancelFunc) Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := newTaskID()
	for {
		if _, exists := r.tasks[id]; !exists {
			break
		}
		id = newTaskID()
	}

	e := &entry{
		Record: Record{
			ID:        id,
			Tool:      tool,
			Category:  category,
			Status:    StatusPending,
			CreatedAt: time.Now(),
		},
		cancel: cancel,
	}
	r.tasks[id] = e
	r.order = append(r.order, id)
	r.evictLocked()

	return e.Record
}

// Get returns a snapshot of the task with the given id.
func (r *Registry) Get(id string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", errors.ErrTaskNotFound, id)
	}
	return e.Record, nil
}

// MarkRunning transitions a pending task to running. The cancel-requested
// flag is re-checked atomically with the transition: if cancellation raced
// ahead while the task was queued at the gate, the task transitions to
// cancelled instead and ErrCancelled is returned, guaranteeing the
// operation is never invoked.
func (r *Registry) MarkRunning(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrTaskNotFound, id)
	}
	if e.Status != StatusPending {
		return fmt.Errorf("%w: cannot transition %s from %s to running", errors.ErrInvalidTransition, id, e.Status)
	}
	if e.CancelRequested {
		now := time.Now()
		e.Status = StatusCancelled
		e.CompletedAt = &now
		r.evictLocked()
		return fmt.Errorf("%w: %s", errors.ErrCancelled, id)
	}
	now := time.Now()
	e.Status = StatusRunning
	e.StartedAt = &now
	return nil
}

// MarkSucceeded transitions a running task to succeeded with its result.
func (r *Registry) MarkSucceeded(id, result string) error {
	return r.finish(id, StatusSucceeded, func(e *entry) {
		e.Result = result
	})
}

// MarkFailed transitions a running task to failed with a structured
// error description.
func (r *Registry) MarkFailed(id, errMsg string) error {
	return r.finish(id, StatusFailed, func(e *entry) {
		e.Error = errMsg
	})
}

// MarkCancelled transitions a pending or running task to cancelled.
func (r *Registry) MarkCancelled(id string) error {
	return r.finish(id, StatusCancelled, nil)
}

// finish performs a terminal transition under the shared critical section.
func (r *Registry) finish(id string, terminal Status, apply func(*entry)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrTaskNotFound, id)
	}
	if e.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot transition %s from %s to %s", errors.ErrInvalidTransition, id, e.Status, terminal)
	}
	if terminal != StatusCancelled && e.Status != StatusRunning {
		return fmt.Errorf("%w: cannot transition %s from %s to %s", errors.ErrInvalidTransition, id, e.Status, terminal)
	}
	now := time.Now()
	e.Status = terminal
	e.CompletedAt = &now
	if apply != nil {
		apply(e)
	}
	r.evictLocked()
	return nil
}

// RequestCancel requests cancellation of a task. For a pending task the
// executor's pre-start and admit-race checks short-circuit it to cancelled
// without ever invoking the operation. For a running task the flag is
// advisory: the task's context fires, and the operation may honor it or
// complete normally. A task already in a terminal state cannot be
// cancelled.
func (r *Registry) RequestCancel(id string) error {
	r.mu.Lock()
	e, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", errors.ErrTaskNotFound, id)
	}
	if e.Status.IsTerminal() {
		status := e.Status
		r.mu.Unlock()
		return fmt.Errorf("%w: task %s is already %s", errors.ErrAlreadyTerminal, id, status)
	}
	e.CancelRequested = true
	cancel := e.cancel
	r.mu.Unlock()

	// Fire the task context outside the critical section: cancel wakes
	// goroutines that may immediately call back into the registry.
	if cancel != nil {
		cancel()
	}
	r.log.Info("task cancellation requested", "task_id", id)
	return nil
}

// Active returns snapshots of all pending and running tasks, ordered by
// creation time ascending (oldest submitted first).
func (r *Registry) Active() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	var active []Record
	for _, id := range r.order {
		e := r.tasks[id]
		if !e.Status.IsTerminal() {
			active = append(active, e.Record)
		}
	}
	return active
}

// Recent returns up to n terminal records, newest first. A non-positive n
// returns the full retained history.
func (r *Registry) Recent(n int) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	var terminal []Record
	for _, id := range r.order {
		e := r.tasks[id]
		if e.Status.IsTerminal() {
			terminal = append(terminal, e.Record)
		}
	}
	sort.Slice(terminal, func(i, j int) bool {
		return terminal[i].CreatedAt.After(terminal[j].CreatedAt)
	})
	if n > 0 && len(terminal) > n {
		terminal = terminal[:n]
	}
	return terminal
}

// Stats returns a snapshot of current state counts.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s Stats
	s.Total = len(r.tasks)
	for _, e := range r.tasks {
		switch e.Status {
		case StatusPending:
			s.Pending++
		case StatusRunning:
			s.Running++
		case StatusSucceeded:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		case StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

// evictLocked removes the oldest terminal records beyond the retained
// history capacity. The caller must hold the mutex.
func (r *Registry) evictLocked() {
	terminal := 0
	for _, e := range r.tasks {
		if e.Status.IsTerminal() {
			terminal++
		}
	}
	if terminal <= r.capacity {
		return
	}

	// order is creation-ascending, so scanning from the front drops the
	// oldest terminal records first.
	kept := r.order[:0]
	for _, id := range r.order {
		e := r.tasks[id]
		if terminal > r.capacity && e.Status.IsTerminal() {
			delete(r.tasks, id)
			terminal--
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}
