package taskgate

import (
	"context"
	"fmt"

	"github.com/dddabtc/winremote-mcp/internal/errors"
)

// Gate enforces the maximum number of concurrently running tasks per
// category using one bounded semaphore per category. Acquire is the sole
// suspension point in the execution core: callers block there until a
// slot frees or their task's context fires.
type Gate struct {
	slots  map[Category]chan struct{}
	limits map[Category]int
}

// NewGate creates a Gate from the given per-category ceilings. Every known
// category must have a ceiling of at least 1; a missing, zero, or negative
// ceiling is a misconfiguration and a fatal startup error, not a runtime
// condition.
func NewGate(limits map[Category]int) (*Gate, error) {
	g := &Gate{
		slots:  make(map[Category]chan struct{}, len(limits)),
		limits: make(map[Category]int, len(limits)),
	}
	for cat, limit := range limits {
		if !cat.Valid() {
			return nil, fmt.Errorf("%w: %q", errors.ErrUnknownCategory, cat)
		}
		if limit < 1 {
			return nil, fmt.Errorf("%w: category %s has invalid concurrency limit %d", errors.ErrInvalidInput, cat, limit)
		}
		g.slots[cat] = make(chan struct{}, limit)
		g.limits[cat] = limit
	}
	for _, cat := range Categories() {
		if _, ok := g.slots[cat]; !ok {
			return nil, fmt.Errorf("%w: category %s has no concurrency limit configured", errors.ErrInvalidInput, cat)
		}
	}
	return g, nil
}

// Acquire blocks until a slot is available in the category or ctx fires,
// in which case it returns ErrCancelled and the caller must not invoke
// the operation. An unrecognized category is rejected immediately.
func (g *Gate) Acquire(ctx context.Context, category Category) error {
	slot, ok := g.slots[category]
	if !ok {
		return fmt.Errorf("%w: %q", errors.ErrUnknownCategory, category)
	}
	select {
	case slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: while waiting for %s slot", errors.ErrCancelled, category)
	}
}

// Release returns a slot to the category. It must be called exactly once
// per successful Acquire; the executor does this via defer so release
// happens on every exit path.
func (g *Gate) Release(category Category) {
	slot, ok := g.slots[category]
	if !ok {
		return
	}
	select {
	case <-slot:
	default:
		// Release without a matching Acquire indicates a bug in the
		// caller rather than a recoverable condition.
		panic(fmt.Sprintf("taskgate: release of %s slot that was never acquired", category))
	}
}

// Admits reports whether the gate has a semaphore for the category.
func (g *Gate) Admits(category Category) bool {
	_, ok := g.slots[category]
	return ok
}

// Limit returns the configured ceiling for the category, or 0 if the
// category is unknown.
func (g *Gate) Limit(category Category) int {
	return g.limits[category]
}

// InUse returns the number of currently held slots for the category.
func (g *Gate) InUse(category Category) int {
	slot, ok := g.slots[category]
	if !ok {
		return 0
	}
	return len(slot)
}
