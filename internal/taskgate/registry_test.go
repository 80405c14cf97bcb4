package taskgate

import (
	"testing"

	"github.com/dddabtc/winremote-mcp/internal/errors"
)

func newTestRegistry(capacity int) *Registry {
	return NewRegistry(capacity, nil)
}

func TestCreateAndGet(t *testing.T) {
	r := newTestRegistry(10)
	rec := r.Create("Shell", CategoryShell, nil)

	if rec.ID == "" {
		t.Fatal("expected non-empty task id")
	}
	if rec.Status != StatusPending {
		t.Fatalf("expected pending, got %s", rec.Status)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	got, err := r.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Tool != "Shell" || got.Category != CategoryShell {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestGetUnknownID(t *testing.T) {
	r := newTestRegistry(10)
	_, err := r.Get("nope")
	if !errors.Is(err, errors.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestUniqueIDs(t *testing.T) {
	r := newTestRegistry(1000)
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		rec := r.Create("Wait", CategoryDesktop, nil)
		if seen[rec.ID] {
			t.Fatalf("duplicate id %s", rec.ID)
		}
		seen[rec.ID] = true
	}
}

func TestLifecycleTransitions(t *testing.T) {
	r := newTestRegistry(10)
	rec := r.Create("FileRead", CategoryFile, nil)

	if err := r.MarkRunning(rec.ID); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}
	got, _ := r.Get(rec.ID)
	if got.Status != StatusRunning {
		t.Fatalf("expected running, got %s", got.Status)
	}
	if got.StartedAt == nil {
		t.Fatal("expected started_at to be set")
	}

	if err := r.MarkSucceeded(rec.ID, "ok"); err != nil {
		t.Fatalf("MarkSucceeded failed: %v", err)
	}
	got, _ = r.Get(rec.ID)
	if got.Status != StatusSucceeded || got.Result != "ok" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	r := newTestRegistry(10)
	rec := r.Create("Shell", CategoryShell, nil)
	_ = r.MarkRunning(rec.ID)
	_ = r.MarkFailed(rec.ID, "boom")

	if err := r.MarkSucceeded(rec.ID, "late"); !errors.Is(err, errors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := r.MarkRunning(rec.ID); !errors.Is(err, errors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, _ := r.Get(rec.ID)
	if got.Status != StatusFailed || got.Error != "boom" {
		t.Fatalf("terminal state mutated: %+v", got)
	}
}

func TestSucceedRequiresRunning(t *testing.T) {
	r := newTestRegistry(10)
	rec := r.Create("Ping", CategoryNetwork, nil)
	if err := r.MarkSucceeded(rec.ID, "x"); !errors.Is(err, errors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for pending->succeeded, got %v", err)
	}
}

func TestMarkRunningAfterCancelRequest(t *testing.T) {
	r := newTestRegistry(10)
	rec := r.Create("Shell", CategoryShell, nil)

	if err := r.RequestCancel(rec.ID); err != nil {
		t.Fatalf("RequestCancel failed: %v", err)
	}
	err := r.MarkRunning(rec.ID)
	if !errors.Is(err, errors.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}

	got, _ := r.Get(rec.ID)
	if got.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
	if got.StartedAt != nil {
		t.Fatal("cancelled-before-start task must not have started_at")
	}
}

func TestRequestCancelFiresContext(t *testing.T) {
	r := newTestRegistry(10)
	fired := false
	rec := r.Create("Wait", CategoryDesktop, func() { fired = true })
	_ = r.MarkRunning(rec.ID)

	if err := r.RequestCancel(rec.ID); err != nil {
		t.Fatalf("RequestCancel failed: %v", err)
	}
	if !fired {
		t.Fatal("expected cancel func to fire")
	}

	got, _ := r.Get(rec.ID)
	if !got.CancelRequested {
		t.Fatal("expected cancel_requested flag")
	}
	if got.Status != StatusRunning {
		t.Fatalf("cancel request must not force a state change, got %s", got.Status)
	}
}

func TestRequestCancelTerminal(t *testing.T) {
	r := newTestRegistry(10)
	rec := r.Create("Shell", CategoryShell, nil)
	_ = r.MarkRunning(rec.ID)
	_ = r.MarkSucceeded(rec.ID, "done")

	err := r.RequestCancel(rec.ID)
	if !errors.Is(err, errors.ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
	}
}

func TestRequestCancelUnknown(t *testing.T) {
	r := newTestRegistry(10)
	if err := r.RequestCancel("missing"); !errors.Is(err, errors.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestActiveExcludesTerminal(t *testing.T) {
	r := newTestRegistry(10)
	a := r.Create("Shell", CategoryShell, nil)
	b := r.Create("Ping", CategoryNetwork, nil)
	c := r.Create("Wait", CategoryDesktop, nil)

	_ = r.MarkRunning(b.ID)
	_ = r.MarkRunning(c.ID)
	_ = r.MarkSucceeded(c.ID, "done")

	active := r.Active()
	if len(active) != 2 {
		t.Fatalf("expected 2 active, got %d", len(active))
	}
	// Creation order ascending.
	if active[0].ID != a.ID || active[1].ID != b.ID {
		t.Fatalf("unexpected order: %s, %s", active[0].ID, active[1].ID)
	}
	for _, rec := range active {
		if rec.Status.IsTerminal() {
			t.Fatalf("active returned terminal record %s", rec.ID)
		}
	}
}

func TestRecentNewestFirst(t *testing.T) {
	r := newTestRegistry(10)
	var ids []string
	for i := 0; i < 3; i++ {
		rec := r.Create("Shell", CategoryShell, nil)
		_ = r.MarkRunning(rec.ID)
		_ = r.MarkSucceeded(rec.ID, "ok")
		ids = append(ids, rec.ID)
	}

	recent := r.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recent))
	}
	if recent[0].ID != ids[2] || recent[2].ID != ids[0] {
		t.Fatal("expected newest-first ordering")
	}

	limited := r.Recent(2)
	if len(limited) != 2 {
		t.Fatalf("expected 2 records, got %d", len(limited))
	}
}

func TestHistoryEviction(t *testing.T) {
	r := newTestRegistry(3)
	var ids []string
	for i := 0; i < 5; i++ {
		rec := r.Create("Shell", CategoryShell, nil)
		_ = r.MarkRunning(rec.ID)
		_ = r.MarkSucceeded(rec.ID, "ok")
		ids = append(ids, rec.ID)
	}

	recent := r.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("expected exactly 3 retained, got %d", len(recent))
	}
	// Oldest two evicted.
	for _, id := range ids[:2] {
		if _, err := r.Get(id); !errors.Is(err, errors.ErrTaskNotFound) {
			t.Fatalf("expected %s evicted, got %v", id, err)
		}
	}
	for _, id := range ids[2:] {
		if _, err := r.Get(id); err != nil {
			t.Fatalf("expected %s retained: %v", id, err)
		}
	}
}

func TestEvictionSkipsActive(t *testing.T) {
	r := newTestRegistry(2)
	// An old task that never finishes.
	pinned := r.Create("Wait", CategoryDesktop, nil)

	for i := 0; i < 5; i++ {
		rec := r.Create("Shell", CategoryShell, nil)
		_ = r.MarkRunning(rec.ID)
		_ = r.MarkSucceeded(rec.ID, "ok")
	}

	if _, err := r.Get(pinned.ID); err != nil {
		t.Fatalf("active task must never be evicted: %v", err)
	}
	if got := len(r.Recent(0)); got != 2 {
		t.Fatalf("expected 2 terminal records, got %d", got)
	}
}

func TestStats(t *testing.T) {
	r := newTestRegistry(10)
	a := r.Create("Shell", CategoryShell, nil)
	b := r.Create("Ping", CategoryNetwork, nil)
	r.Create("Wait", CategoryDesktop, nil)

	_ = r.MarkRunning(a.ID)
	_ = r.MarkRunning(b.ID)
	_ = r.MarkFailed(b.ID, "boom")

	s := r.Stats()
	if s.Total != 3 || s.Pending != 1 || s.Running != 1 || s.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}
