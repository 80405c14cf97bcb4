package taskgate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dddabtc/winremote-mcp/internal/errors"
)

func newTestExecutor(t *testing.T, capacity int, limits map[Category]int) (*Executor, *Registry) {
	t.Helper()
	reg := NewRegistry(capacity, nil)
	gate, err := NewGate(limits)
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}
	return NewExecutor(reg, gate, nil), reg
}

func TestSubmitSuccess(t *testing.T) {
	e, reg := newTestExecutor(t, 10, testLimits())

	out := e.Submit(context.Background(), "Shell", CategoryShell, func(ctx context.Context) (string, error) {
		return "hello", nil
	})
	if !out.Success || out.Result != "hello" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.TaskID == "" {
		t.Fatal("expected task id in outcome")
	}

	rec, err := reg.Get(out.TaskID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Status != StatusSucceeded {
		t.Fatalf("expected succeeded, got %s", rec.Status)
	}
}

func TestSubmitFailure(t *testing.T) {
	e, reg := newTestExecutor(t, 10, testLimits())

	out := e.Submit(context.Background(), "Shell", CategoryShell, func(ctx context.Context) (string, error) {
		return "", fmt.Errorf("command exited 1")
	})
	if out.Success {
		t.Fatal("expected failure outcome")
	}
	if out.Error != "command exited 1" {
		t.Fatalf("unexpected error: %q", out.Error)
	}

	rec, _ := reg.Get(out.TaskID)
	if rec.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", rec.Status)
	}
}

func TestSubmitPanicCaptured(t *testing.T) {
	e, reg := newTestExecutor(t, 10, testLimits())

	out := e.Submit(context.Background(), "Shell", CategoryShell, func(ctx context.Context) (string, error) {
		panic("tool blew up")
	})
	if out.Success {
		t.Fatal("expected failure outcome from panic")
	}
	rec, _ := reg.Get(out.TaskID)
	if rec.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", rec.Status)
	}

	// The executor must stay usable after a panic.
	out = e.Submit(context.Background(), "Shell", CategoryShell, func(ctx context.Context) (string, error) {
		return "fine", nil
	})
	if !out.Success {
		t.Fatalf("executor unusable after panic: %+v", out)
	}
}

func TestSubmitUnknownCategory(t *testing.T) {
	e, _ := newTestExecutor(t, 10, testLimits())

	invoked := false
	out := e.Submit(context.Background(), "Weird", Category("gpu"), func(ctx context.Context) (string, error) {
		invoked = true
		return "", nil
	})
	if out.Success {
		t.Fatal("expected rejection")
	}
	if out.TaskID != "" {
		t.Fatal("rejected submission must not create a record")
	}
	if invoked {
		t.Fatal("rejected submission must not invoke the operation")
	}
}

func TestCeilingEnforced(t *testing.T) {
	limits := testLimits()
	limits[CategoryShell] = 2
	e, _ := newTestExecutor(t, 100, limits)

	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Submit(context.Background(), "Shell", CategoryShell, func(ctx context.Context) (string, error) {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return "", nil
			})
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&peak); got > 2 {
		t.Fatalf("shell ceiling 2 breached: peak %d", got)
	}
}

func TestQueryConcurrency(t *testing.T) {
	e, _ := newTestExecutor(t, 100, testLimits())

	// Five query tasks rendezvous: all must run at once under ceiling 5.
	var mu sync.Mutex
	cond := sync.NewCond(&mu)
	arrived := 0

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := e.Submit(context.Background(), "GetSystemInfo", CategoryQuery, func(ctx context.Context) (string, error) {
				mu.Lock()
				arrived++
				if arrived == 5 {
					cond.Broadcast()
				}
				for arrived < 5 {
					cond.Wait()
				}
				mu.Unlock()
				return "", nil
			})
			if !out.Success {
				t.Errorf("query task failed: %+v", out)
			}
		}()
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("five query tasks did not run concurrently")
	}
}

func TestDesktopSerialized(t *testing.T) {
	e, _ := newTestExecutor(t, 100, testLimits())

	var running, peak int32
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Submit(context.Background(), "Wait", CategoryDesktop, func(ctx context.Context) (string, error) {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(30 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return "", nil
			})
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&peak); got != 1 {
		t.Fatalf("desktop tasks overlapped: peak %d", got)
	}
	// Three serialized 30ms holds cannot complete in under 90ms.
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("desktop tasks finished too fast to be serialized: %s", elapsed)
	}
}

func TestCancelPendingNeverInvokes(t *testing.T) {
	limits := testLimits()
	limits[CategoryDesktop] = 1
	e, reg := newTestExecutor(t, 100, limits)

	holding := make(chan string, 1)
	release := make(chan struct{})
	go e.Submit(context.Background(), "Wait", CategoryDesktop, func(ctx context.Context) (string, error) {
		holding <- "held"
		<-release
		return "", nil
	})
	<-holding

	// Second desktop task queues behind the first.
	var invoked atomic.Bool
	outcome := make(chan Outcome, 1)
	go func() {
		outcome <- e.Submit(context.Background(), "Wait", CategoryDesktop, func(ctx context.Context) (string, error) {
			invoked.Store(true)
			return "", nil
		})
	}()

	// Wait for the queued task's record to appear, then cancel it.
	var queuedID string
	deadline := time.Now().Add(2 * time.Second)
	for queuedID == "" {
		if time.Now().After(deadline) {
			t.Fatal("queued task never appeared in the registry")
		}
		for _, rec := range reg.Active() {
			if rec.Status == StatusPending {
				queuedID = rec.ID
			}
		}
		time.Sleep(time.Millisecond)
	}
	if err := reg.RequestCancel(queuedID); err != nil {
		t.Fatalf("RequestCancel failed: %v", err)
	}

	out := <-outcome
	close(release)

	if out.Success {
		t.Fatal("cancelled task reported success")
	}
	if invoked.Load() {
		t.Fatal("operation ran despite pre-start cancellation")
	}
	rec, _ := reg.Get(queuedID)
	if rec.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", rec.Status)
	}
	if rec.StartedAt != nil {
		t.Fatal("cancelled-before-start task must not have started_at")
	}
}

func TestCooperativeCancelDuringRun(t *testing.T) {
	e, reg := newTestExecutor(t, 100, testLimits())

	started := make(chan string, 1)
	outcome := make(chan Outcome, 1)
	go func() {
		outcome <- e.Submit(context.Background(), "Wait", CategoryDesktop, func(ctx context.Context) (string, error) {
			started <- "go"
			<-ctx.Done()
			return "", ctx.Err()
		})
	}()
	<-started

	var id string
	for _, rec := range reg.Active() {
		if rec.Status == StatusRunning {
			id = rec.ID
		}
	}
	if id == "" {
		t.Fatal("running task not visible in registry")
	}
	if err := reg.RequestCancel(id); err != nil {
		t.Fatalf("RequestCancel failed: %v", err)
	}

	select {
	case out := <-outcome:
		if out.Success {
			t.Fatal("cancelled task reported success")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cooperative cancellation did not end the task")
	}

	rec, _ := reg.Get(id)
	if rec.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", rec.Status)
	}
}

func TestCancelIgnoredCompletesNormally(t *testing.T) {
	e, reg := newTestExecutor(t, 100, testLimits())

	started := make(chan string, 1)
	proceed := make(chan struct{})
	outcome := make(chan Outcome, 1)
	go func() {
		outcome <- e.Submit(context.Background(), "Shell", CategoryShell, func(ctx context.Context) (string, error) {
			started <- "go"
			<-proceed
			return "done anyway", nil
		})
	}()
	<-started

	var id string
	for _, rec := range reg.Active() {
		id = rec.ID
	}
	_ = reg.RequestCancel(id)
	close(proceed)

	out := <-outcome
	if !out.Success || out.Result != "done anyway" {
		t.Fatalf("non-cooperating op should complete normally: %+v", out)
	}
	rec, _ := reg.Get(id)
	if rec.Status != StatusSucceeded {
		t.Fatalf("expected succeeded, got %s", rec.Status)
	}
	if !rec.CancelRequested {
		t.Fatal("cancel_requested flag should survive normal completion")
	}
}

func TestSlotReleasedAfterPanic(t *testing.T) {
	limits := testLimits()
	limits[CategoryShell] = 1
	e, _ := newTestExecutor(t, 100, limits)

	e.Submit(context.Background(), "Shell", CategoryShell, func(ctx context.Context) (string, error) {
		panic("boom")
	})

	// Slot must be free again.
	done := make(chan Outcome, 1)
	go func() {
		done <- e.Submit(context.Background(), "Shell", CategoryShell, func(ctx context.Context) (string, error) {
			return "ok", nil
		})
	}()
	select {
	case out := <-done:
		if !out.Success {
			t.Fatalf("unexpected outcome: %+v", out)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("slot leaked after panic")
	}
}

func TestExecutorCancelDelegates(t *testing.T) {
	e, _ := newTestExecutor(t, 10, testLimits())
	if err := e.Cancel("missing"); !errors.Is(err, errors.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestReporterViews(t *testing.T) {
	e, reg := newTestExecutor(t, 10, testLimits())
	rep := NewReporter(reg)

	out := e.Submit(context.Background(), "Shell", CategoryShell, func(ctx context.Context) (string, error) {
		return "ok", nil
	})

	rec, err := rep.GetTaskStatus(out.TaskID)
	if err != nil || rec.Status != StatusSucceeded {
		t.Fatalf("GetTaskStatus: %v %+v", err, rec)
	}
	if len(rep.TaskHistory()) != 1 {
		t.Fatal("expected one history record")
	}
	for _, r := range rep.GetRunningTasks() {
		if r.Status.IsTerminal() {
			t.Fatalf("GetRunningTasks returned terminal record %s", r.ID)
		}
	}
	if s := rep.Stats(); s.Succeeded != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}
