//go:build !windows

package tools

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestShellRun(t *testing.T) {
	s := &shellTool{timeout: 10 * time.Second}
	out, err := s.run(context.Background(), map[string]any{"command": "echo hello"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "hello" {
		t.Errorf("output = %q, want hello", out)
	}
}

func TestShellExitCode(t *testing.T) {
	s := &shellTool{timeout: 10 * time.Second}
	out, err := s.run(context.Background(), map[string]any{"command": "echo oops >&2; exit 3"})
	if err != nil {
		t.Fatalf("non-zero exit should not be a handler error: %v", err)
	}
	if !strings.Contains(out, "[STDERR] oops") {
		t.Errorf("stderr missing: %q", out)
	}
	if !strings.Contains(out, "[Exit code: 3]") {
		t.Errorf("exit code missing: %q", out)
	}
}

func TestShellCwd(t *testing.T) {
	dir := t.TempDir()
	s := &shellTool{timeout: 10 * time.Second}
	out, err := s.run(context.Background(), map[string]any{"command": "pwd", "cwd": dir})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, dir) {
		t.Errorf("pwd = %q, want %q", out, dir)
	}
}

func TestShellTimeout(t *testing.T) {
	s := &shellTool{timeout: 10 * time.Second}
	out, err := s.run(context.Background(), map[string]any{"command": "sleep 5", "timeout": 1})
	if err != nil {
		t.Fatalf("timeout should produce a result, not an error: %v", err)
	}
	if !strings.Contains(out, "timed out") {
		t.Errorf("expected timeout message, got %q", out)
	}
}

func TestShellCancellation(t *testing.T) {
	s := &shellTool{timeout: 30 * time.Second}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := s.run(ctx, map[string]any{"command": "sleep 10"})
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("cancelled shell command should return the context error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancellation did not stop the command")
	}
}

func TestShellEmptyOutput(t *testing.T) {
	s := &shellTool{timeout: 10 * time.Second}
	out, err := s.run(context.Background(), map[string]any{"command": "true"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "(no output)" {
		t.Errorf("output = %q, want (no output)", out)
	}
}
