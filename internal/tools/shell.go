package tools

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// shellTool runs one command through the platform shell. The timeout is
// enforced here, layered above the execution core; cancelling the task
// fires the context, which kills the subprocess.
type shellTool struct {
	timeout time.Duration
}

func (s *shellTool) run(ctx context.Context, args map[string]any) (string, error) {
	command, err := stringArg(args, "command", true)
	if err != nil {
		return "", err
	}
	cwd, err := stringArg(args, "cwd", false)
	if err != nil {
		return "", err
	}
	timeoutSec, err := intArg(args, "timeout", int(s.timeout.Seconds()))
	if err != nil {
		return "", err
	}

	timeout := time.Duration(timeoutSec) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := shellCommand(runCtx, command)
	if cwd != "" {
		cmd.Dir = cwd
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("Command timed out after %s", timeout), nil
	}
	if ctx.Err() != nil {
		// Task cancellation killed the subprocess.
		return "", ctx.Err()
	}

	output := stdout.String()
	if stderr.Len() > 0 {
		output += fmt.Sprintf("\n[STDERR] %s", stderr.String())
	}
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			output += fmt.Sprintf("\n[Exit code: %d]", exitErr.ExitCode())
		} else {
			return "", fmt.Errorf("shell: %w", runErr)
		}
	}

	output = strings.TrimSpace(output)
	if output == "" {
		return "(no output)", nil
	}
	return output, nil
}

// shellCommand builds the platform shell invocation.
func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}
