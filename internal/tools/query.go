package tools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

var processStart = time.Now()

// getSystemInfo reports basic host and process facts.
func getSystemInfo(_ context.Context, _ map[string]any) (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "(unknown)"
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = "(unknown)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hostname: %s\n", hostname)
	fmt.Fprintf(&sb, "OS: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&sb, "CPUs: %d\n", runtime.NumCPU())
	fmt.Fprintf(&sb, "Go: %s\n", runtime.Version())
	fmt.Fprintf(&sb, "PID: %d\n", os.Getpid())
	fmt.Fprintf(&sb, "Working dir: %s\n", wd)
	fmt.Fprintf(&sb, "Server uptime: %s", time.Since(processStart).Round(time.Second))
	return sb.String(), nil
}

// listProcesses shells out to the platform process lister. Filtering and
// the result limit are applied to its output lines.
func listProcesses(ctx context.Context, args map[string]any) (string, error) {
	filter, err := stringArg(args, "filter", false)
	if err != nil {
		return "", err
	}
	limit, err := intArg(args, "limit", 50)
	if err != nil {
		return "", err
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "tasklist")
	} else {
		cmd = exec.CommandContext(ctx, "ps", "axo", "pid,pcpu,pmem,comm")
	}

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("list processes: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	var kept []string
	for i, line := range lines {
		if i == 0 {
			kept = append(kept, line) // header
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(line), strings.ToLower(filter)) {
			continue
		}
		kept = append(kept, line)
		if len(kept) > limit {
			break
		}
	}
	return strings.Join(kept, "\n"), nil
}
