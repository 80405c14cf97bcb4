package tools

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// ping shells out to the system ping utility, matching its behavior on
// every platform rather than reimplementing ICMP (which needs raw socket
// privileges).
func ping(ctx context.Context, args map[string]any) (string, error) {
	host, err := stringArg(args, "host", true)
	if err != nil {
		return "", err
	}
	count, err := intArg(args, "count", 4)
	if err != nil {
		return "", err
	}
	if count < 1 || count > 20 {
		count = 4
	}

	deadline := time.Duration(count*5+10) * time.Second
	pingCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	countFlag := "-c"
	if runtime.GOOS == "windows" {
		countFlag = "-n"
	}
	cmd := exec.CommandContext(pingCtx, "ping", countFlag, strconv.Itoa(count), host)

	out, runErr := cmd.CombinedOutput()
	if pingCtx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("Ping timed out after %s", deadline), nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		if runErr != nil {
			return "", fmt.Errorf("ping: %w", runErr)
		}
		return "(no output)", nil
	}
	return text, nil
}

// portCheck attempts a TCP connection to host:port.
func portCheck(ctx context.Context, args map[string]any) (string, error) {
	host, err := stringArg(args, "host", true)
	if err != nil {
		return "", err
	}
	port, err := intArg(args, "port", 0)
	if err != nil {
		return "", err
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	timeoutSec, err := floatArg(args, "timeout", 5.0)
	if err != nil {
		return "", err
	}

	dialer := net.Dialer{Timeout: time.Duration(timeoutSec * float64(time.Second))}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	conn, dialErr := dialer.DialContext(ctx, "tcp", addr)
	if dialErr != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return fmt.Sprintf("Port %d on %s is CLOSED (%v)", port, host, dialErr), nil
	}
	conn.Close()
	return fmt.Sprintf("Port %d on %s is OPEN", port, host), nil
}
