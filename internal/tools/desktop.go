package tools

import (
	"context"
	"fmt"
	"time"
)

// wait sleeps for the requested number of seconds. It runs in the desktop
// category, so it holds the exclusive desktop slot for its duration, the
// same way a pointer or keyboard sequence would. Waiting honors task
// cancellation.
func wait(ctx context.Context, args map[string]any) (string, error) {
	seconds, err := floatArg(args, "seconds", 1.0)
	if err != nil {
		return "", err
	}
	if seconds < 0 || seconds > 300 {
		return "", fmt.Errorf("seconds must be between 0 and 300, got %v", seconds)
	}

	select {
	case <-time.After(time.Duration(seconds * float64(time.Second))):
		return fmt.Sprintf("Waited %gs", seconds), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
