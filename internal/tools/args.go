package tools

import (
	"fmt"
	"strconv"

	"github.com/dddabtc/winremote-mcp/internal/errors"
)

// Argument extraction helpers. Request payloads arrive as loosely typed
// JSON, so numeric arguments may decode as float64 and booleans as
// strings depending on the caller.

func stringArg(args map[string]any, key string, required bool) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%w: missing required argument %q", errors.ErrInvalidInput, key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %q must be a string", errors.ErrInvalidInput, key)
	}
	if required && s == "" {
		return "", fmt.Errorf("%w: argument %q cannot be empty", errors.ErrInvalidInput, key)
	}
	return s, nil
}

func intArg(args map[string]any, key string, fallback int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%w: argument %q must be an integer", errors.ErrInvalidInput, key)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("%w: argument %q must be an integer", errors.ErrInvalidInput, key)
	}
}

func floatArg(args map[string]any, key string, fallback float64) (float64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: argument %q must be a number", errors.ErrInvalidInput, key)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("%w: argument %q must be a number", errors.ErrInvalidInput, key)
	}
}

func boolArg(args map[string]any, key string, fallback bool) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch b {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no", "":
			return false, nil
		}
		return false, fmt.Errorf("%w: argument %q must be a boolean", errors.ErrInvalidInput, key)
	default:
		return false, fmt.Errorf("%w: argument %q must be a boolean", errors.ErrInvalidInput, key)
	}
}
