// Package tools defines the tool abstraction, the registry the server
// dispatches through, tier-based enablement, and the portable builtin
// tool set.
package tools

import (
	"context"

	"github.com/dddabtc/winremote-mcp/internal/taskgate"
)

// Handler executes a tool with the given arguments. Handlers receive the
// task's context: cooperative tools honor it on cancellation, while thin
// wrappers around atomic calls are free to ignore it.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Tool is one exposed capability: a name, the concurrency category that
// gates it, the security tier that controls whether it is enabled, and
// the handler that does the work.
type Tool struct {
	Name        string
	Category    taskgate.Category
	Tier        Tier
	Description string
	Handler     Handler
}

// Tier classifies a tool by risk level for access control.
type Tier string

const (
	// Tier1 tools are read-only: low risk, enabled by default.
	Tier1 Tier = "tier1"

	// Tier2 tools are interactive: medium risk, enabled by default.
	Tier2 Tier = "tier2"

	// Tier3 tools are destructive: high risk, disabled by default.
	Tier3 Tier = "tier3"
)
