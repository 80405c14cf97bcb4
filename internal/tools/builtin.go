package tools

import (
	"time"

	"github.com/dddabtc/winremote-mcp/internal/taskgate"
)

// BuiltinOptions configures the builtin tool set.
type BuiltinOptions struct {
	// ShellTimeout is the default maximum runtime for one shell command.
	ShellTimeout time.Duration
	// AllowedPaths are glob patterns restricting file tool access.
	AllowedPaths []string
}

// RegisterBuiltins registers the builtin tools with the registry.
// Host-specific desktop input synthesis (pointer, keyboard, screen
// capture) is supplied by platform-specific callers through the same
// Register path; only the portable subset is built in.
func RegisterBuiltins(reg *Registry, opts BuiltinOptions) error {
	if opts.ShellTimeout <= 0 {
		opts.ShellTimeout = 30 * time.Second
	}

	policy, err := NewPathPolicy(opts.AllowedPaths)
	if err != nil {
		return err
	}
	files := &fileTools{policy: policy}
	shell := &shellTool{timeout: opts.ShellTimeout}

	builtins := []Tool{
		{
			Name:        "Wait",
			Category:    taskgate.CategoryDesktop,
			Tier:        Tier1,
			Description: "Hold the exclusive desktop slot for N seconds",
			Handler:     wait,
		},
		{
			Name:        "FileRead",
			Category:    taskgate.CategoryFile,
			Tier:        Tier3,
			Description: "Read a file's contents",
			Handler:     files.read,
		},
		{
			Name:        "FileWrite",
			Category:    taskgate.CategoryFile,
			Tier:        Tier3,
			Description: "Write or append to a file",
			Handler:     files.write,
		},
		{
			Name:        "FileList",
			Category:    taskgate.CategoryFile,
			Tier:        Tier1,
			Description: "List a directory",
			Handler:     files.list,
		},
		{
			Name:        "FileSearch",
			Category:    taskgate.CategoryFile,
			Tier:        Tier1,
			Description: "Search for files by name pattern",
			Handler:     files.search,
		},
		{
			Name:        "GetSystemInfo",
			Category:    taskgate.CategoryQuery,
			Tier:        Tier1,
			Description: "Report host and server process information",
			Handler:     getSystemInfo,
		},
		{
			Name:        "ListProcesses",
			Category:    taskgate.CategoryQuery,
			Tier:        Tier1,
			Description: "List running processes",
			Handler:     listProcesses,
		},
		{
			Name:        "Shell",
			Category:    taskgate.CategoryShell,
			Tier:        Tier3,
			Description: "Execute a shell command with a timeout",
			Handler:     shell.run,
		},
		{
			Name:        "Ping",
			Category:    taskgate.CategoryNetwork,
			Tier:        Tier1,
			Description: "Ping a host",
			Handler:     ping,
		},
		{
			Name:        "PortCheck",
			Category:    taskgate.CategoryNetwork,
			Tier:        Tier1,
			Description: "Check whether a TCP port is open",
			Handler:     portCheck,
		},
	}

	for _, t := range builtins {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}
