package tools

// Tool tier membership, including the task control operations served by
// dedicated endpoints rather than registered handlers. Tier assignment
// follows risk: tier1 read-only, tier2 interactive, tier3 destructive.
var tierMembers = map[Tier][]string{
	Tier1: {
		"GetSystemInfo", "ListProcesses", "FileList", "FileSearch",
		"Ping", "PortCheck", "Wait",
		"GetTaskStatus", "GetRunningTasks",
	},
	Tier2: {
		"CancelTask",
	},
	Tier3: {
		"Shell", "FileRead", "FileWrite",
	},
}

// TierOptions controls which tools end up enabled.
type TierOptions struct {
	// EnableTier3 enables destructive tools. Off by default.
	EnableTier3 bool
	// DisableTier2 disables interactive tools.
	DisableTier2 bool
	// Enable is an explicit tool list that overrides tier selection.
	Enable []string
	// Exclude removes tools from the enabled set after tier selection.
	Exclude []string
}

// ResolveEnabled calculates the set of enabled tool names. An explicit
// Enable list overrides tier selection entirely; Exclude is applied last
// in either case.
func ResolveEnabled(opts TierOptions) map[string]struct{} {
	enabled := make(map[string]struct{})

	if len(opts.Enable) > 0 {
		for _, name := range opts.Enable {
			enabled[name] = struct{}{}
		}
	} else {
		for _, name := range tierMembers[Tier1] {
			enabled[name] = struct{}{}
		}
		if !opts.DisableTier2 {
			for _, name := range tierMembers[Tier2] {
				enabled[name] = struct{}{}
			}
		}
		if opts.EnableTier3 {
			for _, name := range tierMembers[Tier3] {
				enabled[name] = struct{}{}
			}
		}
	}

	for _, name := range opts.Exclude {
		delete(enabled, name)
	}

	return enabled
}

// TierOf returns the tier a tool name belongs to, or an empty string for
// unknown names.
func TierOf(name string) Tier {
	for tier, members := range tierMembers {
		for _, m := range members {
			if m == name {
				return tier
			}
		}
	}
	return ""
}
