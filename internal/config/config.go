package config

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/dddabtc/winremote-mcp/internal/taskgate"
)

// Config represents the complete winremote server configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Security SecurityConfig `mapstructure:"security"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Shell    ShellConfig    `mapstructure:"shell"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	// Host is the listen address (default: 127.0.0.1)
	Host string `mapstructure:"host"`
	// Port is the listen port (default: 8090)
	Port int `mapstructure:"port"`
	// AuthKey, when set, is required in the X-Auth-Key header of every
	// request except /health
	AuthKey string `mapstructure:"auth_key"`
}

// Addr returns the host:port listen address.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig controls client access
type SecurityConfig struct {
	// IPAllowlist restricts clients to the listed IPs and CIDR ranges.
	// An empty list allows any client.
	IPAllowlist []string `mapstructure:"ip_allowlist"`
	// EnableTier3 enables destructive tools (shell, file write, process
	// kill). Disabled by default.
	EnableTier3 bool `mapstructure:"enable_tier3"`
	// DisableTier2 disables interactive tools, leaving only read-only
	// tier1 tools enabled.
	DisableTier2 bool `mapstructure:"disable_tier2"`
}

// ParseAllowlist parses the allowlist entries into network prefixes.
// Bare IPs become single-address prefixes (/32 or /128).
func (s *SecurityConfig) ParseAllowlist() ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range s.IPAllowlist {
		p, err := parseAllowlistEntry(entry)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, p)
	}
	return prefixes, nil
}

func parseAllowlistEntry(entry string) (netip.Prefix, error) {
	if p, err := netip.ParsePrefix(entry); err == nil {
		return p, nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid allowlist entry %q: %w", entry, err)
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// ToolsConfig controls which tools are exposed
type ToolsConfig struct {
	// Enable is an explicit tool list that overrides tier selection
	Enable []string `mapstructure:"enable"`
	// Exclude removes tools from the enabled set
	Exclude []string `mapstructure:"exclude"`
	// AllowedPaths are glob patterns restricting file tool access.
	// An empty list allows any path.
	AllowedPaths []string `mapstructure:"allowed_paths"`
}

// LimitsConfig controls the task execution core
type LimitsConfig struct {
	// Per-category concurrency ceilings. Desktop must stay at 1 unless
	// you genuinely have multiple independent input streams.
	Desktop int `mapstructure:"desktop"`
	File    int `mapstructure:"file"`
	Query   int `mapstructure:"query"`
	Shell   int `mapstructure:"shell"`
	Network int `mapstructure:"network"`
	// History is the number of completed task records retained for
	// diagnostics before FIFO eviction
	History int `mapstructure:"history"`
}

// CategoryLimits returns the configured ceilings keyed by category.
func (l *LimitsConfig) CategoryLimits() map[taskgate.Category]int {
	return map[taskgate.Category]int{
		taskgate.CategoryDesktop: l.Desktop,
		taskgate.CategoryFile:    l.File,
		taskgate.CategoryQuery:   l.Query,
		taskgate.CategoryShell:   l.Shell,
		taskgate.CategoryNetwork: l.Network,
	}
}

// ShellConfig controls shell tool execution
type ShellConfig struct {
	// TimeoutSeconds is the maximum runtime of one shell command.
	// Enforced by the shell tool itself, not by the execution core.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Timeout returns the shell timeout as a time.Duration
func (s *ShellConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether file logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
	// Dir is the log directory. Empty logs to stderr.
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep
	MaxBackups int `mapstructure:"max_backups"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	limits := taskgate.DefaultLimits()
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8090,
		},
		Security: SecurityConfig{
			IPAllowlist:  []string{},
			EnableTier3:  false, // Destructive tools stay off unless asked for
			DisableTier2: false,
		},
		Tools: ToolsConfig{
			Enable:       []string{},
			Exclude:      []string{},
			AllowedPaths: []string{},
		},
		Limits: LimitsConfig{
			Desktop: limits[taskgate.CategoryDesktop],
			File:    limits[taskgate.CategoryFile],
			Query:   limits[taskgate.CategoryQuery],
			Shell:   limits[taskgate.CategoryShell],
			Network: limits[taskgate.CategoryNetwork],
			History: taskgate.DefaultHistoryCapacity,
		},
		Shell: ShellConfig{
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Server defaults
	viper.SetDefault("server.host", defaults.Server.Host)
	viper.SetDefault("server.port", defaults.Server.Port)
	viper.SetDefault("server.auth_key", defaults.Server.AuthKey)

	// Security defaults
	viper.SetDefault("security.ip_allowlist", defaults.Security.IPAllowlist)
	viper.SetDefault("security.enable_tier3", defaults.Security.EnableTier3)
	viper.SetDefault("security.disable_tier2", defaults.Security.DisableTier2)

	// Tools defaults
	viper.SetDefault("tools.enable", defaults.Tools.Enable)
	viper.SetDefault("tools.exclude", defaults.Tools.Exclude)
	viper.SetDefault("tools.allowed_paths", defaults.Tools.AllowedPaths)

	// Limits defaults
	viper.SetDefault("limits.desktop", defaults.Limits.Desktop)
	viper.SetDefault("limits.file", defaults.Limits.File)
	viper.SetDefault("limits.query", defaults.Limits.Query)
	viper.SetDefault("limits.shell", defaults.Limits.Shell)
	viper.SetDefault("limits.network", defaults.Limits.Network)
	viper.SetDefault("limits.history", defaults.Limits.History)

	// Shell defaults
	viper.SetDefault("shell.timeout_seconds", defaults.Shell.TimeoutSeconds)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "winremote")
	}
	// Fall back to ~/.config/winremote
	home, err := os.UserHomeDir()
	if err != nil {
		return ".winremote"
	}
	return filepath.Join(home, ".config", "winremote")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "winremote.toml")
}
