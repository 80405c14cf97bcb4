package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dddabtc/winremote-mcp/internal/config"
	"github.com/dddabtc/winremote-mcp/internal/logging"
	"github.com/dddabtc/winremote-mcp/internal/server"
	"github.com/dddabtc/winremote-mcp/internal/taskgate"
	"github.com/dddabtc/winremote-mcp/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the winremote server",
	Long: `Start the HTTP server and block until interrupted. Configuration is
read from winremote.toml; the log level follows config file edits at
runtime, while concurrency ceilings require a restart.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer log.Close()

	enabled := tools.ResolveEnabled(tools.TierOptions{
		EnableTier3:  cfg.Security.EnableTier3,
		DisableTier2: cfg.Security.DisableTier2,
		Enable:       cfg.Tools.Enable,
		Exclude:      cfg.Tools.Exclude,
	})
	reg := tools.NewRegistry(enabled)
	if err := tools.RegisterBuiltins(reg, tools.BuiltinOptions{
		ShellTimeout: cfg.Shell.Timeout(),
		AllowedPaths: cfg.Tools.AllowedPaths,
	}); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	tasks := taskgate.NewRegistry(cfg.Limits.History, log)
	gate, err := taskgate.NewGate(cfg.Limits.CategoryLimits())
	if err != nil {
		return fmt.Errorf("invalid concurrency limits: %w", err)
	}
	exec := taskgate.NewExecutor(tasks, gate, log)
	reporter := taskgate.NewReporter(tasks)

	srv, err := server.New(cfg, log, exec, reporter, reg, Version)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Follow config file edits for the log level. Ceilings and the tool
	// set are fixed at startup: in-flight tasks hold gate slots, so
	// resizing gates live would corrupt admission accounting.
	viper.OnConfigChange(func(e fsnotify.Event) {
		if err := viper.Unmarshal(cfg); err != nil {
			log.Warn("config reload failed", "file", e.Name, "error", err.Error())
			return
		}
		log.SetLevel(cfg.Logging.Level)
		log.Info("config reloaded", "file", e.Name, "level", cfg.Logging.Level)
	})
	viper.WatchConfig()

	log.Info("starting winremote",
		"version", Version,
		"addr", cfg.Server.Addr(),
		"tools", reg.Count(),
		"tier3", cfg.Security.EnableTier3)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   true,
	})
}
