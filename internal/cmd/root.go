package cmd

import (
	"strings"

	"github.com/dddabtc/winremote-mcp/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the build version, overridable at link time.
var Version = "0.2.0"

var rootCmd = &cobra.Command{
	Use:   "winremote",
	Short: "Remote machine control server with bounded task execution",
	Long: `Winremote exposes a small set of machine control tools (shell, files,
queries, network probes) over an HTTP API. Every tool call runs as a
tracked task through per-category concurrency gates, with cooperative
cancellation and a bounded task history.`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/winremote/winremote.toml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("winremote")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(config.ConfigDir())
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("WINREMOTE")
	// Replace dots with underscores for nested keys in env vars
	// e.g., WINREMOTE_SERVER_PORT for server.port
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
