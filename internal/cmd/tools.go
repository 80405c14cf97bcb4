package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List tools enabled on the server",
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	list, err := newClient().Tools(cmd.Context())
	if err != nil {
		return err
	}
	for _, t := range list {
		fmt.Printf("%-14s  %-8s  %-6s  %s\n", t.Name, t.Category, t.Tier, t.Description)
	}
	return nil
}
