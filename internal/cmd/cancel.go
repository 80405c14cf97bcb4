package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <task-id>",
	Short: "Request cancellation of a task",
	Long: `Request cooperative cancellation of a pending or running task.
Pending tasks end without ever starting; running operations end when
they next observe the cancellation signal.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := newClient().Cancel(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("cancellation requested for %s\n", id)
	return nil
}
