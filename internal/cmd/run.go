package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <tool> [key=value ...]",
	Short: "Run a tool on the server",
	Long: `Submit a tool call and print its result. Arguments are key=value
pairs passed to the tool, e.g.:

  winremote run Shell command="uname -a"
  winremote run FileList path=/tmp
  winremote run PortCheck host=127.0.0.1 port=22`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	tool := args[0]
	toolArgs := make(map[string]any, len(args)-1)
	for _, pair := range args[1:] {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return fmt.Errorf("argument %q is not key=value", pair)
		}
		toolArgs[k] = v
	}

	outcome, err := newClient().Submit(cmd.Context(), tool, toolArgs)
	if err != nil {
		return err
	}

	if !outcome.Success {
		fmt.Fprintf(os.Stderr, "task %s failed: %s\n", outcome.TaskID, outcome.Error)
		os.Exit(1)
	}
	fmt.Println(outcome.Result)
	return nil
}
