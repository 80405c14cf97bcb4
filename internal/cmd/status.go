package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dddabtc/winremote-mcp/internal/taskgate"
	"github.com/dddabtc/winremote-mcp/internal/util"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server health and tasks",
	Long:  `Display server health, running tasks, and recent task history.`,
	RunE:  runStatus,
}

var statusActiveOnly bool

func init() {
	statusCmd.Flags().BoolVar(&statusActiveOnly, "active", false, "show only pending and running tasks")
	rootCmd.AddCommand(statusCmd)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	statusStyles = map[taskgate.Status]lipgloss.Style{
		taskgate.StatusPending:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		taskgate.StatusRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		taskgate.StatusSucceeded: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		taskgate.StatusFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		taskgate.StatusCancelled: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
)

func runStatus(cmd *cobra.Command, args []string) error {
	c := newClient()
	ctx := cmd.Context()

	version, err := c.Health(ctx)
	if err != nil {
		return fmt.Errorf("server not reachable: %w", err)
	}
	fmt.Printf("%s %s\n\n", headerStyle.Render("winremote"), dimStyle.Render(version))

	active, err := c.Tasks(ctx, true)
	if err != nil {
		return err
	}
	fmt.Println(headerStyle.Render(fmt.Sprintf("Active tasks (%d)", len(active))))
	printTasks(active)

	if statusActiveOnly {
		return nil
	}

	history, err := c.Tasks(ctx, false)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("History (%d)", len(history))))
	printTasks(history)
	return nil
}

func printTasks(tasks []taskgate.Record) {
	if len(tasks) == 0 {
		fmt.Println(dimStyle.Render("  none"))
		return
	}
	for _, t := range tasks {
		style, ok := statusStyles[t.Status]
		if !ok {
			style = dimStyle
		}
		line := fmt.Sprintf("  %s  %-9s  %-8s  %-14s  %s",
			t.ID,
			style.Render(string(t.Status)),
			t.Category,
			t.Tool,
			t.CreatedAt.Local().Format("15:04:05"))
		if d := t.Duration(); d > 0 {
			line += dimStyle.Render(fmt.Sprintf("  %s", d))
		}
		fmt.Println(line)
		if t.Error != "" {
			fmt.Println(dimStyle.Render("      " + util.TruncateString(util.FirstLine(t.Error), 100)))
		}
	}
}
