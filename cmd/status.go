package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/owl-time-keeper/internal/day"
	"github.com/Tiliavir/owl-time-keeper/internal/report"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active task and today's total",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := mustOpenApp(ctx)
	defer a.Close()

	active, err := a.svc.GetActiveTask(ctx)
	if err != nil {
		storageError(err)
	}
	records, err := a.svc.SelectByDay(ctx, day.Today())
	if err != nil {
		storageError(err)
	}
	today := report.Total(records)

	if active != nil {
		title, err := a.svc.TrayTitle(ctx)
		if err != nil {
			storageError(err)
		}
		fmt.Println("Running:")
		fmt.Printf("  Task: %s\n", active.Task.Name)
		if title != active.Task.Name {
			fmt.Printf("  Menu bar: %s\n", title)
		}
		fmt.Printf("  Since: %s\n", active.Start().Format("15:04"))
		fmt.Printf("  Elapsed: %s\n", report.FormatClock(since(active.StartTime)))
		fmt.Printf("Today: %s recorded.\n", report.FormatDuration(today))
		return nil
	}

	fmt.Println("No active task.")
	fmt.Printf("Today: %s recorded.\n", report.FormatDuration(today))
	return nil
}
