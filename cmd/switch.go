package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
	"github.com/Tiliavir/owl-time-keeper/internal/report"
)

var switchCmd = &cobra.Command{
	Use:   "switch <task>",
	Short: "Switch to a task, or stop it if it is already active",
	Args:  cobra.ExactArgs(1),
	RunE:  runSwitch,
}

func runSwitch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := mustOpenApp(ctx)
	defer a.Close()

	task := resolveTask(ctx, a, args[0])
	rec, err := a.svc.SwitchTask(ctx, task)
	printRecorded(rec)
	if err != nil {
		storageError(err)
	}

	active, err := a.svc.GetActiveTask(ctx)
	if err != nil {
		storageError(err)
	}
	if active == nil {
		fmt.Println("No task is active now.")
		return nil
	}
	fmt.Printf("Now tracking %q since %s\n", active.Task.Name, active.Start().Format("15:04:05"))
	return nil
}

func printRecorded(rec *model.TimeRecord) {
	if rec == nil {
		return
	}
	fmt.Printf("Recorded %q %s–%s (%s)\n", rec.Task.Name,
		rec.Start().Format("15:04"), rec.End().Format("15:04"), report.FormatDuration(rec.Duration()))
}
