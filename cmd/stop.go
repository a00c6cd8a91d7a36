package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/owl-time-keeper/internal/report"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active task and record its time",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := mustOpenApp(ctx)
	defer a.Close()

	active, err := a.svc.GetActiveTask(ctx)
	if err != nil {
		storageError(err)
	}
	if active == nil {
		userError("No active task to stop.")
	}

	rec, err := a.svc.Stop(ctx)
	if err != nil {
		storageError(err)
	}

	elapsed := a.svc.Now().Sub(active.Start())
	if rec != nil {
		elapsed = rec.Duration()
	}
	fmt.Printf("Stopped %q. Elapsed: %s\n", active.Task.Name, report.FormatElapsed(elapsed))
	return nil
}
