package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
	"github.com/Tiliavir/owl-time-keeper/internal/storage"
)

var startCreate bool

var startCmd = &cobra.Command{
	Use:   "start <task>",
	Short: "Start tracking a task, recording the previously active one",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func init() {
	startCmd.Flags().BoolVar(&startCreate, "create", false, "Create the task if it does not exist")
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := mustOpenApp(ctx)
	defer a.Close()

	var task model.Task
	found, err := a.svc.FindTask(ctx, args[0])
	switch {
	case err == nil:
		task = found
	case errors.Is(err, storage.ErrNotFound) && startCreate:
		task, err = a.svc.CreateTask(ctx, args[0])
		if err != nil {
			storageError(err)
		}
	case errors.Is(err, storage.ErrNotFound):
		userError("No task named %q. Use --create to add it.", args[0])
	default:
		storageError(err)
	}

	active, err := a.svc.GetActiveTask(ctx)
	if err != nil {
		storageError(err)
	}
	if active != nil && active.Task.ID == task.ID {
		userError("Already tracking %q since %s.", task.Name, active.Start().Format("15:04"))
	}
	if active != nil {
		fmt.Fprintf(os.Stderr, "Warning: auto-stopping active task %q\n", active.Task.Name)
	}

	rec, err := a.svc.SwitchTask(ctx, task)
	printRecorded(rec)
	if err != nil {
		storageError(err)
	}
	fmt.Printf("Started tracking %q at %s\n", task.Name, a.svc.Now().Format("15:04:05"))
	return nil
}
