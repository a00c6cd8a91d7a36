package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/owl-time-keeper/internal/storage"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskAdd,
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <task>",
	Short: "Delete a task; its time records are kept",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskRm,
}

var taskRenameCmd = &cobra.Command{
	Use:   "rename <task> <new-name>",
	Short: "Rename a task and every record of it",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskRename,
}

var taskLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE:  runTaskLs,
}

func init() {
	taskCmd.AddCommand(taskAddCmd, taskRmCmd, taskRenameCmd, taskLsCmd)
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := mustOpenApp(ctx)
	defer a.Close()

	task, err := a.svc.CreateTask(ctx, args[0])
	if errors.Is(err, storage.ErrTaskAlreadyExists) {
		userError("Task %q already exists.", args[0])
	}
	if err != nil {
		storageError(err)
	}
	fmt.Printf("Created task %q (%s)\n", task.Name, task.ID)
	return nil
}

func runTaskRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := mustOpenApp(ctx)
	defer a.Close()

	task := resolveTask(ctx, a, args[0])
	if err := a.svc.DeleteTask(ctx, task.ID); err != nil {
		storageError(err)
	}
	fmt.Printf("Deleted task %q\n", task.Name)
	return nil
}

func runTaskRename(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := mustOpenApp(ctx)
	defer a.Close()

	task := resolveTask(ctx, a, args[0])
	if err := a.svc.UpdateTaskName(ctx, task.ID, args[1]); err != nil {
		storageError(err)
	}
	fmt.Printf("Renamed %q to %q\n", task.Name, args[1])
	return nil
}

func runTaskLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := mustOpenApp(ctx)
	defer a.Close()

	tasks, err := a.svc.GetTasks(ctx)
	if err != nil {
		storageError(err)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks yet. Create one with `owl task add <name>`.")
		return nil
	}
	active, err := a.svc.GetActiveTask(ctx)
	if err != nil {
		storageError(err)
	}
	for _, t := range tasks {
		marker := " "
		if active != nil && active.Task.ID == t.ID {
			marker = "*"
		}
		fmt.Printf("%s %-20s %s\n", marker, t.Name, t.ID)
	}
	return nil
}
