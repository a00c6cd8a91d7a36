package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
	"github.com/Tiliavir/owl-time-keeper/internal/storage"
)

var (
	recordStart string
	recordEnd   string
	recordTask  string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Edit or delete time records",
}

var recordEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the start, end or task of a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordEdit,
}

var recordRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordRm,
}

func init() {
	recordEditCmd.Flags().StringVar(&recordStart, "start", "", "New start (HH:MM on the record's day, or RFC 3339)")
	recordEditCmd.Flags().StringVar(&recordEnd, "end", "", "New end (HH:MM on the record's day, or RFC 3339)")
	recordEditCmd.Flags().StringVar(&recordTask, "task", "", "Move the record to another task")
	recordCmd.AddCommand(recordEditCmd, recordRmCmd)
}

func runRecordEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if recordStart == "" && recordEnd == "" && recordTask == "" {
		userError("Nothing to change: pass --start, --end or --task.")
	}

	a := mustOpenApp(ctx)
	defer a.Close()

	rec, err := a.svc.GetTimeRecord(ctx, args[0])
	if errors.Is(err, storage.ErrNotFound) {
		userError("No record with id %q.", args[0])
	}
	if err != nil {
		storageError(err)
	}

	if recordStart != "" {
		t, err := parseClock(recordStart, rec.Start())
		if err != nil {
			userError("invalid --start value: %v", err)
		}
		rec.StartTime = t.UnixMilli()
	}
	if recordEnd != "" {
		t, err := parseClock(recordEnd, rec.Start())
		if err != nil {
			userError("invalid --end value: %v", err)
		}
		rec.EndTime = t.UnixMilli()
	}
	if recordTask != "" {
		rec.Task = resolveTask(ctx, a, recordTask)
	}

	err = a.svc.UpdateTimeRecord(ctx, rec)
	if errors.Is(err, model.ErrInvalidTimeRange) {
		userError("%v", err)
	}
	if err != nil {
		storageError(err)
	}
	fmt.Printf("Updated record %s: %q %s–%s\n", rec.ID, rec.Task.Name,
		rec.Start().Format("2006-01-02 15:04"), rec.End().Format("15:04"))
	return nil
}

func runRecordRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a := mustOpenApp(ctx)
	defer a.Close()

	err := a.svc.DeleteTimeRecord(ctx, args[0])
	if errors.Is(err, storage.ErrNotFound) {
		userError("No record with id %q.", args[0])
	}
	if err != nil {
		storageError(err)
	}
	fmt.Printf("Deleted record %s\n", args[0])
	return nil
}

// parseClock reads an RFC 3339 timestamp, or HH:MM / HH:MM:SS on the day of ref.
func parseClock(s string, ref time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		c, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		y, m, d := ref.Date()
		return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, ref.Location()), nil
	}
	return time.Time{}, fmt.Errorf("%q is neither HH:MM nor RFC 3339", s)
}
