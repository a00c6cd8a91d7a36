package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/owl-time-keeper/internal/report"
)

var (
	listDate string
	listWeek bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List time records",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "Day to list (YYYY-MM-DD, default today)")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "List the whole week containing the day")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d := parseDay(listDate)

	a := mustOpenApp(ctx)
	defer a.Close()

	from, to := d, d
	if listWeek {
		week := d.Week()
		from, to = week[0], week[len(week)-1]
	}
	records, err := a.svc.SelectRange(ctx, from, to)
	if err != nil {
		storageError(err)
	}
	return report.WriteRecords(os.Stdout, report.FormatMarkdown, records, time.Local)
}
