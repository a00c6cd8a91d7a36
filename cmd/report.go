package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/owl-time-keeper/internal/report"
)

var (
	reportWeek   bool
	reportDate   string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show time per task",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Report for the week (default unless --date is given)")
	reportCmd.Flags().StringVar(&reportDate, "date", "", "Report a single day (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json, yaml")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	format, err := report.ParseFormat(reportFormat)
	if err != nil {
		userError("%v", err)
	}
	d := parseDay(reportDate)

	a := mustOpenApp(ctx)
	defer a.Close()

	from, to := d, d
	label := d.String()
	if reportWeek || reportDate == "" {
		week := d.Week()
		from, to = week[0], week[len(week)-1]
		label = "Week " + d.ISOWeekLabel()
	}

	records, err := a.svc.SelectRange(ctx, from, to)
	if err != nil {
		storageError(err)
	}
	return report.WriteSummary(os.Stdout, format, label, report.GroupByTask(records))
}
