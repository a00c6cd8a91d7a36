package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
	"github.com/Tiliavir/owl-time-keeper/internal/report"
)

var (
	exportFormat string
	exportFrom   string
	exportTo     string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export time records to stdout",
	Long: `Export time records. Without flags the current week is exported;
--from/--to select a day range and --all exports everything.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, yaml, md")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First day (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last day (YYYY-MM-DD, defaults to --from)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every record")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	format, err := report.ParseFormat(exportFormat)
	if err != nil {
		userError("%v", err)
	}
	if exportAll && (exportFrom != "" || exportTo != "") {
		userError("--all cannot be combined with --from or --to")
	}
	if exportTo != "" && exportFrom == "" {
		userError("--from is required when --to is specified")
	}

	a := mustOpenApp(ctx)
	defer a.Close()

	var records []model.TimeRecord
	switch {
	case exportAll:
		records, err = a.svc.SelectAll(ctx)
	case exportFrom != "":
		from := parseDay(exportFrom)
		to := from
		if exportTo != "" {
			to = parseDay(exportTo)
		}
		if to.Time().Before(from.Time()) {
			userError("--to must not be before --from")
		}
		records, err = a.svc.SelectRange(ctx, from, to)
	default:
		week := parseDay("").Week()
		records, err = a.svc.SelectRange(ctx, week[0], week[len(week)-1])
	}
	if err != nil {
		storageError(err)
	}
	return report.WriteRecords(os.Stdout, format, records, time.Local)
}
