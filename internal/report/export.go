package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
)

// Format selects an output encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "md"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON, FormatYAML, FormatMarkdown:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want csv, json, yaml or md)", s)
}

type exportRecord struct {
	ID              string `json:"id" yaml:"id"`
	TaskID          string `json:"taskId" yaml:"taskId"`
	Task            string `json:"task" yaml:"task"`
	Start           string `json:"start" yaml:"start"`
	End             string `json:"end" yaml:"end"`
	DurationMinutes int64  `json:"durationMinutes" yaml:"durationMinutes"`
}

func toExport(r model.TimeRecord, loc *time.Location) exportRecord {
	return exportRecord{
		ID:              r.ID,
		TaskID:          r.Task.ID,
		Task:            r.Task.Name,
		Start:           r.Start().In(loc).Format(time.RFC3339),
		End:             r.End().In(loc).Format(time.RFC3339),
		DurationMinutes: int64(r.Duration() / time.Minute),
	}
}

// WriteRecords encodes records in format. Times are rendered in loc.
func WriteRecords(w io.Writer, format Format, records []model.TimeRecord, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	switch format {
	case FormatJSON:
		out := make([]exportRecord, 0, len(records))
		for _, r := range records {
			out = append(out, toExport(r, loc))
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		out := make([]exportRecord, 0, len(records))
		for _, r := range records {
			out = append(out, toExport(r, loc))
		}
		return encodeYAML(w, out)
	case FormatMarkdown:
		return writeList(w, records, loc)
	default:
		return writeCSV(w, records, loc)
	}
}

func writeCSV(w io.Writer, records []model.TimeRecord, loc *time.Location) error {
	if _, err := fmt.Fprintln(w, "date,task,start,end,duration_minutes"); err != nil {
		return err
	}
	for _, r := range records {
		e := toExport(r, loc)
		_, err := fmt.Fprintf(w, "%s,%s,%s,%s,%d\n",
			csvEscape(r.Start().In(loc).Format("2006-01-02")),
			csvEscape(e.Task),
			csvEscape(e.Start),
			csvEscape(e.End),
			e.DurationMinutes,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// writeList groups records by date and prints them.
func writeList(w io.Writer, records []model.TimeRecord, loc *time.Location) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No entries found.")
		return err
	}
	var currentDay string
	for _, r := range records {
		start := r.Start().In(loc)
		day := start.Format("2006-01-02")
		if day != currentDay {
			if _, err := fmt.Fprintln(w, day); err != nil {
				return err
			}
			currentDay = day
		}
		_, err := fmt.Fprintf(w, "%s–%s  %s (%s)\n",
			start.Format("15:04"), r.End().In(loc).Format("15:04"), r.Task.Name, FormatDuration(r.Duration()))
		if err != nil {
			return err
		}
	}
	return nil
}

type taskTotal struct {
	TaskID          string `json:"taskId" yaml:"taskId"`
	Task            string `json:"task" yaml:"task"`
	DurationMinutes int64  `json:"duration_minutes" yaml:"duration_minutes"`
}

type summaryDoc struct {
	Label        string      `json:"label" yaml:"label"`
	Tasks        []taskTotal `json:"tasks" yaml:"tasks"`
	TotalMinutes int64       `json:"total_minutes" yaml:"total_minutes"`
}

// WriteSummary renders the aggregated report for the period named label.
func WriteSummary(w io.Writer, format Format, label string, summaries []TaskSummary) error {
	doc := summaryDoc{Label: label, Tasks: make([]taskTotal, 0, len(summaries))}
	var grandTotal time.Duration
	for _, s := range summaries {
		doc.Tasks = append(doc.Tasks, taskTotal{TaskID: s.Task.ID, Task: s.Task.Name, DurationMinutes: int64(s.Total / time.Minute)})
		grandTotal += s.Total
	}
	doc.TotalMinutes = int64(grandTotal / time.Minute)

	switch format {
	case FormatCSV:
		if _, err := fmt.Fprintln(w, "task,duration_minutes"); err != nil {
			return err
		}
		for _, t := range doc.Tasks {
			if _, err := fmt.Fprintf(w, "%s,%d\n", csvEscape(t.Task), t.DurationMinutes); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		return encodeYAML(w, doc)
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n", label)
		b.WriteString("--------------------------------\n")
		for _, s := range summaries {
			fmt.Fprintf(&b, "%-20s%s\n", s.Task.Name, FormatDuration(s.Total))
		}
		b.WriteString("--------------------------------\n")
		fmt.Fprintf(&b, "%-20s%s\n", "Total", FormatDuration(grandTotal))
		_, err := io.WriteString(w, b.String())
		return err
	}
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error encoding YAML: %w", err)
	}
	return enc.Close()
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
