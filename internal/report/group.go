// Package report aggregates time records and renders them for the CLI.
package report

import (
	"slices"
	"time"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
)

// TaskSummary is the time spent on one task.
type TaskSummary struct {
	Task  model.Task
	Items []model.TimeRecord
	Total time.Duration
}

// GroupByTask groups records by task id. The summary carries the task
// snapshot of its most recent record; summaries are ordered by
// model.CompareTask and items by model.CompareTimeRecord.
func GroupByTask(records []model.TimeRecord) []TaskSummary {
	index := map[string]int{}
	var out []TaskSummary
	for _, r := range records {
		i, ok := index[r.Task.ID]
		if !ok {
			i = len(out)
			index[r.Task.ID] = i
			out = append(out, TaskSummary{Task: r.Task})
		}
		out[i].Items = append(out[i].Items, r)
		out[i].Total += r.Duration()
	}
	for i := range out {
		slices.SortFunc(out[i].Items, model.CompareTimeRecord)
		out[i].Task = out[i].Items[len(out[i].Items)-1].Task
	}
	slices.SortFunc(out, func(a, b TaskSummary) int { return model.CompareTask(a.Task, b.Task) })
	return out
}

// Totals sums durations per task id.
func Totals(records []model.TimeRecord) map[string]time.Duration {
	totals := make(map[string]time.Duration)
	for _, r := range records {
		totals[r.Task.ID] += r.Duration()
	}
	return totals
}

// Total sums the durations of all records.
func Total(records []model.TimeRecord) time.Duration {
	var total time.Duration
	for _, r := range records {
		total += r.Duration()
	}
	return total
}
