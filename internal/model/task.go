package model

import (
	"strings"
	"time"
)

// Task is something time can be tracked against. ID is stable for the task's
// lifetime; Name may change through a rename.
type Task struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// ActiveTask is the task currently accruing time. StartTime is epoch milliseconds.
type ActiveTask struct {
	Task      Task  `json:"task"`
	StartTime int64 `json:"startTime"`
}

// Start returns StartTime as a local time.
func (a ActiveTask) Start() time.Time { return time.UnixMilli(a.StartTime) }

// CompareTask orders tasks by name, then by id.
func CompareTask(a, b Task) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
