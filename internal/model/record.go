package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeRange is returned for records whose end is not after their start.
var ErrInvalidTimeRange = errors.New("time record: end time must be after start time")

// TimeRecord is an immutable span of tracked time. Task is a snapshot of the
// task at record time so deleting the task does not affect history; only
// renames are propagated into it.
type TimeRecord struct {
	ID        string `json:"id" yaml:"id"`
	Task      Task   `json:"task" yaml:"task"`
	StartTime int64  `json:"startTime" yaml:"startTime"`
	EndTime   int64  `json:"endTime" yaml:"endTime"`
}

// Validate checks EndTime > StartTime.
func (r TimeRecord) Validate() error {
	if r.EndTime <= r.StartTime {
		return fmt.Errorf("%w (start=%d end=%d)", ErrInvalidTimeRange, r.StartTime, r.EndTime)
	}
	return nil
}

// Duration returns the length of the record.
func (r TimeRecord) Duration() time.Duration {
	return time.Duration(r.EndTime-r.StartTime) * time.Millisecond
}

// Start returns StartTime as a time.Time in the local zone.
func (r TimeRecord) Start() time.Time { return time.UnixMilli(r.StartTime) }

// End returns EndTime as a time.Time in the local zone.
func (r TimeRecord) End() time.Time { return time.UnixMilli(r.EndTime) }

// CompareTimeRecord orders records by start, end, then id.
func CompareTimeRecord(a, b TimeRecord) int {
	switch {
	case a.StartTime != b.StartTime:
		return cmpInt64(a.StartTime, b.StartTime)
	case a.EndTime != b.EndTime:
		return cmpInt64(a.EndTime, b.EndTime)
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	if a < b {
		return -1
	}
	return 1
}
