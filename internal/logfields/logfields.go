// Package logfields holds the canonical slog attribute keys used across owl.
package logfields

import "log/slog"

const (
	KeyTaskID   = "task_id"
	KeyTaskName = "task_name"
	KeyRecordID = "record_id"
	KeyPath     = "path"
	KeyEvent    = "event"
	KeyDay      = "day"
	KeyField    = "field"
	KeyError    = "error"
)

func TaskID(id string) slog.Attr     { return slog.String(KeyTaskID, id) }
func TaskName(name string) slog.Attr { return slog.String(KeyTaskName, name) }
func RecordID(id string) slog.Attr   { return slog.String(KeyRecordID, id) }
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func Event(name string) slog.Attr    { return slog.String(KeyEvent, name) }
func Day(d string) slog.Attr         { return slog.String(KeyDay, d) }
func Field(f string) slog.Attr       { return slog.String(KeyField, f) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
