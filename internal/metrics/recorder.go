// Package metrics provides optional instrumentation for the time keeper.
// Components receive a Recorder and default to NoopRecorder, so no call site
// needs a nil check. The Prometheus implementation is only wired by the
// long-running watch command.
package metrics

import "time"

// ResultLabel enumerates operation outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailure ResultLabel = "failure"
)

// Recorder defines the observability hooks of the use-case layer.
type Recorder interface {
	IncOperation(op string, result ResultLabel)
	ObserveRecordDuration(d time.Duration)
	SetActiveTask(active bool)
	IncEvent(event string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncOperation(string, ResultLabel)    {}
func (NoopRecorder) ObserveRecordDuration(time.Duration) {}
func (NoopRecorder) SetActiveTask(bool)                  {}
func (NoopRecorder) IncEvent(string)                     {}

// Result maps an error to its ResultLabel.
func Result(err error) ResultLabel {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
