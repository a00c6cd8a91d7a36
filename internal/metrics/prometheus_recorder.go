package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	operations     *prom.CounterVec
	recordDuration prom.Histogram
	activeTask     prom.Gauge
	events         *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg
// together with the Go and process collectors.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		operations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "owl",
			Name:      "operations_total",
			Help:      "Use-case operations by outcome",
		}, []string{"op", "result"}),
		recordDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "owl",
			Name:      "time_record_duration_seconds",
			Help:      "Length of materialized time records",
			Buckets:   []float64{60, 300, 900, 1800, 3600, 7200, 14400, 28800},
		}),
		activeTask: prom.NewGauge(prom.GaugeOpts{
			Namespace: "owl",
			Name:      "active_task",
			Help:      "1 while a task is accruing time",
		}),
		events: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "owl",
			Name:      "channel_events_total",
			Help:      "Events published on the observer channel",
		}, []string{"event"}),
	}
	reg.MustRegister(pr.operations, pr.recordDuration, pr.activeTask, pr.events)
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return pr
}

func (p *PrometheusRecorder) IncOperation(op string, result ResultLabel) {
	p.operations.WithLabelValues(op, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRecordDuration(d time.Duration) {
	p.recordDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetActiveTask(active bool) {
	if active {
		p.activeTask.Set(1)
		return
	}
	p.activeTask.Set(0)
}

func (p *PrometheusRecorder) IncEvent(event string) {
	p.events.WithLabelValues(event).Inc()
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
