package metrics

import (
	"time"

	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	routeDuration *prom.HistogramVec
	runDuration   prom.Gauge
	pageResults   *prom.CounterVec
	rewriteMisses *prom.CounterVec
}

// NewPrometheusRecorder registers the prerender metrics on reg, or on a fresh
// registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		routeDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "prerender",
			Name:      "route_duration_seconds",
			Help:      "Time spent rendering and writing a single route",
			Buckets:   prom.DefBuckets,
		}, []string{"route"}),
		runDuration: prom.NewGauge(prom.GaugeOpts{
			Namespace: "prerender",
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last prerender run",
		}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "prerender",
			Name:      "page_results_total",
			Help:      "Generated pages by content source, one result per page",
		}, []string{"result"}),
		rewriteMisses: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "prerender",
			Name:      "rewrite_misses_total",
			Help:      "Template substitutions that found nothing to replace",
		}, []string{"field"}),
	}
	reg.MustRegister(pr.routeDuration, pr.runDuration, pr.pageResults, pr.rewriteMisses)
	return pr
}

func (p *PrometheusRecorder) ObserveRouteDuration(route string, d time.Duration) {
	p.routeDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	p.runDuration.Set(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(result PageResult) {
	p.pageResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncRewriteMiss(field string) {
	p.rewriteMisses.WithLabelValues(field).Inc()
}

// WriteTextfile writes the registry in the text exposition format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return errors.Wrapf(prom.WriteToTextfile(path, p.reg), "writing metrics to %s", path)
}
