// Package metrics records prerender outcomes. The default is a no-op; the
// Prometheus recorder is flushed to a node-exporter textfile at the end of a run.
package metrics

import "time"

// PageResult enumerates how a route's content was produced.
type PageResult string

const (
	PageRendered    PageResult = "rendered"
	PageFallback    PageResult = "fallback"
	PageRenderError PageResult = "render_error"
)

type Recorder interface {
	ObserveRouteDuration(route string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncPageResult(result PageResult)
	IncRewriteMiss(field string)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveRouteDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncPageResult(PageResult)                   {}
func (NoopRecorder) IncRewriteMiss(string)                      {}
