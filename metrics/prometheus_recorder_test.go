package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	pr := NewPrometheusRecorder(nil)

	pr.IncPageResult(PageRendered)
	pr.IncPageResult(PageRendered)
	pr.IncPageResult(PageFallback)
	pr.IncRewriteMiss("og:locale")
	pr.ObserveRouteDuration("/", 20*time.Millisecond)
	pr.ObserveRunDuration(time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.pageResults.WithLabelValues("rendered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.pageResults.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.rewriteMisses.WithLabelValues("og:locale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.runDuration))
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncPageResult(PageFallback)

	path := filepath.Join(t.TempDir(), "prerender.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `prerender_page_results_total{result="fallback"} 1`)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncPageResult(PageRendered)
	r.IncRewriteMiss("title")
	r.ObserveRouteDuration("/", time.Millisecond)
	r.ObserveRunDuration(time.Millisecond)
}
