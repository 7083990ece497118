package navgen

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// pipelineMetrics holds the Prometheus collectors a Builder can report
// stage timings through. Build one with NewPipelineMetrics and attach it
// to a BuildContext via BuildContext.UseMetrics; a nil *pipelineMetrics
// disables observation entirely, matching BuildContext's timers-disabled
// zero-cost behavior.
type pipelineMetrics struct {
	stageDuration *prometheus.HistogramVec
}

// NewPipelineMetrics registers the pipeline's stage-duration histogram
// with reg and returns a handle that BuildContext.UseMetrics can consume.
// With a nil registry the histogram is created but not registered.
func NewPipelineMetrics(reg prometheus.Registerer) *pipelineMetrics {
	return &pipelineMetrics{
		stageDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "navgen",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each navmesh generation pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
}

func (m *pipelineMetrics) observe(label TimerLabel, d time.Duration) {
	m.stageDuration.WithLabelValues(label.String()).Observe(d.Seconds())
}
