package navgen

import (
	"fmt"
	"time"

	"github.com/fatih/structs"
	"github.com/google/uuid"
)

// LogCategory classifies a message recorded by BuildContext.
type LogCategory int

const (
	LogProgress LogCategory = 1 + iota
	LogWarning
	LogError
)

// TimerLabel names one of the performance counters BuildContext tracks.
type TimerLabel int

const (
	TimerTotal TimerLabel = iota
	TimerBuildRegions
	TimerBuildRegionsWatershed
	TimerBuildRegionsExpand
	TimerBuildRegionsFlood
	TimerBuildRegionsFilter
	TimerBuildContours
	TimerBuildContoursTrace
	TimerBuildContoursSimplify
	TimerBuildPolyMesh
	maxTimers
)

func (l TimerLabel) String() string {
	switch l {
	case TimerTotal:
		return "total"
	case TimerBuildRegions:
		return "build_regions"
	case TimerBuildRegionsWatershed:
		return "build_regions_watershed"
	case TimerBuildRegionsExpand:
		return "build_regions_expand"
	case TimerBuildRegionsFlood:
		return "build_regions_flood"
	case TimerBuildRegionsFilter:
		return "build_regions_filter"
	case TimerBuildContours:
		return "build_contours"
	case TimerBuildContoursTrace:
		return "build_contours_trace"
	case TimerBuildContoursSimplify:
		return "build_contours_simplify"
	case TimerBuildPolyMesh:
		return "build_polymesh"
	default:
		return "unknown"
	}
}

const maxMessages = 1000

// BuildContext accumulates log messages and per-stage timings across one
// pipeline run. Builder.Run creates a fresh one for every run;
// ResetLog/ResetTimers clear accumulated state for callers that drive
// the stage functions with one context across several runs.
//
// A zero-value BuildContext has logging and timers disabled; use
// NewBuildContext to get one with both enabled.
type BuildContext struct {
	RunID uuid.UUID // Correlates log lines and metric samples from one run.

	logEnabled   bool
	timerEnabled bool

	startTime [maxTimers]time.Time
	accTime   [maxTimers]time.Duration

	messages    []string
	numMessages int

	metrics *pipelineMetrics // nil disables Prometheus observations.
}

// NewBuildContext returns a BuildContext with logging and timers enabled
// and a fresh run id.
func NewBuildContext() *BuildContext {
	return &BuildContext{
		RunID:        uuid.New(),
		logEnabled:   true,
		timerEnabled: true,
		messages:     make([]string, 0, 64),
	}
}

// EnableLog toggles message recording.
func (ctx *BuildContext) EnableLog(state bool) { ctx.logEnabled = state }

// EnableTimer toggles timer accumulation.
func (ctx *BuildContext) EnableTimer(state bool) { ctx.timerEnabled = state }

// ResetLog discards all recorded messages.
func (ctx *BuildContext) ResetLog() {
	if ctx.logEnabled {
		ctx.messages = ctx.messages[:0]
		ctx.numMessages = 0
	}
}

// ResetTimers zeroes all accumulated durations.
func (ctx *BuildContext) ResetTimers() {
	if ctx.timerEnabled {
		for i := range ctx.accTime {
			ctx.accTime[i] = 0
		}
	}
}

func (ctx *BuildContext) Progressf(format string, v ...interface{}) { ctx.log(LogProgress, format, v...) }
func (ctx *BuildContext) Warningf(format string, v ...interface{})  { ctx.log(LogWarning, format, v...) }
func (ctx *BuildContext) Errorf(format string, v ...interface{})    { ctx.log(LogError, format, v...) }

func (ctx *BuildContext) log(category LogCategory, format string, v ...interface{}) {
	if !ctx.logEnabled || ctx.numMessages >= maxMessages {
		return
	}
	var prefix string
	switch category {
	case LogProgress:
		prefix = "PROG "
	case LogWarning:
		prefix = "WARN "
	case LogError:
		prefix = "ERR "
	}
	ctx.messages = append(ctx.messages, prefix+fmt.Sprintf(format, v...))
	ctx.numMessages++
}

// LogCount returns the number of messages recorded since the last
// ResetLog.
func (ctx *BuildContext) LogCount() int { return ctx.numMessages }

// LogText returns the i-th recorded message.
func (ctx *BuildContext) LogText(i int) string { return ctx.messages[i] }

// StartTimer begins accumulating time under label.
func (ctx *BuildContext) StartTimer(label TimerLabel) {
	if ctx.timerEnabled {
		ctx.startTime[label] = time.Now()
	}
}

// StopTimer stops accumulating time under label and, if Prometheus
// metrics were attached via UseMetrics, records the elapsed duration.
func (ctx *BuildContext) StopTimer(label TimerLabel) {
	if !ctx.timerEnabled {
		return
	}
	delta := time.Since(ctx.startTime[label])
	ctx.accTime[label] += delta
	if ctx.metrics != nil {
		ctx.metrics.observe(label, delta)
	}
}

// AccumulatedTime returns the total duration spent under label across
// the run, or 0 if timers are disabled.
func (ctx *BuildContext) AccumulatedTime(label TimerLabel) time.Duration {
	if !ctx.timerEnabled {
		return 0
	}
	return ctx.accTime[label]
}

// UseMetrics attaches a Prometheus observer so every StopTimer call also
// records a histogram sample. Passing nil (the default) disables it.
func (ctx *BuildContext) UseMetrics(m *pipelineMetrics) { ctx.metrics = m }

// DumpConfig logs one line per field of cfg, in the same
// one-fact-per-line style as LogBuildTimes. It uses structs.Map rather
// than a hand-maintained field list so newly added Config fields are
// picked up automatically.
func (ctx *BuildContext) DumpConfig(cfg Config) {
	ctx.Progressf("run %s config:", ctx.RunID)
	for field, value := range structs.Map(cfg) {
		ctx.Progressf("  %-24s %v", field, value)
	}
}

// LogBuildTimes writes a one-line-per-timer report of every non-zero
// accumulated stage duration (TimerTotal itself is not listed), each as
// a share of totalTime, prefixed by the run id.
func (ctx *BuildContext) LogBuildTimes(totalTime time.Duration) {
	ctx.Progressf("run %s build times:", ctx.RunID)
	for label := TimerTotal + 1; label < maxTimers; label++ {
		d := ctx.AccumulatedTime(label)
		if d == 0 {
			continue
		}
		pct := float64(d) / float64(totalTime) * 100
		ctx.Progressf("  %-28s %8s (%5.1f%%)", label, d, pct)
	}
}
