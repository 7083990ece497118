package navgen

import (
	"fmt"
	"time"
)

// Builder owns one pipeline's worth of stage builders and its
// BuildContext, and runs CompactHeightfield -> regions -> contours ->
// poly mesh on demand. A Builder can be reused across repeated Run
// calls; each Run gets a fresh BuildContext (and so a fresh RunID) while
// the stage builders' scratch pools carry over.
type Builder struct {
	cfg Config

	contourBuilder *ContourBuilder
	polyMeshBuilder *PolyMeshBuilder

	useWatershed bool
	metrics      *pipelineMetrics

	// LogTimes, if true, makes Run call ctx.LogBuildTimes after finishing.
	LogTimes bool

	// LogConfig, if true, makes Run call ctx.DumpConfig before starting.
	LogConfig bool
}

// NewBuilder returns a Builder configured by cfg. By default region
// partitioning uses the monotone sweep; call UseWatershedRegions to
// switch to the watershed flood-fill algorithm.
func NewBuilder(cfg Config) *Builder {
	return &Builder{
		cfg:             cfg,
		contourBuilder:  NewContourBuilder(),
		polyMeshBuilder: NewPolyMeshBuilder(),
	}
}

// UseWatershedRegions switches region partitioning to the watershed
// flood-fill algorithm, which requires chf.Dist to already be populated.
func (b *Builder) UseWatershedRegions(enabled bool) { b.useWatershed = enabled }

// UseMetrics attaches a Prometheus observer that every Run's BuildContext
// reports stage durations through.
func (b *Builder) UseMetrics(m *pipelineMetrics) { b.metrics = m }

// Result holds one pipeline run's output and the context it ran under,
// so callers can inspect timings and log messages after the fact.
type Result struct {
	Contours *ContourSet
	Mesh     *PolyMesh
	Ctx      *BuildContext
}

// Run executes the full region -> contour -> poly mesh pipeline over
// chf, which must already have been voxelized and have its neighbour
// connectivity computed (and, if watershed regions are in use, its
// distance field populated).
func (b *Builder) Run(chf *CompactHeightfield) (*Result, error) {
	ctx := NewBuildContext()
	if b.metrics != nil {
		ctx.UseMetrics(b.metrics)
	}

	if b.LogConfig {
		ctx.DumpConfig(b.cfg)
	}

	start := time.Now()
	ctx.StartTimer(TimerTotal)

	var regionsOK bool
	if b.useWatershed {
		regionsOK = BuildRegions(ctx, chf, b.cfg.BorderSize, b.cfg.MinRegionArea, b.cfg.MergeRegionArea)
	} else {
		regionsOK = BuildRegionsMonotone(ctx, chf, b.cfg.BorderSize, b.cfg.MinRegionArea, b.cfg.MergeRegionArea)
	}
	if !regionsOK {
		return nil, fmt.Errorf("navgen: building regions: %s", lastError(ctx))
	}

	cset, err := b.contourBuilder.BuildContours(ctx, chf, b.cfg.MaxSimplificationError, b.cfg.MaxEdgeLen, b.cfg.ContourFlags)
	if err != nil {
		return nil, fmt.Errorf("navgen: building contours: %w", err)
	}
	// An empty contour set (every region filtered out, or a pathological
	// input that produced zero surviving regions) is not a failure: it
	// yields an empty PolyMesh, not an error.

	mesh, err := b.polyMeshBuilder.BuildPolyMesh(ctx, cset, b.cfg.MaxVertsPerPoly)
	if err != nil {
		return nil, fmt.Errorf("navgen: building poly mesh: %w", err)
	}

	ctx.StopTimer(TimerTotal)
	if b.LogTimes {
		ctx.LogBuildTimes(time.Since(start))
	}

	return &Result{Contours: cset, Mesh: mesh, Ctx: ctx}, nil
}

// lastError returns the most recently logged error-category message in
// ctx, or a generic message if none was recorded.
func lastError(ctx *BuildContext) string {
	for i := ctx.LogCount() - 1; i >= 0; i-- {
		msg := ctx.LogText(i)
		if len(msg) >= 4 && msg[:4] == "ERR " {
			return msg[4:]
		}
	}
	return "unspecified failure"
}
