package navgen

import (
	"fmt"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// pipelineWorld holds the state threaded through one Gherkin scenario:
// the named heightfield fixtures built by Given steps, the Config
// accumulated by config steps, and the Result/error produced by the
// When step.
type pipelineWorld struct {
	fields map[string]*CompactHeightfield
	cfg    Config
	ranOn  *CompactHeightfield
	result *Result
	err    error
}

func newPipelineWorld() *pipelineWorld {
	return &pipelineWorld{fields: make(map[string]*CompactHeightfield)}
}

func (w *pipelineWorld) givenFlatHeightfield(name string, width, height int32) error {
	w.fields[name] = newFlatCompactHeightfield(width, height)
	return nil
}

func (w *pipelineWorld) givenTwoAreaHeightfield(name string, width, height int32) error {
	w.fields[name] = newTwoAreaCompactHeightfield(width, height)
	return nil
}

func (w *pipelineWorld) givenHoleHeightfield(name string, width, height, x0, y0, x1, y1 int32) error {
	w.fields[name] = newHoleCompactHeightfield(width, height, x0, y0, x1, y1)
	return nil
}

func (w *pipelineWorld) givenSmallRegionHeightfieldNotTouching(name string, width, height, sizeW, sizeH int32) error {
	w.fields[name] = newSmallRegionCompactHeightfield(width, height, sizeW, sizeH, 0, false)
	return nil
}

func (w *pipelineWorld) givenSmallRegionHeightfieldTouching(name string, width, height, sizeW, sizeH, border int32) error {
	w.fields[name] = newSmallRegionCompactHeightfield(width, height, sizeW, sizeH, border, true)
	return nil
}

func (w *pipelineWorld) givenConfig(border, minRegionArea, mergeRegionArea int32, maxError float64, maxEdgeLen, maxVertsPerPoly int32) error {
	w.cfg = Config{
		BorderSize:              border,
		Cs:                      1,
		Ch:                      1,
		MaxEdgeLen:              maxEdgeLen,
		MaxSimplificationError:  float32(maxError),
		MinRegionArea:           minRegionArea,
		MergeRegionArea:         mergeRegionArea,
		MaxVertsPerPoly:         maxVertsPerPoly,
	}
	return nil
}

func (w *pipelineWorld) givenWallEdgeTessellationEnabled() error {
	w.cfg.ContourFlags |= ContourTessWallEdges
	return nil
}

func (w *pipelineWorld) whenPipelineRuns(name string) error {
	chf, ok := w.fields[name]
	if !ok {
		return fmt.Errorf("no heightfield named %q was set up", name)
	}
	w.ranOn = chf
	b := NewBuilder(w.cfg)
	w.result, w.err = b.Run(chf)
	return nil
}

func (w *pipelineWorld) thenItSucceeds() error {
	if w.err != nil {
		return fmt.Errorf("expected the pipeline to succeed, got: %w", w.err)
	}
	if w.result == nil {
		return fmt.Errorf("expected a non-nil Result")
	}
	return nil
}

func (w *pipelineWorld) thenItProducesNRegions(n int) error {
	if int(w.ranOn.MaxRegions) != n {
		return fmt.Errorf("expected %d surviving regions, got %d", n, w.ranOn.MaxRegions)
	}
	return nil
}

func (w *pipelineWorld) thenItProducesNContours(n int) error {
	if got := len(w.result.Contours.Conts); got != n {
		return fmt.Errorf("expected %d contours, got %d", n, got)
	}
	return nil
}

func (w *pipelineWorld) thenContourHasNVertices(idx, n int) error {
	conts := w.result.Contours.Conts
	if idx >= len(conts) {
		return fmt.Errorf("no contour at index %d (only %d contours)", idx, len(conts))
	}
	if got := int(conts[idx].NVerts); got != n {
		return fmt.Errorf("expected contour %d to have %d vertices, got %d", idx, n, got)
	}
	return nil
}

func (w *pipelineWorld) thenContourHasAtLeastNVertices(idx, n int) error {
	conts := w.result.Contours.Conts
	if idx >= len(conts) {
		return fmt.Errorf("no contour at index %d (only %d contours)", idx, len(conts))
	}
	if got := int(conts[idx].NVerts); got < n {
		return fmt.Errorf("expected contour %d to have at least %d vertices, got %d", idx, n, got)
	}
	return nil
}

func (w *pipelineWorld) thenItProducesNPolygons(n int) error {
	if got := int(w.result.Mesh.NPolys); got != n {
		return fmt.Errorf("expected %d polygons, got %d", n, got)
	}
	return nil
}

func (w *pipelineWorld) thenItProducesAtMostNPolygons(n int) error {
	if got := int(w.result.Mesh.NPolys); got > n {
		return fmt.Errorf("expected at most %d polygons, got %d", n, got)
	}
	return nil
}

func (w *pipelineWorld) thenItProducesNAdjacencyEntries(n int) error {
	mesh := w.result.Mesh
	count := 0
	for i := int32(0); i < mesh.NPolys; i++ {
		p := mesh.Polys[i*mesh.Nvp*2:]
		for j := int32(0); j < mesh.Nvp; j++ {
			adj := p[mesh.Nvp+j]
			if adj != meshNullIdx && adj&portalFlag == 0 {
				count++
			}
		}
	}
	if count != n {
		return fmt.Errorf("expected %d adjacency entries, got %d", n, count)
	}
	return nil
}

func (w *pipelineWorld) thenAdjacencyIsSymmetric() error {
	mesh := w.result.Mesh
	for i := int32(0); i < mesh.NPolys; i++ {
		p := mesh.Polys[i*mesh.Nvp*2:]
		for j := int32(0); j < mesh.Nvp; j++ {
			adj := p[mesh.Nvp+j]
			if adj == meshNullIdx || adj&portalFlag != 0 {
				continue
			}
			q := mesh.Polys[int32(adj)*mesh.Nvp*2:]
			back := 0
			for k := int32(0); k < mesh.Nvp; k++ {
				if q[mesh.Nvp+k] == uint16(i) {
					back++
				}
			}
			if back != 1 {
				return fmt.Errorf("polygon %d points at %d but got %d back-references, expected exactly 1", i, adj, back)
			}
		}
	}
	return nil
}

func (w *pipelineWorld) thenTheMeshIsEmpty() error {
	if w.result.Mesh.NPolys != 0 {
		return fmt.Errorf("expected an empty mesh, got %d polygons", w.result.Mesh.NPolys)
	}
	return nil
}

func initializeScenario(sc *godog.ScenarioContext) {
	w := newPipelineWorld()

	sc.Step(`^a flat heightfield named "([^"]*)" sized (\d+) by (\d+)$`,
		func(name string, width, height int) error {
			return w.givenFlatHeightfield(name, int32(width), int32(height))
		})
	sc.Step(`^a two-area heightfield named "([^"]*)" sized (\d+) by (\d+)$`,
		func(name string, width, height int) error {
			return w.givenTwoAreaHeightfield(name, int32(width), int32(height))
		})
	sc.Step(`^a heightfield named "([^"]*)" sized (\d+) by (\d+) with a hole from \((\d+),(\d+)\) to \((\d+),(\d+)\)$`,
		func(name string, width, height, x0, y0, x1, y1 int) error {
			return w.givenHoleHeightfield(name, int32(width), int32(height), int32(x0), int32(y0), int32(x1), int32(y1))
		})
	sc.Step(`^a small region heightfield named "([^"]*)" sized (\d+) by (\d+) with a (\d+) by (\d+) region not touching the border$`,
		func(name string, width, height, sizeW, sizeH int) error {
			return w.givenSmallRegionHeightfieldNotTouching(name, int32(width), int32(height), int32(sizeW), int32(sizeH))
		})
	sc.Step(`^a small region heightfield named "([^"]*)" sized (\d+) by (\d+) with a (\d+) by (\d+) region touching a border of (\d+)$`,
		func(name string, width, height, sizeW, sizeH, border int) error {
			return w.givenSmallRegionHeightfieldTouching(name, int32(width), int32(height), int32(sizeW), int32(sizeH), int32(border))
		})
	sc.Step(`^config border (\d+) minRegionArea (\d+) mergeRegionArea (\d+) maxSimplificationError ([\d.]+) maxEdgeLen (\d+) maxVertsPerPoly (\d+)$`,
		func(border, minRegionArea, mergeRegionArea int, maxError float64, maxEdgeLen, maxVertsPerPoly int) error {
			return w.givenConfig(int32(border), int32(minRegionArea), int32(mergeRegionArea), maxError, int32(maxEdgeLen), int32(maxVertsPerPoly))
		})
	sc.Step(`^wall-edge tessellation is enabled$`, w.givenWallEdgeTessellationEnabled)
	sc.Step(`^the pipeline runs on "([^"]*)"$`, w.whenPipelineRuns)
	sc.Step(`^it succeeds$`, w.thenItSucceeds)
	sc.Step(`^it produces (\d+) regions?$`, func(n int) error { return w.thenItProducesNRegions(n) })
	sc.Step(`^it produces (\d+) contours?$`, func(n int) error { return w.thenItProducesNContours(n) })
	sc.Step(`^contour (\d+) has (\d+) vertices$`, func(idx, n int) error { return w.thenContourHasNVertices(idx, n) })
	sc.Step(`^contour (\d+) has at least (\d+) vertices$`, func(idx, n int) error { return w.thenContourHasAtLeastNVertices(idx, n) })
	sc.Step(`^it produces (\d+) polygons?$`, func(n int) error { return w.thenItProducesNPolygons(n) })
	sc.Step(`^it produces at most (\d+) polygons$`, func(n int) error { return w.thenItProducesAtMostNPolygons(n) })
	sc.Step(`^it produces (\d+) adjacency entries?$`, func(n int) error { return w.thenItProducesNAdjacencyEntries(n) })
	sc.Step(`^adjacency is symmetric$`, w.thenAdjacencyIsSymmetric)
	sc.Step(`^the mesh is empty$`, w.thenTheMeshIsEmpty)
}

// TestPipelineFeatures runs the Gherkin scenarios in features/ against
// the in-process pipeline; no external binary or service is involved.
func TestPipelineFeatures(t *testing.T) {
	format := os.Getenv("GODOG_FORMAT")
	if format == "" {
		format = "pretty"
	}
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format: format,
			Paths:  []string{"features/pipeline.feature"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned from the pipeline feature suite")
	}
}
