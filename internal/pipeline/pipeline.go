// Package pipeline runs one shot through the grading chain: acquire the
// 8-bit source, expand it to 16 bits, grade it, and export the artifacts.
//
// A run is synchronous and allocates its own buffers, so any number of runs
// may share one Pipeline from separate goroutines as long as each uses a
// distinct identifier.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/ironsheep/cinegrade-mcp/internal/export"
	"github.com/ironsheep/cinegrade-mcp/internal/grade"
	"github.com/ironsheep/cinegrade-mcp/internal/raster"
)

// Fetcher produces the 8-bit source raster. *acquire.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*raster.Buffer8, error)
}

// Exporter writes the artifacts of a graded frame. *export.Exporter
// implements it.
type Exporter interface {
	Export(graded *raster.Buffer16, original *raster.Buffer8, base string) (export.Manifest, error)
}

// Stage names used in log records.
const (
	StageResolve = "resolve"
	StageFetch   = "fetch"
	StageExpand  = "expand"
	StageGrade   = "grade"
	StageExport  = "export"
)

// Pipeline wires the stages together.
type Pipeline struct {
	fetcher  Fetcher
	exporter Exporter
	logger   *slog.Logger
}

// New creates a Pipeline. A nil logger selects slog.Default().
func New(fetcher Fetcher, exporter Exporter, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{fetcher: fetcher, exporter: exporter, logger: logger}
}

// Process grades the image at source and returns the manifest of written
// artifacts, whose filenames are prefixed with identifier.
//
// Parameters are resolved before anything is fetched. Any failure aborts
// the run and is returned unchanged: *grade.ParamError, *acquire.Error or
// *export.Error. No partial manifest is returned.
func (p *Pipeline) Process(ctx context.Context, source, identifier string, params grade.Params) (export.Manifest, error) {
	log := p.logger.With("shot", identifier)
	began := time.Now()

	var eff grade.Effective
	err := p.stage(log, StageResolve, func() (err error) {
		eff, err = params.Resolve()
		return err
	})
	if err != nil {
		return export.Manifest{}, err
	}
	if params.Preset != grade.PresetNone && !grade.KnownPreset(params.Preset) {
		log.Warn("unknown preset ignored", "preset", params.Preset)
	}

	var original *raster.Buffer8
	err = p.stage(log, StageFetch, func() (err error) {
		original, err = p.fetcher.Fetch(ctx, source)
		return err
	})
	if err != nil {
		return export.Manifest{}, err
	}

	start := time.Now()
	expanded := raster.Expand(original)
	log.Debug("stage complete", "stage", StageExpand, "elapsed", time.Since(start))

	start = time.Now()
	graded := grade.Apply(expanded, eff)
	log.Debug("stage complete", "stage", StageGrade, "elapsed", time.Since(start))

	var manifest export.Manifest
	err = p.stage(log, StageExport, func() (err error) {
		manifest, err = p.exporter.Export(graded, original, identifier)
		return err
	})
	if err != nil {
		return export.Manifest{}, err
	}

	log.Info("shot processed",
		"width", original.Width,
		"height", original.Height,
		"elapsed", time.Since(began))
	return manifest, nil
}

// stage runs fn and logs its outcome and duration.
func (p *Pipeline) stage(log *slog.Logger, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if err != nil {
		log.Error("stage failed", "stage", name, "elapsed", time.Since(start), "error", err)
		return err
	}
	log.Debug("stage complete", "stage", name, "elapsed", time.Since(start))
	return nil
}
