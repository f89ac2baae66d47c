// Package pipeline runs the batch ETL: read, normalize, merge, reshape,
// impute, override, assemble and persist the canonical panel.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"heartpanel/domain/core"
	"heartpanel/domain/panel"
	"heartpanel/domain/run"
	"heartpanel/internal"
	"heartpanel/internal/dataset"
	"heartpanel/internal/errors"
	"heartpanel/internal/impute"
	"heartpanel/internal/metrics"
	"heartpanel/internal/normalize"
	"heartpanel/ports"
)

var tracer = otel.Tracer("heartpanel/pipeline")

// CodeVersion is stamped into every run fingerprint
const CodeVersion = "heartpanel-etl/1"

// Options wires the pipeline's collaborators
type Options struct {
	Reader       ports.SourceReader
	Repositories []ports.PanelRepository // every sink receives the panel; the first is primary
	OutputPath   string                  // recorded in the run manifest
	ReportPath   string                  // Markdown report; empty skips it
	Workers      int
	Span         int
	Metrics      *metrics.Metrics
	Progress     func(stage string)
}

// Result is everything a run produced
type Result struct {
	Manifest   *run.Manifest
	Panel      *panel.Table
	Imputation *impute.Stats
	Merge      *dataset.MergeResult
	Assembly   *dataset.AssembleResult
	Report     string
}

// Pipeline executes one manifest
type Pipeline struct {
	manifest   *Manifest
	opts       Options
	normalizer *normalize.Normalizer
	merger     *dataset.Merger
	engine     *impute.Engine
	assembler  *dataset.Assembler
	metrics    *metrics.Metrics
	logger     *internal.Logger
}

// New creates a pipeline for m
func New(m *Manifest, opts Options) *Pipeline {
	cfg := impute.DefaultConfig()
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if opts.Span > 0 {
		cfg.Span = opts.Span
	}
	cfg.Categorical = m.Categorical
	cfg.Identifiers = m.IdentifierColumns()

	return &Pipeline{
		manifest:   m,
		opts:       opts,
		normalizer: normalize.New(m.Aliases),
		merger:     dataset.NewMerger(nil),
		engine:     impute.NewEngine(cfg),
		assembler:  dataset.NewAssembler(nil),
		metrics:    opts.Metrics,
		logger:     internal.DefaultLogger,
	}
}

// Run executes every stage and returns the run manifest
func (p *Pipeline) Run(ctx context.Context) (*run.Manifest, error) {
	res, err := p.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return res.Manifest, nil
}

// Execute runs every stage in order. Each stage consumes the previous stage's
// output completely; any error aborts the run before anything is persisted.
func (p *Pipeline) Execute(ctx context.Context) (*Result, error) {
	if p.opts.Reader == nil {
		return nil, errors.ConfigInvalid("pipeline has no source reader")
	}
	if len(p.opts.Repositories) == 0 {
		return nil, errors.ConfigInvalid("pipeline has no panel repository")
	}

	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()

	sourceHash, err := p.fingerprintSources()
	if err != nil {
		return nil, err
	}
	rm := run.NewManifest(run.NewRunFingerprint(p.manifest.Hash(), sourceHash, CodeVersion))
	rm.OutputPath = p.opts.OutputPath
	rm.ReportPath = p.opts.ReportPath
	span.SetAttributes(attribute.String("run_id", rm.RunID.String()))
	p.logger.Info("[Pipeline] run started", "run_id", rm.RunID, "sources", len(p.manifest.Sources),
		"fingerprint", rm.Fingerprint.Fingerprint)

	res := &Result{Manifest: rm}
	var sources, overrides []*panel.Table
	var t *panel.Table

	err = p.stage(ctx, rm, run.StageRead, func(ctx context.Context) (int, int, error) {
		var rows, cols int
		for _, s := range p.manifest.Sources {
			tbl, err := p.read(ctx, s)
			if err != nil {
				return 0, 0, err
			}
			rm.Sources = append(rm.Sources, s.Name)
			sources = append(sources, tbl)
			rows += tbl.Len()
			cols += len(tbl.Columns)
		}
		for _, o := range p.manifest.Overrides {
			tbl, err := p.read(ctx, o.SourceSpec)
			if err != nil {
				return 0, 0, err
			}
			overrides = append(overrides, tbl)
		}
		return rows, cols, nil
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	err = p.stage(ctx, rm, run.StageNormalize, func(context.Context) (int, int, error) {
		changed := 0
		for _, tbl := range append(append([]*panel.Table(nil), sources...), overrides...) {
			changed += p.normalizer.Apply(tbl, panel.ColEntity)
		}
		return changed, 1, nil
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	err = p.stage(ctx, rm, run.StageMerge, func(ctx context.Context) (int, int, error) {
		merged, mr, err := p.merger.MergeAll(ctx, nil, sources)
		if err != nil {
			return 0, 0, err
		}
		// one column per indicator before imputation
		p.assembler.Reconcile(merged)
		rm.Collisions = mr.Collisions
		res.Merge = mr
		t = merged
		return t.Len(), len(t.Columns), nil
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	err = p.stage(ctx, rm, run.StageReshape, func(context.Context) (int, int, error) {
		wide, pivoted, err := dataset.Reshape(t, p.manifest.Pivots)
		if err != nil {
			return 0, 0, err
		}
		p.logger.Debug("[Pipeline] pivot columns", "count", len(pivoted))
		t = wide
		return t.Len(), len(t.Columns), nil
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	err = p.stage(ctx, rm, run.StageImpute, func(ctx context.Context) (int, int, error) {
		imputed, st, err := p.engine.Run(ctx, t)
		if err != nil {
			return 0, 0, err
		}
		t = imputed
		res.Imputation = st
		rm.Entities = st.Entities
		p.recordImputation(rm, st)
		return t.Len(), len(t.Columns), nil
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	err = p.stage(ctx, rm, run.StageOverride, func(context.Context) (int, int, error) {
		for i, o := range p.manifest.Overrides {
			refreshed, err := p.override(t, overrides[i], o)
			if err != nil {
				return 0, 0, err
			}
			t = refreshed
		}
		return t.Len(), len(t.Columns), nil
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	err = p.stage(ctx, rm, run.StageAssemble, func(context.Context) (int, int, error) {
		final, ar, err := p.assembler.Assemble(t)
		if err != nil {
			return 0, 0, err
		}
		t = final
		res.Assembly = ar
		return t.Len(), len(t.Columns), nil
	})
	if err != nil {
		return nil, p.fail(span, err)
	}
	rm.Rows, rm.Columns = t.Len(), len(t.Columns)

	err = p.stage(ctx, rm, run.StagePersist, func(ctx context.Context) (int, int, error) {
		for _, repo := range p.opts.Repositories {
			if err := repo.SavePanel(ctx, rm.RunID, t); err != nil {
				return 0, 0, err
			}
		}
		return t.Len(), len(t.Columns), nil
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	rm.Finish()
	res.Panel = t
	res.Report = BuildReport(rm, res.Imputation, t)
	if p.opts.ReportPath != "" {
		if err := os.WriteFile(p.opts.ReportPath, []byte(res.Report), 0o644); err != nil {
			return nil, p.fail(span, errors.StorageError("failed to write imputation report", err))
		}
	}

	p.logger.Info("[Pipeline] run complete", "run_id", rm.RunID, "rows", rm.Rows, "columns", rm.Columns,
		"entities", rm.Entities, "cells_filled", rm.CellsFilled, "elapsed_ms", rm.Duration().Milliseconds())
	return res, nil
}

// stage times fn, records it on the manifest and emits a span and a metric
func (p *Pipeline) stage(ctx context.Context, rm *run.Manifest, name string, fn func(context.Context) (int, int, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.opts.Progress != nil {
		p.opts.Progress(name)
	}
	ctx, span := tracer.Start(ctx, "pipeline."+name, trace.WithAttributes(attribute.String("stage", name)))
	defer span.End()

	start := time.Now()
	rows, cols, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return errors.Wrapf(err, "stage %s", name)
	}
	d := time.Since(start)
	rm.RecordStage(name, d, rows, cols)
	p.metrics.ObserveStage(name, d)
	span.SetAttributes(attribute.Int("rows", rows), attribute.Int("columns", cols))
	p.logger.Info("[Pipeline] stage complete", "stage", name, "rows", rows, "columns", cols,
		"elapsed_ms", d.Milliseconds())
	return nil
}

func (p *Pipeline) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.logger.Error("[Pipeline] run aborted", "error", err)
	return err
}

func (p *Pipeline) read(ctx context.Context, s SourceSpec) (*panel.Table, error) {
	t, err := p.opts.Reader.ReadSource(ctx, ports.SourceRequest{
		Name:  s.Name,
		Path:  p.manifest.Resolve(s.Path),
		Sheet: s.Sheet,
	})
	if err != nil {
		return nil, err
	}
	prepareSource(t, s)
	p.logger.Debug("[Pipeline] source read", "source", s.Name, "rows", t.Len(), "columns", len(t.Columns))
	return t, nil
}

// override left-joins the declared columns of src onto t. Duplicate keys in src
// collapse to their first non-null values first, so no panel row is multiplied.
func (p *Pipeline) override(t, src *panel.Table, o OverrideSpec) (*panel.Table, error) {
	keep := []string{panel.ColEntity, panel.ColYear}
	for _, c := range o.Columns {
		if !src.HasColumn(c) {
			return nil, errors.SourceInvalid(o.Name, fmt.Errorf("override column %q not found", c))
		}
		keep = append(keep, c)
	}
	for _, k := range keep[:2] {
		if !src.HasColumn(k) {
			return nil, errors.SourceInvalid(o.Name, core.NewMissingKeyError(o.Name, k))
		}
	}

	proj := panel.NewTable(o.Name, keep...)
	for _, r := range src.Rows {
		row := make(panel.Row, len(keep))
		for _, c := range keep {
			row[c] = r.Get(c)
		}
		proj.Append(row)
	}
	collapsed, _, err := dataset.Reshape(proj, nil)
	if err != nil {
		return nil, err
	}
	collapsed.Name = o.Name
	out, err := p.merger.LeftJoin(t, collapsed)
	if err != nil {
		return nil, err
	}
	out.Name = t.Name
	// the assembler reconciles the suffixed pair with the override winning
	return out, nil
}

func (p *Pipeline) recordImputation(rm *run.Manifest, st *impute.Stats) {
	var spline, blend, mode, carry int
	for _, c := range st.Columns {
		spline += c.SplineFilled
		blend += c.BlendFilled
		mode += c.ModeFilled
		carry += c.CarryFilled
	}
	rm.CellsFilled = spline + blend + mode + carry
	p.metrics.AddImputed("spline", spline)
	p.metrics.AddImputed("blend", blend)
	p.metrics.AddImputed("mode", mode)
	p.metrics.AddImputed("carry", carry)
}

// fingerprintSources hashes every declared input file
func (p *Pipeline) fingerprintSources() (core.Hash, error) {
	inputs := make(map[string][]byte)
	add := func(s SourceSpec) error {
		b, err := os.ReadFile(p.manifest.Resolve(s.Path))
		if err != nil {
			return errors.SourceInvalid(s.Name, err)
		}
		inputs[s.Name] = b
		return nil
	}
	for _, s := range p.manifest.Sources {
		if err := add(s); err != nil {
			return "", err
		}
	}
	for _, o := range p.manifest.Overrides {
		if err := add(o.SourceSpec); err != nil {
			return "", err
		}
	}
	return core.SourceFingerprint(inputs), nil
}
