// Package query serves filtered, column-projected views of the canonical panel
// with bounded-lifetime caching.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"heartpanel/domain/core"
	"heartpanel/domain/metric"
	"heartpanel/domain/panel"
	"heartpanel/internal"
	"heartpanel/internal/cache"
	"heartpanel/internal/metrics"
	"heartpanel/ports"
)

const datasetKey = "dataset"

// Options configures the store's caches
type Options struct {
	BaseTTL      time.Duration
	BaseSize     int
	FilterTTL    time.Duration
	FilterSize   int
	DefaultCause string
	Metrics      *metrics.Metrics
}

// DefaultOptions returns long-lived base entries and short-lived filter entries
func DefaultOptions() Options {
	return Options{
		BaseTTL:      30 * time.Minute,
		BaseSize:     4,
		FilterTTL:    5 * time.Minute,
		FilterSize:   256,
		DefaultCause: "Cardiovascular diseases",
	}
}

// Store loads the panel once and answers filter queries from memory
type Store struct {
	repo    ports.PanelRepository
	catalog *metric.Catalog
	opts    Options

	mu  sync.RWMutex
	raw *panel.Table

	base    *cache.Cache[*Dataset]
	filters *cache.Cache[*Result]
	metrics *metrics.Metrics
	logger  *internal.Logger
}

// NewStore creates a store over repo. Nothing is read until first use.
func NewStore(repo ports.PanelRepository, catalog *metric.Catalog, opts Options) *Store {
	if catalog == nil {
		catalog = metric.NewCatalog()
	}
	return &Store{
		repo:    repo,
		catalog: catalog,
		opts:    opts,
		base:    cache.New[*Dataset]("base", opts.BaseSize, opts.BaseTTL, opts.Metrics),
		filters: cache.New[*Result]("filter", opts.FilterSize, opts.FilterTTL, opts.Metrics),
		metrics: opts.Metrics,
		logger:  internal.DefaultLogger,
	}
}

// Catalog returns the metric catalog the store resolves columns with
func (s *Store) Catalog() *metric.Catalog { return s.catalog }

// EnsureLoaded reads the panel on first call. Concurrent first callers share
// one read; a failed read is retried by the next caller.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.raw != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raw != nil {
		return nil
	}

	start := time.Now()
	t, err := s.repo.LoadPanel(ctx)
	if err != nil {
		return fmt.Errorf("load panel: %w", err)
	}
	s.raw = t
	s.metrics.SetPanelRows(t.Len())

	var missing []string
	for _, col := range s.catalog.Columns() {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		s.logger.Warn("[QueryStore] panel lacks metric columns", "columns", missing)
	}
	s.logger.Info("[QueryStore] panel loaded", "rows", t.Len(), "columns", len(t.Columns),
		"elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// Dataset returns the prepared panel with its indexes. After the base TTL the
// preparation is recomputed from the in-memory panel, never re-read.
func (s *Store) Dataset(ctx context.Context) (*Dataset, error) {
	if err := s.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.base.GetOrCompute(ctx, datasetKey, func(context.Context) (*Dataset, error) {
		s.mu.RLock()
		raw := s.raw
		s.mu.RUnlock()
		return prepare(raw), nil
	})
}

// Index returns the precomputed selector values
func (s *Store) Index(ctx context.Context) (*Index, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Index, nil
}

// Filter returns the rows matching every supplied parameter. When a metric is
// given, rows null in its column are dropped; a metric that resolves to no
// column is reported as core.ErrNoData.
func (s *Store) Filter(ctx context.Context, p FilterParams) (*Result, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveFilterLatency(time.Since(start)) }()

	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return s.filters.GetOrCompute(ctx, p.Key(), func(context.Context) (*Result, error) {
		return s.runFilter(ds, p)
	})
}

// MetricColumn resolves the panel column for a slice and metric label
func (s *Store) MetricColumn(ds *Dataset, gender, label string) (string, error) {
	col, err := s.catalog.Column(gender, label)
	if err != nil {
		return "", err
	}
	if !ds.Table.HasColumn(col) {
		return "", fmt.Errorf("%w: column %s is not in the panel", core.ErrNoData, col)
	}
	return col, nil
}

func (s *Store) runFilter(ds *Dataset, p FilterParams) (*Result, error) {
	var metricCol string
	if p.Metric != "" {
		col, err := s.MetricColumn(ds, p.Gender, p.Metric)
		if err != nil {
			return nil, err
		}
		metricCol = col
	}

	rows := filterRows(ds.Table, p, metricCol)
	res := &Result{
		Columns:      append([]string(nil), ds.Table.Columns...),
		Records:      make([]panel.Record, len(rows)),
		MetricColumn: metricCol,
	}
	for i, r := range rows {
		res.Records[i] = toRecord(r, ds.Table.Columns)
	}
	s.logger.Debug("[QueryStore] filter computed", "key", p.Key(), "rows", len(rows))
	return res, nil
}
