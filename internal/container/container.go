package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"heartpanel/adapters/excel"
	"heartpanel/adapters/sqlstore"
	"heartpanel/domain/metric"
	"heartpanel/internal"
	"heartpanel/internal/api"
	"heartpanel/internal/config"
	"heartpanel/internal/dataset"
	"heartpanel/internal/errors"
	"heartpanel/internal/metrics"
	"heartpanel/internal/pipeline"
	"heartpanel/internal/query"
	"heartpanel/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB       *sqlx.DB
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Repositories (data access layer)
	Files *dataset.FileStorage
	SQL   *sqlstore.PanelStore

	// Query layer
	Catalog *metric.Catalog
	Store   *query.Store

	logger *internal.Logger
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	catalog := metric.NewCatalog()
	if err := catalog.Validate(dataset.CanonicalColumns()); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "metric catalog")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := &Container{
		Config:   cfg,
		Registry: reg,
		Metrics:  metrics.New(reg),
		Catalog:  catalog,
		logger:   internal.DefaultLogger,
	}
	if cfg.Data.PanelPath != "" {
		c.Files = dataset.NewFileStorage(&dataset.StorageConfig{
			Path:      cfg.Data.PanelPath,
			Precision: cfg.Data.Precision,
		})
	}
	return c, nil
}

// InitWithDatabase opens and migrates the SQL store when one is configured
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if !c.Config.Store.SQLEnabled() {
		return nil
	}

	db, err := sqlstore.Open(ctx, c.Config.Store.Driver, c.Config.Store.DSN)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db
	c.SQL = sqlstore.NewPanelStore(db)

	c.logger.Info("[Container] SQL store ready", "driver", c.Config.Store.Driver)
	return nil
}

// Repository is the source the query layer reads from. The SQL store wins when
// configured.
func (c *Container) Repository() ports.PanelRepository {
	if c.SQL != nil {
		return c.SQL
	}
	return c.Files
}

// Repositories lists every sink a pipeline run writes to, primary first
func (c *Container) Repositories() []ports.PanelRepository {
	var out []ports.PanelRepository
	if c.Files != nil {
		out = append(out, c.Files)
	}
	if c.SQL != nil {
		out = append(out, c.SQL)
	}
	return out
}

// QueryStore builds the in-memory query store on first use
func (c *Container) QueryStore() *query.Store {
	if c.Store != nil {
		return c.Store
	}
	cc := c.Config.Cache
	c.Store = query.NewStore(c.Repository(), c.Catalog, query.Options{
		BaseTTL:      cc.BaseTTL,
		BaseSize:     cc.BaseSize,
		FilterTTL:    cc.FilterTTL,
		FilterSize:   cc.FilterSize,
		DefaultCause: c.Config.Data.DefaultCause,
		Metrics:      c.Metrics,
	})
	return c.Store
}

// Server builds the HTTP transport over the query store
func (c *Container) Server() *api.Server {
	return api.NewServer(c.QueryStore(), api.Config{
		Port:           c.Config.Server.Port,
		AllowedOrigins: c.Config.Server.AllowedOrigins,
		ReportPath:     c.Config.Data.ReportPath,
		Gatherer:       c.Registry,
	})
}

// Pipeline builds an ETL run for m writing to every configured repository
func (c *Container) Pipeline(m *pipeline.Manifest, progress func(stage string)) *pipeline.Pipeline {
	var out string
	if c.Files != nil {
		out = c.Files.Path()
	}
	return pipeline.New(m, pipeline.Options{
		Reader:       excel.NewSourceAdapter(),
		Repositories: c.Repositories(),
		OutputPath:   out,
		ReportPath:   c.Config.Data.ReportPath,
		Workers:      c.Config.Impute.Workers,
		Span:         c.Config.Impute.Span,
		Metrics:      c.Metrics,
		Progress:     progress,
	})
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
