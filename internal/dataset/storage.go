package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"heartpanel/adapters/excel"
	"heartpanel/domain/core"
	"heartpanel/domain/panel"
	"heartpanel/internal"
	"heartpanel/internal/errors"
	"heartpanel/ports"
)

// StorageConfig holds configuration for panel file storage
type StorageConfig struct {
	Path      string // canonical panel CSV
	Precision int32  // decimal places kept for numeric cells
}

// DefaultStorageConfig returns the default storage settings
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{Path: "data/heart_disease_data.csv", Precision: 6}
}

// FileStorage persists the canonical panel as a single delimited file
type FileStorage struct {
	config *StorageConfig
	logger *internal.Logger
}

var _ ports.PanelRepository = (*FileStorage)(nil)

// NewFileStorage creates a new panel file storage
func NewFileStorage(config *StorageConfig) *FileStorage {
	if config == nil {
		config = DefaultStorageConfig()
	}
	return &FileStorage{config: config, logger: internal.DefaultLogger}
}

// Path returns the panel file location
func (s *FileStorage) Path() string { return s.config.Path }

// FormatValue renders a cell for the persisted file
func (s *FileStorage) FormatValue(v panel.Value) string {
	if f, ok := v.Float(); ok {
		return decimal.NewFromFloat(f).Round(s.config.Precision).String()
	}
	return v.String()
}

// SavePanel writes the panel through a temp file and renames it into place.
func (s *FileStorage) SavePanel(ctx context.Context, runID core.RunID, t *panel.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.config.Path), 0o755); err != nil {
		return errors.StorageError("failed to create storage directory", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.config.Path), ".panel-*.csv")
	if err != nil {
		return errors.StorageError("failed to create temp file", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Columns); err != nil {
		tmp.Close()
		return errors.StorageError("failed to write header", err)
	}
	record := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			record[i] = s.FormatValue(r.Get(c))
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return errors.StorageError("failed to write row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return errors.StorageError("failed to flush panel", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.StorageError("failed to close panel file", err)
	}
	if err := os.Rename(tmp.Name(), s.config.Path); err != nil {
		return errors.StorageError("failed to move panel into place", err)
	}

	s.logger.Info("[FileStorage] panel saved", "run_id", runID, "path", s.config.Path,
		"rows", t.Len(), "columns", len(t.Columns))
	return nil
}

// LoadPanel reads the persisted panel back with column-level typing
func (s *FileStorage) LoadPanel(ctx context.Context) (*panel.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := excel.NewDataReader(s.config.Path, excel.DefaultReaderConfig()).ReadData()
	if err != nil {
		return nil, errors.StorageError(fmt.Sprintf("failed to load panel %s", s.config.Path), err)
	}
	return excel.ToTable("panel", data), nil
}
