package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Source errors abort the pipeline before any join runs
	ErrMissingKeyColumn = errors.New("source is missing a required key column")
	ErrEmptySource      = errors.New("source has no rows")
	ErrNoSources        = errors.New("no sources provided")
	ErrDuplicateColumn  = errors.New("source has a duplicate column header")

	// Query errors. ErrNoData is the only failure consumers are expected to handle;
	// everything that resolves to "no column" wraps it.
	ErrNoData            = errors.New("no data available")
	ErrUnsupportedMetric = fmt.Errorf("%w: unsupported metric", ErrNoData)
	ErrUnknownSlice      = fmt.Errorf("%w: unknown demographic slice", ErrUnsupportedMetric)

	ErrInvalidFilter = errors.New("invalid filter parameters")
)

// NewMissingKeyError reports which source lacks which key column
func NewMissingKeyError(source, column string) error {
	return fmt.Errorf("%w: %s has no %q column", ErrMissingKeyColumn, source, column)
}

// NewUnsupportedMetricError names the offending metric/slice combination
func NewUnsupportedMetricError(slice, metric string) error {
	return fmt.Errorf("%w: %q for slice %q", ErrUnsupportedMetric, metric, slice)
}

// NewInvalidFilterError names the bad parameter
func NewInvalidFilterError(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidFilter, field, reason)
}

// IsNoData reports whether err means "no data available" rather than a failure
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

// IsSourceError reports whether err is a fatal source configuration error
func IsSourceError(err error) bool {
	return errors.Is(err, ErrMissingKeyColumn) ||
		errors.Is(err, ErrEmptySource) ||
		errors.Is(err, ErrNoSources) ||
		errors.Is(err, ErrDuplicateColumn)
}
