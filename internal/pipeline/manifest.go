package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"heartpanel/domain/core"
	"heartpanel/domain/panel"
	"heartpanel/internal/dataset"
	"heartpanel/internal/errors"
)

// SourceSpec declares one raw input table
type SourceSpec struct {
	Name   string            `yaml:"name"`
	Path   string            `yaml:"path"`
	Sheet  string            `yaml:"sheet,omitempty"`
	Rename map[string]string `yaml:"rename,omitempty"` // raw header -> pipeline column
	Drop   []string          `yaml:"drop,omitempty"`
}

// OverrideSpec refreshes columns from a later source after imputation.
// The override value wins; the imputed value is kept where it is null.
type OverrideSpec struct {
	SourceSpec `yaml:",inline"`
	Columns    []string `yaml:"columns"`
}

// Manifest declares the sources of a pipeline run and how they are combined
type Manifest struct {
	Sources     []SourceSpec        `yaml:"sources"`
	Pivots      []dataset.PivotSpec `yaml:"pivots,omitempty"`
	Categorical []string            `yaml:"categorical,omitempty"`
	Identifier  []string            `yaml:"identifier,omitempty"`
	Overrides   []OverrideSpec      `yaml:"overrides,omitempty"`
	Aliases     map[string]string   `yaml:"aliases,omitempty"` // extra entity name mappings

	dir  string
	hash core.Hash
}

// LoadManifest reads a YAML manifest. Relative source paths resolve against
// the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("read manifest %s: %v", path, err))
	}
	m, err := ParseManifest(b)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes and validates manifest YAML
func ParseManifest(b []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("decode manifest: %v", err))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.hash = core.NewHash(b)
	return &m, nil
}

// Hash is the content hash of the manifest bytes
func (m *Manifest) Hash() core.Hash { return m.hash }

// Resolve returns a source path relative to the manifest directory
func (m *Manifest) Resolve(p string) string {
	if filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

// IdentifierColumns defaults to Code
func (m *Manifest) IdentifierColumns() []string {
	if len(m.Identifier) == 0 {
		return []string{panel.ColCode}
	}
	return m.Identifier
}

// Validate checks names, paths and pivot shapes
func (m *Manifest) Validate() error {
	if len(m.Sources) == 0 {
		return errors.ConfigInvalid("manifest declares no sources")
	}
	seen := make(map[string]bool)
	check := func(s SourceSpec) error {
		if s.Name == "" {
			return errors.ConfigInvalid("source name is required")
		}
		if s.Path == "" {
			return errors.ConfigInvalid(fmt.Sprintf("source %s: path is required", s.Name))
		}
		if seen[s.Name] {
			return errors.ConfigInvalid(fmt.Sprintf("duplicate source name %s", s.Name))
		}
		seen[s.Name] = true
		return nil
	}
	for _, s := range m.Sources {
		if err := check(s); err != nil {
			return err
		}
	}
	for _, o := range m.Overrides {
		if err := check(o.SourceSpec); err != nil {
			return err
		}
		if len(o.Columns) == 0 {
			return errors.ConfigInvalid(fmt.Sprintf("override %s: columns are required", o.Name))
		}
	}
	for i, p := range m.Pivots {
		if len(p.Columns) == 0 || len(p.Values) == 0 {
			return errors.ConfigInvalid(fmt.Sprintf("pivot %d (%s): columns and values are required", i, p.Name))
		}
	}
	return nil
}

// prepareSource applies the source's renames and drops in place
func prepareSource(t *panel.Table, s SourceSpec) {
	froms := make([]string, 0, len(s.Rename))
	for from := range s.Rename {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		t.RenameColumn(from, s.Rename[from])
	}
	t.DropColumns(s.Drop...)
}
