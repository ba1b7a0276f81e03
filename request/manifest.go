package request

import (
	"fmt"

	"github.com/pelletier/go-toml"
	"github.com/spf13/afero"

	"github.com/gogpu/shade/ir"
)

// Manifest describes a shader program: the targets to compile for and
// the entry points to link.
type Manifest struct {
	// Name identifies the program in logs and diagnostics.
	Name string `toml:"name"`

	// Targets lists the dialects to compile every entry point for.
	Targets []string `toml:"targets"`

	// Entries are the entry points to link and emit.
	Entries []ManifestEntry `toml:"entry_points"`
}

// ManifestEntry is one entry point of the program.
type ManifestEntry struct {
	// Name is the linkage name of the entry function.
	Name string `toml:"name"`

	// Stage is the pipeline stage: vertex, fragment or compute.
	Stage string `toml:"stage"`
}

// LoadManifest reads and validates a TOML program manifest.
func LoadManifest(fs afero.Fs, path string) (*Manifest, error) {
	buff, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m := &Manifest{}
	if err := toml.Unmarshal(buff, m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Validate checks the manifest for the problems that would make a
// compile request meaningless.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("missing program name")
	}
	if len(m.Entries) == 0 {
		return fmt.Errorf("program %q declares no entry points", m.Name)
	}
	for _, t := range m.Targets {
		if _, ok := ir.TargetFromName(t); !ok {
			return fmt.Errorf("program %q: unknown target %q", m.Name, t)
		}
	}
	for _, e := range m.Entries {
		if e.Name == "" {
			return fmt.Errorf("program %q: entry point without a name", m.Name)
		}
		if e.Stage != "" {
			if _, ok := ir.StageFromName(e.Stage); !ok {
				return fmt.Errorf("entry point %q: unknown stage %q", e.Name, e.Stage)
			}
		}
	}
	return nil
}

// StageOf resolves the stage of entry e, defaulting to fragment.
func (e ManifestEntry) StageOf() ir.Stage {
	if s, ok := ir.StageFromName(e.Stage); ok {
		return s
	}
	return ir.StageFragment
}
