package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type solutionsDoc struct {
	Solutions []Solution `yaml:"solutions"`
}

type mappingsDoc struct {
	Mappings []AuditMapping `yaml:"mappings"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the embedded data. It is parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(BuiltinFS())
	})
	return defaultCatalog, defaultErr
}

// MustLoad loads the catalog from dir, or the embedded data when dir is empty,
// and panics if the data is inconsistent.
func MustLoad(dir string) *Catalog {
	var (
		c   *Catalog
		err error
	)
	if strings.TrimSpace(dir) == "" {
		c, err = Default()
	} else {
		c, err = LoadDir(dir)
	}
	if err != nil {
		panic(err)
	}
	return c
}

// LoadDir loads solutions.yaml and audit_mappings.yaml from a directory.
func LoadDir(dir string) (*Catalog, error) {
	return Load(os.DirFS(dir))
}

// Load parses and validates catalog data from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	var sols solutionsDoc
	if err := decodeFile(fsys, solutionsFile, &sols); err != nil {
		return nil, err
	}
	var maps mappingsDoc
	if err := decodeFile(fsys, mappingsFile, &maps); err != nil {
		return nil, err
	}
	return New(sols.Solutions, maps.Mappings)
}

// New builds a catalog from in-memory tables after validating them.
func New(solutions []Solution, mappings []AuditMapping) (*Catalog, error) {
	if err := validate(solutions, mappings); err != nil {
		return nil, err
	}
	c := &Catalog{
		solutions: solutions,
		mappings:  mappings,
		byID:      make(map[string]int, len(solutions)),
		byAudit:   make(map[string]int, len(mappings)),
	}
	for i, s := range solutions {
		c.byID[s.ID] = i
	}
	for i, m := range mappings {
		c.byAudit[m.AuditID] = i
	}
	return c, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("catalog: parse %s: %w", name, err)
	}
	return nil
}

func validate(solutions []Solution, mappings []AuditMapping) error {
	var problems []error
	ids := make(map[string]struct{}, len(solutions))
	for i, s := range solutions {
		switch {
		case strings.TrimSpace(s.ID) == "":
			problems = append(problems, fmt.Errorf("solution %d: empty id", i))
		case strings.TrimSpace(s.Name) == "":
			problems = append(problems, fmt.Errorf("solution %q: empty name", s.ID))
		}
		if _, dup := ids[s.ID]; dup {
			problems = append(problems, fmt.Errorf("solution %q: duplicate id", s.ID))
		}
		ids[s.ID] = struct{}{}
	}

	audits := make(map[string]struct{}, len(mappings))
	for i, m := range mappings {
		if strings.TrimSpace(m.AuditID) == "" {
			problems = append(problems, fmt.Errorf("mapping %d: empty audit id", i))
			continue
		}
		if _, dup := audits[m.AuditID]; dup {
			problems = append(problems, fmt.Errorf("mapping %q: duplicate audit id", m.AuditID))
		}
		audits[m.AuditID] = struct{}{}
		if !m.Priority.valid() {
			problems = append(problems, fmt.Errorf("mapping %q: invalid priority %q", m.AuditID, m.Priority))
		}
		if len(m.SolutionIDs) == 0 {
			problems = append(problems, fmt.Errorf("mapping %q: no solutions", m.AuditID))
		}
		for _, id := range m.SolutionIDs {
			if _, ok := ids[id]; !ok {
				problems = append(problems, fmt.Errorf("mapping %q: unknown solution %q", m.AuditID, id))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("catalog: invalid data: %w", errors.Join(problems...))
	}
	return nil
}
