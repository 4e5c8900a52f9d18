package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/fault"
)

// ErrNotFound is wrapped by lookups of unknown components.
var ErrNotFound = errors.New("library: component not found")

// Repository knows how to look up components by UUID.
type Repository interface {
	Component(id uuid.UUID) (*Component, error)
}

// MemoryRepository is a simple in-memory implementation used by tests and
// by tools that preload a library directory.
type MemoryRepository struct {
	mu         sync.RWMutex
	components map[uuid.UUID]*Component
	sources    map[uuid.UUID]string
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		components: make(map[uuid.UUID]*Component),
		sources:    make(map[uuid.UUID]string),
	}
}

// Add registers a component. Adding a second component with the same UUID
// fails.
func (r *MemoryRepository) Add(c *Component) error {
	return r.add(c, "")
}

func (r *MemoryRepository) add(c *Component, source string) error {
	if c == nil {
		return fmt.Errorf("library: nil component")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[c.uuid]; exists {
		if prev := r.sources[c.uuid]; prev != "" {
			return fault.Runtimef("library: component %s already loaded from %s", c.uuid, prev)
		}
		return fault.Runtimef("library: component %s already exists", c.uuid)
	}
	r.components[c.uuid] = c
	r.sources[c.uuid] = source
	return nil
}

// Component implements the Repository interface.
func (r *MemoryRepository) Component(id uuid.UUID) (*Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.components[id]; ok {
		return c, nil
	}
	return nil, fault.WrapRuntime(ErrNotFound, "library: component %s not found", id)
}

// Components returns all components sorted by name, then UUID.
func (r *MemoryRepository) Components() []*Component {
	r.mu.RLock()
	out := make([]*Component, 0, len(r.components))
	for _, c := range r.components {
		out = append(out, c)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}
		return out[i].uuid.String() < out[j].uuid.String()
	})
	return out
}

// Len returns the number of components.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.components)
}

// LoadFiles decodes the given YAML files and adds each component. Failures
// of individual files are collected and returned together; the components
// that loaded fine stay in the repository.
func (r *MemoryRepository) LoadFiles(paths ...string) error {
	var errs error
	for _, path := range paths {
		errs = multierr.Append(errs, r.loadFile(path))
	}
	return errs
}

func (r *MemoryRepository) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("library: %w", err)
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return r.add(c, path)
}

// LoadDir walks root and loads every *.yaml / *.yml file.
func (r *MemoryRepository) LoadDir(root string) error {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("library: walk %s: %w", root, err)
	}
	return r.LoadFiles(paths...)
}
