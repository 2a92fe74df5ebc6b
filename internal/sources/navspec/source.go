package navspec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/navspec/internal/domain"
)

const (
	// ConfigDirName is the subdirectory preferred for configurations when
	// it exists under the project root.
	ConfigDirName = "config"

	// DefaultConfigName is created when the directory holds no dashboard.
	DefaultConfigName = "default.yaml"

	DefaultName        = "Company Dashboard"
	DefaultDescription = "Your company tools and resources"
)

var (
	// ErrConfigNotFound is returned for names that do not resolve to a
	// readable configuration file.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrInvalidName rejects names that could escape the directory.
	ErrInvalidName = errors.New("invalid configuration name")
)

// Source reads dashboard configurations from a directory of YAML files.
type Source struct {
	root string // project root, holds .navspec/
	dir  string // where *.yaml files live
}

// NewSource resolves the configuration directory for root: <root>/config
// when that directory exists, root itself otherwise.
func NewSource(root string) (*Source, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", root, err)
	}

	st, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("config path does not exist: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("config path %s is not a directory", abs)
	}

	dir := abs
	if st, err := os.Stat(filepath.Join(abs, ConfigDirName)); err == nil && st.IsDir() {
		dir = filepath.Join(abs, ConfigDirName)
	}

	return &Source{root: abs, dir: dir}, nil
}

// Root is the project root.
func (s *Source) Root() string { return s.root }

// Dir is the directory configurations are read from.
func (s *Source) Dir() string { return s.dir }

// Existing lists the configuration names currently on disk, sorted.
func (s *Source) Existing() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsConfigName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// List returns the available configuration names, sorted. default.yaml is
// written first when it does not exist yet.
func (s *Source) List() ([]string, error) {
	if _, err := s.EnsureDefault(); err != nil {
		return nil, err
	}
	return s.Existing()
}

// EnsureDefault writes the stock default.yaml when it is missing.
func (s *Source) EnsureDefault() (created bool, err error) {
	path := filepath.Join(s.dir, DefaultConfigName)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat default config: %w", err)
	}

	if err := s.Save(DefaultConfigName, domain.DefaultConfiguration(DefaultName, DefaultDescription)); err != nil {
		return false, err
	}
	return true, nil
}

// IsConfigName reports whether name is a plain, visible *.yaml file name.
func IsConfigName(name string) bool {
	return name != "" &&
		!strings.HasPrefix(name, ".") &&
		filepath.Base(name) == name &&
		!strings.ContainsAny(name, `/\`) &&
		strings.HasSuffix(name, domain.ConfigExt) &&
		len(name) > len(domain.ConfigExt)
}

func (s *Source) path(name string) (string, error) {
	if !IsConfigName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}
