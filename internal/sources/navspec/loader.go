package navspec

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/navspec/internal/domain"
)

// Load reads and parses one configuration file.
func (s *Source) Load(name string) (domain.Configuration, error) {
	path, err := s.path(name)
	if err != nil {
		return domain.Configuration{}, fmt.Errorf("%w: %w", ErrConfigNotFound, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Configuration{}, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return domain.Configuration{}, fmt.Errorf("failed to read config %s: %w", name, err)
	}

	return Parse(data)
}

// Parse decodes a YAML configuration. An empty document yields an empty
// configuration.
func Parse(data []byte) (domain.Configuration, error) {
	var cfg domain.Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Configuration{}, fmt.Errorf("failed to parse config yaml: %w", err)
	}
	return cfg, nil
}

// Snapshot is the parsed content of the whole directory.
type Snapshot struct {
	Names   []string                        // every *.yaml file, sorted
	Configs map[string]domain.Configuration // files that parsed
	Errors  map[string]error                // files that did not
}

// LoadAll lists the directory and parses every configuration. A file that
// fails to parse is reported in Errors and does not fail the scan.
func (s *Source) LoadAll() (Snapshot, error) {
	names, err := s.List()
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Names:   names,
		Configs: make(map[string]domain.Configuration, len(names)),
		Errors:  make(map[string]error),
	}
	for _, name := range names {
		cfg, err := s.Load(name)
		if err != nil {
			snap.Errors[name] = err
			continue
		}
		snap.Configs[name] = cfg
	}
	return snap, nil
}
