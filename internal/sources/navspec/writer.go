package navspec

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/navspec/internal/domain"
)

// Save writes cfg as <dir>/<name>, replacing any existing file atomically.
func (s *Source) Save(name string, cfg domain.Configuration) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config %s: %w", name, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace config %s: %w", name, err)
	}
	return nil
}

// Init prepares root for a new dashboard: creates <root>/config and writes
// default.yaml with the given name and description, overwriting it.
func Init(root, name, description string) (*Source, error) {
	if err := os.MkdirAll(filepath.Join(root, ConfigDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	src, err := NewSource(root)
	if err != nil {
		return nil, err
	}
	if err := src.Save(DefaultConfigName, domain.DefaultConfiguration(name, description)); err != nil {
		return nil, err
	}
	return src, nil
}
