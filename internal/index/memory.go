package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/navspec/internal/domain"
)

// MemoryIndex caches the parsed configurations of the config directory.
// Stored configurations are shared with callers and must be treated as
// read-only.
type MemoryIndex struct {
	mu         sync.RWMutex
	names      []string                        // sorted, includes files that failed to parse
	configs    map[string]domain.Configuration // name -> parsed configuration
	failures   map[string]string               // name -> parse error
	lastReload time.Time
	reloads    uint64
}

// NewMemoryIndex creates an empty index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		configs:  make(map[string]domain.Configuration),
		failures: make(map[string]string),
	}
}

// Replace swaps the whole content of the index.
func (idx *MemoryIndex) Replace(names []string, configs map[string]domain.Configuration, failures map[string]error) {
	n := append([]string(nil), names...)
	c := make(map[string]domain.Configuration, len(configs))
	for k, v := range configs {
		c[k] = v
	}
	f := make(map[string]string, len(failures))
	for k, err := range failures {
		f[k] = err.Error()
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.names = n
	idx.configs = c
	idx.failures = f
	idx.lastReload = time.Now()
	idx.reloads++
}

// Get returns the configuration stored under name.
func (idx *MemoryIndex) Get(name string) (domain.Configuration, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	cfg, ok := idx.configs[name]
	return cfg, ok
}

// Names returns every configuration name seen by the last reload.
func (idx *MemoryIndex) Names() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return append([]string(nil), idx.names...)
}

// Count returns the number of parsed configurations
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.configs)
}

// Failures returns the files that did not parse, with their error.
func (idx *MemoryIndex) Failures() map[string]string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(map[string]string, len(idx.failures))
	for k, v := range idx.failures {
		out[k] = v
	}
	return out
}

// GetLastReload returns the timestamp of the last reload, zero if none.
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

// Reloads returns how many times the index was replaced.
func (idx *MemoryIndex) Reloads() uint64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.reloads
}
