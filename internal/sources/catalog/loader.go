// Package catalog reads the YAML catalog of well-known services and
// registers its entries with the tracker.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of a catalog file.
type Loader struct {
	filePath string
}

// NewLoader creates a new catalog loader.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Path returns the catalog file path.
func (l *Loader) Path() string { return l.filePath }

// Load reads and parses the catalog file.
func (l *Loader) Load() (Config, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}

	return config, nil
}
