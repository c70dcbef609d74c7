package preset

import (
	"errors"
	"fmt"
)

// Preset is a named set of file suffixes to count and directories to skip.
type Preset struct {
	// Name is the identifier used with --preset (e.g., "web", "go")
	Name string `yaml:"name"`

	// Description is a one-line summary shown by the presets command
	Description string `yaml:"description"`

	// Extensions are the accepted file name suffixes
	Extensions []string `yaml:"extensions"`

	// Exclusions are directory names (or substrings) pruned from traversal
	Exclusions []string `yaml:"exclusions"`
}

// Validate checks that the preset can drive a count
func (p *Preset) Validate() error {
	if p.Name == "" {
		return errors.New("preset has no name")
	}
	if len(p.Extensions) == 0 {
		return fmt.Errorf("preset %s has no extensions", p.Name)
	}
	for _, ext := range p.Extensions {
		if ext == "" {
			return fmt.Errorf("preset %s has an empty extension", p.Name)
		}
	}
	return nil
}
