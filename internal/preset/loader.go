package preset

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

// Default is the preset used when none is configured
const Default = "web"

//go:embed configs/*.yaml
var configFS embed.FS

// builtinPresets maps preset names to their definitions
var builtinPresets = map[string]*Preset{}

func init() {
	entries, err := configFS.ReadDir("configs")
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		data, err := configFS.ReadFile(path.Join("configs", entry.Name()))
		if err != nil {
			continue
		}

		p, err := parse(data)
		if err != nil {
			continue
		}

		builtinPresets[p.Name] = p
	}
}

func parse(data []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load returns a copy of a built-in preset by name
func Load(name string) (*Preset, error) {
	if p, ok := builtinPresets[name]; ok {
		cp := *p
		cp.Extensions = append([]string(nil), p.Extensions...)
		cp.Exclusions = append([]string(nil), p.Exclusions...)
		return &cp, nil
	}
	return nil, fmt.Errorf("unknown preset: %s", name)
}

// Available returns the names of all built-in presets, sorted
func Available() []string {
	names := make([]string, 0, len(builtinPresets))
	for name := range builtinPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFromFile loads a user-defined preset from a YAML file
func LoadFromFile(filename string) (*Preset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}

	p, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid preset %s: %w", filename, err)
	}
	return p, nil
}
