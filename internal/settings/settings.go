package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pthm/loctally/internal/preset"
	"github.com/pthm/loctally/internal/remote"
	"github.com/pthm/loctally/internal/tally"
)

// ConfigName is the base name of the optional project config file
const ConfigName = ".loctally"

// EnvPrefix prefixes environment overrides (LOCTALLY_MODE, LOCTALLY_EXT, ...)
const EnvPrefix = "LOCTALLY"

// Keys shared by flags, config file and environment
const (
	KeyRoot          = "root"
	KeyPreset        = "preset"
	KeyPresetFile    = "preset-file"
	KeyExtensions    = "ext"
	KeyExclusions    = "exclude"
	KeyAddExtensions = "add-ext"
	KeyAddExclusions = "add-exclude"
	KeyMode          = "mode"
	KeyMatch         = "match"
	KeySort          = "sort"
	KeyTotal         = "total"
	KeyWorkers       = "workers"
)

// Settings holds the layered configuration of a run: defaults, then the
// config file, then LOCTALLY_* environment variables, then flags.
type Settings struct {
	Root          string
	Preset        string
	PresetFile    string
	Extensions    []string
	Exclusions    []string
	AddExtensions []string
	AddExclusions []string
	Mode          string
	Match         string
	Sort          string
	Total         bool
	Workers       int

	// ConfigFile is the config file that was read, if any
	ConfigFile string
}

// LoadOptions controls where Load looks for configuration
type LoadOptions struct {
	// Dir is searched for .loctally.yaml; defaults to the working directory
	Dir string
	// ConfigFile, when set, must exist and replaces the search
	ConfigFile string
	// Flags are bound on top of every other source
	Flags *pflag.FlagSet
}

// Load resolves Settings from all configuration sources
func Load(opts LoadOptions) (*Settings, error) {
	v := viper.New()

	v.SetDefault(KeyRoot, ".")
	v.SetDefault(KeyPreset, preset.Default)
	v.SetDefault(KeyMode, tally.ByExtension.String())
	v.SetDefault(KeyMatch, tally.MatchSubstring.String())
	v.SetDefault(KeySort, "name")
	v.SetDefault(KeyTotal, true)
	v.SetDefault(KeyWorkers, 1)

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		if err := v.BindPFlags(opts.Flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	return &Settings{
		Root:          v.GetString(KeyRoot),
		Preset:        v.GetString(KeyPreset),
		PresetFile:    v.GetString(KeyPresetFile),
		Extensions:    getList(v, KeyExtensions),
		Exclusions:    getList(v, KeyExclusions),
		AddExtensions: getList(v, KeyAddExtensions),
		AddExclusions: getList(v, KeyAddExclusions),
		Mode:          v.GetString(KeyMode),
		Match:         v.GetString(KeyMatch),
		Sort:          v.GetString(KeySort),
		Total:         v.GetBool(KeyTotal),
		Workers:       v.GetInt(KeyWorkers),
		ConfigFile:    v.ConfigFileUsed(),
	}, nil
}

// Count is the resolved configuration of a count run
type Count struct {
	Preset  string
	Options tally.Options
	Sort    tally.SortOrder
	Total   bool
}

// Count resolves the preset and applies explicit overrides. Explicit
// extension or exclusion lists replace the preset's; the add- lists extend
// whatever is in effect.
func (s *Settings) Count() (*Count, error) {
	var (
		p   *preset.Preset
		err error
	)
	if s.PresetFile != "" {
		p, err = preset.LoadFromFile(s.PresetFile)
	} else {
		p, err = preset.Load(s.Preset)
	}
	if err != nil {
		return nil, err
	}

	mode, err := tally.ParseMode(s.Mode)
	if err != nil {
		return nil, err
	}
	match, err := tally.ParseMatchMode(s.Match)
	if err != nil {
		return nil, err
	}
	order, err := ParseSortOrder(s.Sort)
	if err != nil {
		return nil, err
	}

	extensions := p.Extensions
	if len(s.Extensions) > 0 {
		extensions = s.Extensions
	}
	exclusions := p.Exclusions
	if len(s.Exclusions) > 0 {
		exclusions = s.Exclusions
	}

	root := s.Root
	if root == "" {
		root = "."
	}

	return &Count{
		Preset: p.Name,
		Options: tally.Options{
			Root:       root,
			Extensions: merge(extensions, s.AddExtensions),
			Exclusions: merge(exclusions, s.AddExclusions),
			Mode:       mode,
			Match:      match,
			Workers:    s.Workers,
		},
		Sort:  order,
		Total: s.Total,
	}, nil
}

// ParseSortOrder converts a --sort value
func ParseSortOrder(s string) (tally.SortOrder, error) {
	switch strings.ToLower(s) {
	case "", "name", "key":
		return tally.SortByName, nil
	case "lines", "count":
		return tally.SortByLines, nil
	default:
		return tally.SortByName, fmt.Errorf("unknown sort order %q (want name or lines)", s)
	}
}

// Remote variables read by LoadRemote
const (
	EnvRemoteURL    = "SUPABASE_URL"
	EnvRemoteKey    = "SUPABASE_KEY"
	EnvRemoteSchema = "SUPABASE_SCHEMA"
)

// LoadRemote reads the remote count service credentials from the
// environment, falling back to a .env file in dir. Values are returned as
// found; remote.NewClient reports anything missing.
func LoadRemote(dir string) (remote.Config, error) {
	if dir == "" {
		dir = "."
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, ".env"))
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return remote.Config{}, fmt.Errorf("failed to read .env: %w", err)
	}

	for _, env := range []string{EnvRemoteURL, EnvRemoteKey, EnvRemoteSchema} {
		if err := v.BindEnv(strings.ToLower(env), env); err != nil {
			return remote.Config{}, err
		}
	}

	return remote.Config{
		URL:    v.GetString(strings.ToLower(EnvRemoteURL)),
		Key:    v.GetString(strings.ToLower(EnvRemoteKey)),
		Schema: v.GetString(strings.ToLower(EnvRemoteSchema)),
	}, nil
}

// getList reads a list key. Values from flags and the config file arrive as
// lists; environment variables arrive as one string and are split on commas
// and whitespace, so LOCTALLY_EXT=".go,.rs" and ".go .rs" both work.
func getList(v *viper.Viper, key string) []string {
	if raw, ok := v.Get(key).(string); ok {
		return strings.FieldsFunc(raw, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
	}
	return v.GetStringSlice(key)
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// merge appends extra to base, dropping empty and duplicate entries
func merge(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
