package tally

import (
	"fmt"
	"path"
	"strings"
)

// Mode selects the aggregation key
type Mode int

const (
	// ByExtension sums every matching file under its extension
	ByExtension Mode = iota
	// ByFile keeps one entry per file path
	ByFile
)

func (m Mode) String() string {
	switch m {
	case ByExtension:
		return "by-extension"
	case ByFile:
		return "by-file"
	default:
		return "unknown"
	}
}

// ParseMode converts a flag value to a Mode. Underscores are accepted in
// place of dashes.
func ParseMode(s string) (Mode, error) {
	switch strings.ReplaceAll(strings.ToLower(s), "_", "-") {
	case "", "by-extension", "extension", "ext":
		return ByExtension, nil
	case "by-file", "file":
		return ByFile, nil
	default:
		return ByExtension, fmt.Errorf("unknown mode %q (want by-extension or by-file)", s)
	}
}

// MatchMode selects how exclusions are compared with directory paths
type MatchMode int

const (
	// MatchSubstring excludes a directory when its path relative to the root
	// contains an exclusion anywhere, so "build" also excludes "rebuild".
	MatchSubstring MatchMode = iota
	// MatchSegment excludes a directory only when its own name equals an
	// exclusion.
	MatchSegment
)

func (m MatchMode) String() string {
	switch m {
	case MatchSubstring:
		return "substring"
	case MatchSegment:
		return "segment"
	default:
		return "unknown"
	}
}

// ParseMatchMode converts a flag value to a MatchMode
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(s) {
	case "", "substring":
		return MatchSubstring, nil
	case "segment", "name":
		return MatchSegment, nil
	default:
		return MatchSubstring, fmt.Errorf("unknown match mode %q (want substring or segment)", s)
	}
}

// Options configures a single Aggregate run
type Options struct {
	// Root is the directory to traverse, as a path inside the filesystem
	Root string

	// Prefix, when set, replaces Root in every reported path: by-file keys,
	// warnings and Result.Root. It lets a filesystem chrooted at the root
	// report paths the way the caller spelled them.
	Prefix string

	// Exclusions prune directories from traversal
	Exclusions []string

	// Match controls how Exclusions are compared
	Match MatchMode

	// Extensions are the accepted file name suffixes (".go", ".js", ...)
	Extensions []string

	// Mode selects the aggregation key
	Mode Mode

	// Workers sets the number of concurrent file readers. Values below 2
	// read files one at a time in traversal order.
	Workers int

	// OnWarning is called as soon as a file or directory is skipped
	OnWarning func(Warning)

	// OnFile is called with the path of each file that was counted
	OnFile func(path string)
}

// excluded reports whether the directory at rel (slash-separated, relative
// to the root) must be pruned.
func (o *Options) excluded(rel string) bool {
	for _, ex := range o.Exclusions {
		if ex == "" {
			continue
		}
		switch o.Match {
		case MatchSegment:
			if path.Base(rel) == ex {
				return true
			}
		default:
			if strings.Contains(rel, ex) {
				return true
			}
		}
	}
	return false
}

// matchSuffix returns the longest accepted suffix of name, or "" when none
// matches.
func (o *Options) matchSuffix(name string) string {
	best := ""
	for _, ext := range o.Extensions {
		if ext != "" && strings.HasSuffix(name, ext) && len(ext) > len(best) {
			best = ext
		}
	}
	return best
}

// extensionKey turns a matched suffix into an aggregation key: ".js" -> "js"
func extensionKey(suffix string) string {
	if key := strings.TrimPrefix(suffix, "."); key != "" {
		return key
	}
	return suffix
}
