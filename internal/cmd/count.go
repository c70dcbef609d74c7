package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/loctally/internal/preset"
	"github.com/pthm/loctally/internal/reporter"
	"github.com/pthm/loctally/internal/settings"
	"github.com/pthm/loctally/internal/tally"
	"github.com/pthm/loctally/internal/ui"
)

var countCmd = &cobra.Command{
	Use:   "count [path]",
	Short: "Count lines of source code per extension or per file",
	Long: `Walk a directory tree and count the lines of every file whose name ends
with one of the configured suffixes. Directories matching an exclusion are
pruned before they are opened. Files that cannot be read or are not valid
UTF-8 are skipped with a warning.

Examples:
  loctally count
  loctally count --preset go ./myproject
  loctally count --ext .js --ext .jsx --exclude node_modules --mode by-file
  loctally count --match segment --add-exclude rebuild
  loctally count --format json . > loc.json`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runCount,
	SilenceUsage: true,
}

func init() {
	f := countCmd.Flags()
	f.String(settings.KeyRoot, ".", "Root directory to scan")
	f.StringP(settings.KeyPreset, "p", preset.Default, "Built-in preset of extensions and exclusions")
	f.String(settings.KeyPresetFile, "", "Load the preset from a YAML file")
	f.StringSlice(settings.KeyExtensions, nil, "File suffix to count; replaces the preset's list (repeatable)")
	f.StringSlice(settings.KeyExclusions, nil, "Directory to skip; replaces the preset's list (repeatable)")
	f.StringSlice(settings.KeyAddExtensions, nil, "File suffix to count in addition to the preset's (repeatable)")
	f.StringSlice(settings.KeyAddExclusions, nil, "Directory to skip in addition to the preset's (repeatable)")
	f.String(settings.KeyMode, tally.ByExtension.String(), "Aggregate by-extension or by-file")
	f.String(settings.KeyMatch, tally.MatchSubstring.String(), "Exclusion matching: substring or segment")
	f.String(settings.KeySort, "name", "Report order: name or lines")
	f.Bool(settings.KeyTotal, true, "Print the grand total")
	f.IntP(settings.KeyWorkers, "j", 1, "Number of concurrent file readers")
	RootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)

	progress := a.ui.StartProgress()
	defer func() {
		if progress != nil {
			progress.Done(nil)
		}
	}()

	// Stage 1: resolve configuration
	progress.SetStage(ui.StageResolve)

	s, err := settings.Load(settings.LoadOptions{ConfigFile: configFile, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	if len(args) > 0 {
		if cmd.Flags().Changed(settings.KeyRoot) && s.Root != args[0] {
			return fmt.Errorf("conflicting roots: --root %s and argument %s", s.Root, args[0])
		}
		s.Root = args[0]
	}

	count, err := s.Count()
	if err != nil {
		return err
	}

	rep, err := a.reporter(reporter.Options{Sort: count.Sort, Total: count.Total})
	if err != nil {
		return err
	}

	opts := count.Options
	a.log.Debug("resolved settings",
		zap.String("config", s.ConfigFile),
		zap.String("preset", count.Preset),
		zap.String("root", opts.Root),
		zap.Strings("extensions", opts.Extensions),
		zap.Strings("exclusions", opts.Exclusions),
		zap.Stringer("mode", opts.Mode),
		zap.Stringer("match", opts.Match),
		zap.Int("workers", opts.Workers),
	)

	opts.OnWarning = func(w tally.Warning) {
		progress.Warn(a.ui, w.String())
	}
	opts.OnFile = func(path string) {
		progress.FileDone(path)
	}

	// Stage 2: walk and count. The filesystem is chrooted at the root and
	// paths are reported with the root as the user spelled it.
	progress.SetStage(ui.StageScan)

	abs, err := filepath.Abs(opts.Root)
	if err != nil {
		return fmt.Errorf("cannot resolve root %s: %w", opts.Root, err)
	}
	opts.Prefix = opts.Root
	opts.Root = "."

	result, err := tally.Aggregate(osfs.New(abs), opts)
	if err != nil {
		return fmt.Errorf("cannot count lines: %w", err)
	}

	a.log.Debug("scan finished",
		zap.Int("files", result.Files),
		zap.Int("keys", len(result.Counts)),
		zap.Int("skipped", len(result.Warnings)),
	)

	// Stage 3: report
	progress.SetStage(ui.StageReport)
	if progress != nil {
		progress.Done(nil)
		progress = nil // Prevent double-done in defer
	}

	return rep.Report(result)
}
