package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/loctally/internal/logging"
	"github.com/pthm/loctally/internal/reporter"
	"github.com/pthm/loctally/internal/ui"
)

var (
	// Global flags
	verbose    bool
	format     string
	configFile string
)

// RootCmd is the loctally command. Run without a subcommand it counts the
// current directory with the default preset.
var RootCmd = &cobra.Command{
	Use:   "loctally",
	Short: "Count lines of source code by file extension",
	Long: `loctally walks a directory tree and tallies lines of source code per
file extension (or per file), skipping excluded directories such as
dependency caches and build output.

Running loctally with no subcommand is the same as "loctally count".`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCount(countCmd, nil)
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	RootCmd.PersistentFlags().StringVarP(&format, "format", "f", "terminal", "Output format (terminal, json, yaml, markdown, html)")
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default .loctally.yaml in the working directory)")
}

// app bundles what a command run needs. It is built once per invocation and
// passed down explicitly.
type app struct {
	ui  *ui.UI
	log *zap.Logger
}

func newApp(cmd *cobra.Command) *app {
	return &app{
		ui:  ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), format),
		log: logging.New(cmd.ErrOrStderr(), verbose),
	}
}

func (a *app) reporter(opts reporter.Options) (reporter.Reporter, error) {
	return reporter.New(format, a.ui.Writer, a.ui.Styles, opts)
}
