package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm/loctally/internal/preset"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp(cmd)
		s := a.ui.Styles

		for _, name := range preset.Available() {
			p, err := preset.Load(name)
			if err != nil {
				return err
			}

			label := p.Name
			if p.Name == preset.Default {
				label += " (default)"
			}
			fmt.Fprintf(a.ui.Writer, "%s  %s\n", s.Header.Render(label), p.Description)
			fmt.Fprintf(a.ui.Writer, "  extensions: %s\n", s.Key.Render(strings.Join(p.Extensions, " ")))
			fmt.Fprintf(a.ui.Writer, "  exclusions: %s\n", s.Path.Render(strings.Join(p.Exclusions, " ")))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(presetsCmd)
}
