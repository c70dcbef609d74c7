package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pthm/loctally/internal/remote"
	"github.com/pthm/loctally/internal/settings"
)

var (
	rowsColumn string
	rowsEq     []string
	rowsWhere  []string
)

var rowsCmd = &cobra.Command{
	Use:   "rows <table>",
	Short: "Print the exact row count of a remote table",
	Long: `Ask a hosted Supabase/PostgREST service for the exact number of rows in
a table, optionally counting only the rows that match column filters.

Credentials are read from SUPABASE_URL and SUPABASE_KEY (and optionally
SUPABASE_SCHEMA), with a .env file in the working directory as a fallback.

Filters:
  --eq column=value          rows where column equals value
  --where column=op.value    op is one of eq, neq, gt, lt, gte, lte, in, fts

Examples:
  loctally rows trades
  loctally rows trades --eq symbol=BTC
  loctally rows trades --where price=gt.100 --where side=in.buy,sell
  loctally rows trades --column id --format json`,
	Args:         cobra.ExactArgs(1),
	RunE:         runRows,
	SilenceUsage: true,
}

func init() {
	rowsCmd.Flags().StringVar(&rowsColumn, "column", "id", "Column to select")
	rowsCmd.Flags().StringArrayVar(&rowsEq, "eq", nil, "Count rows where column=value (repeatable)")
	rowsCmd.Flags().StringArrayVar(&rowsWhere, "where", nil, "Count rows matching column=op.value (repeatable)")
	RootCmd.AddCommand(rowsCmd)
}

type rowsOutput struct {
	Table        string   `json:"table" yaml:"table"`
	Rows         int64    `json:"rows" yaml:"rows"`
	Filters      []string `json:"filters,omitempty" yaml:"filters,omitempty"`
	ContentRange string   `json:"contentRange" yaml:"content_range"`
}

// rowFilters collects --eq and --where into remote filters
func rowFilters() ([]remote.Filter, error) {
	var filters []remote.Filter
	for _, e := range rowsEq {
		column, value, ok := strings.Cut(e, "=")
		if !ok || strings.TrimSpace(column) == "" {
			return nil, fmt.Errorf("invalid --eq %q (want column=value)", e)
		}
		filters = append(filters, remote.Filter{Column: strings.TrimSpace(column), Op: remote.Eq, Value: value})
	}
	for _, w := range rowsWhere {
		f, err := remote.ParseFilter(w)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func runRows(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)

	filters, err := rowFilters()
	if err != nil {
		return err
	}

	cfg, err := settings.LoadRemote("")
	if err != nil {
		return err
	}

	client, err := remote.NewClient(cfg, remote.WithLogger(a.log))
	if err != nil {
		return err
	}

	res, err := client.Count(cmd.Context(), args[0], rowsColumn, filters...)
	if err != nil {
		return err
	}

	out := rowsOutput{Table: res.Table, Rows: res.Count, ContentRange: res.ContentRange}
	for _, f := range filters {
		out.Filters = append(out.Filters, f.String())
	}
	w := a.ui.Writer

	if !a.ui.IsStructured() {
		s := a.ui.Styles
		fmt.Fprintf(w, "%s: %s rows\n", s.Key.Render(out.Table), s.Count.Render(fmt.Sprint(out.Rows)))
		if verbose {
			if len(out.Filters) > 0 {
				fmt.Fprintln(w, s.Path.Render("Filters: "+strings.Join(out.Filters, " ")))
			}
			fmt.Fprintln(w, s.Path.Render("Content-Range: "+out.ContentRange))
		}
		return nil
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		return yaml.NewEncoder(w).Encode(out)
	default:
		return fmt.Errorf("rows supports terminal, json and yaml output, not %q", format)
	}
}
