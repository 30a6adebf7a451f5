package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/apidrift/apidrift/internal/reporters"
	"github.com/apidrift/apidrift/pkg/archive"
	"github.com/apidrift/apidrift/pkg/builtin"
	"github.com/apidrift/apidrift/pkg/engine"
)

// NewExtensionsCommand creates the extensions subcommand: it lists the
// bundled extensions with their IDs and configuration surface.
func NewExtensionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extensions",
		Short: "List bundled extensions and their configuration namespaces",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			rows := []struct {
				kind string
				ext  engine.Extension
			}{
				{"analyzer", archive.NewAnalyzer()},
				{"filter", builtin.NewFilter()},
				{"transform", builtin.NewIgnore()},
				{"transform", builtin.NewReclassify()},
				{"reporter", reporters.NewText(os.Stdout)},
				{"reporter", reporters.NewJSON(os.Stdout)},
				{"reporter", reporters.NewHTML()},
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Kind", "ID", "Configurable"})

			for _, row := range rows {
				configurable := "no"
				if row.ext.ConfigSchema() != "" {
					configurable = "yes"
				}

				tw.AppendRow(table.Row{row.kind, row.ext.ID(), configurable})
			}

			tw.Render()

			return nil
		},
	}
}
