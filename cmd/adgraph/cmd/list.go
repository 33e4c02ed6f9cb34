package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/adgraph/internal/catalog"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVARS\tMINIMUM\tDESCRIPTION")
			for _, f := range catalog.All() {
				minimum := "-"
				if f.Minimum != nil {
					minimum = formatPoint(f.Minimum)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, strings.Join(f.Vars, ","), minimum, f.Description)
			}
			return w.Flush()
		},
	}
}

func formatPoint(p []float64) string {
	parts := make([]string, len(p))
	for i, x := range p {
		parts[i] = fmt.Sprintf("%g", x)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
