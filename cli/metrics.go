package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pacas-inventario/models"
	"pacas-inventario/utils"
)

func newMetricsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <bundle-id>",
		Short: "Print the cost and price breakdown of a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid bundle id %q", args[0])
			}

			a, err := opts.initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			detail, err := a.Bundles.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printMetrics(cmd.OutOrStdout(), a.Formatter, detail)
		},
	}
}

func printMetrics(out io.Writer, f *utils.Formatter, detail *models.BundleDetail) error {
	b := detail.Bundle
	d := detail.Display

	fmt.Fprintf(out, "%s (#%d), %s pieces\n\n", b.Name, b.ID, f.FormatCount(b.TotalPieces))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total cost\t%s\n", d["total_cost"])
	fmt.Fprintf(w, "Additional expenses\t%s\n", d["total_additional_expenses"])
	fmt.Fprintf(w, "Total with expenses\t%s\n", d["total_cost_with_expenses"])
	fmt.Fprintf(w, "Cost per piece\t%s\n", d["cost_per_piece"])
	fmt.Fprintf(w, "Minimum revenue\t%s\n", d["total_minimum_revenue"])
	fmt.Fprintf(w, "Ideal revenue\t%s\n", d["total_ideal_revenue"])
	fmt.Fprintf(w, "Ideal profit\t%s (%s)\n", d["ideal_profit"], d["ideal_profit_margin"])
	if err := w.Flush(); err != nil {
		return err
	}

	if len(detail.Metrics.QualityBreakdown) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUALITY\tPIECES\tPROFIT\tMINIMUM\tIDEAL")
	for _, q := range detail.Metrics.QualityBreakdown {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			utils.GradeLabel(q.Quality),
			f.FormatCount(q.Pieces),
			f.FormatPercentage(q.ProfitPercentage),
			f.FormatCurrency(q.MinimumPrice),
			f.FormatCurrency(q.IdealPrice),
		)
	}
	return w.Flush()
}
