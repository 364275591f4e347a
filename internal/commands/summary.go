package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/expense-tracker/pkg/money"
)

func newSummaryCommand(open opener, opts *globalOptions) *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the total, the category breakdown and the monthly summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, opts, func(rt *runtime, ownerID int64) error {
				d, err := rt.service.Dashboard(cmd.Context(), ownerID)
				if err != nil {
					return err
				}
				if currency == "" {
					currency = rt.cfg.Dashboard.Currency
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintf(tw, "Total\t%s\t\n", money.Display(d.Total, currency))

				fmt.Fprintln(tw, "\t\t")
				fmt.Fprintln(tw, "CATEGORY\tTOTAL\t")
				for _, c := range d.Categories {
					fmt.Fprintf(tw, "%s\t%s\t\n", c.Category, money.Display(c.Total, currency))
				}

				fmt.Fprintln(tw, "\t\t")
				fmt.Fprintln(tw, "MONTH\tTOTAL\t")
				for _, m := range d.Months {
					fmt.Fprintf(tw, "%s\t%s\t\n", m.Month, money.Display(m.Total, currency))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "", "ISO-4217 code used for display (default from DASHBOARD_CURRENCY)")

	return cmd
}
