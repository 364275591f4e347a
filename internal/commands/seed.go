package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/fixtures"
	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/service"
)

func newSeedCommand(open opener, opts *globalOptions) *cobra.Command {
	var (
		months   int
		perMonth int
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate demo expenses for an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if months <= 0 || perMonth <= 0 {
				return fmt.Errorf("--months and --per-month must be positive")
			}

			return run(cmd, open, opts, func(rt *runtime, ownerID int64) error {
				categories, err := rt.service.Categories(cmd.Context())
				if err != nil {
					return err
				}

				gen := fixtures.NewGenerator(seed, categories...)
				generated := gen.Months(time.Now(), months, perMonth)

				// through the service so the catalog and amount rules apply
				for _, f := range generated {
					_, err := rt.service.Add(cmd.Context(), ownerID, service.Draft{
						Amount:      f.Amount.String(),
						Category:    f.Category,
						Description: f.Description,
						Date:        f.ExpenseDate.Format(service.DateLayout),
					})
					if err != nil {
						return err
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d expenses over %d months for user %d\n",
					len(generated), months, ownerID)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&months, "months", 12, "number of months to cover, ending with the current one")
	cmd.Flags().IntVar(&perMonth, "per-month", 10, "expenses per month")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed for reproducible data")

	return cmd
}
