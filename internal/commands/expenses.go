package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/export"
	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/repository"
	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/service"
)

// run opens a runtime, resolves the owner and hands both to fn
func run(cmd *cobra.Command, open opener, opts *globalOptions, fn func(rt *runtime, ownerID int64) error) error {
	ownerID, err := opts.owner()
	if err != nil {
		return err
	}
	rt, err := open(cmd, opts)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt, ownerID)
}

func newAddCommand(open opener, opts *globalOptions) *cobra.Command {
	var draft service.Draft

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, opts, func(rt *runtime, ownerID int64) error {
				e, err := rt.service.Add(cmd.Context(), ownerID, draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added expense %d: %s %s on %s\n",
					e.ID, e.Amount.String(), e.Category, e.ExpenseDate.Format(service.DateLayout))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&draft.Amount, "amount", "", "amount, e.g. 12.50 (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&draft.Category, "category", "", "category name (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().StringVar(&draft.Description, "description", "", "free text description")
	cmd.Flags().StringVar(&draft.Date, "date", time.Now().Format(service.DateLayout), "expense date, YYYY-MM-DD")

	return cmd
}

// listFlags are the filter flags shared by list and export
type listFlags struct {
	from, to, category string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "earliest expense date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "latest expense date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.category, "category", "", `category, "All" or empty for every category`)
}

func (f *listFlags) params() (service.ListParams, error) {
	return service.ParseListParams(f.from, f.to, f.category)
}

func newListCommand(open opener, opts *globalOptions) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params()
			if err != nil {
				return err
			}
			return run(cmd, open, opts, func(rt *runtime, ownerID int64) error {
				expenses, err := rt.service.List(cmd.Context(), ownerID, params)
				if err != nil {
					return err
				}
				return printExpenses(cmd.OutOrStdout(), expenses)
			})
		},
	}
	flags.register(cmd)

	return cmd
}

func newRecentCommand(open opener, opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, opts, func(rt *runtime, ownerID int64) error {
				expenses, err := rt.service.Recent(cmd.Context(), ownerID, limit)
				if err != nil {
					return err
				}
				return printExpenses(cmd.OutOrStdout(), expenses)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", service.DefaultRecentLimit, "number of expenses to show")

	return cmd
}

func newCategoriesCommand(open opener, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the category catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			names, err := rt.service.Categories(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newExportCommand(open opener, opts *globalOptions) *cobra.Command {
	var (
		flags  listFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export expenses as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			params, err := flags.params()
			if err != nil {
				return err
			}

			return run(cmd, open, opts, func(rt *runtime, ownerID int64) error {
				expenses, err := rt.service.List(cmd.Context(), ownerID, params)
				if err != nil {
					return err
				}

				var summary *repository.Dashboard
				if f == export.FormatXLSX {
					summary = repository.Summarize(expenses)
				}

				if output == "" || output == "-" {
					return export.Write(cmd.OutOrStdout(), f, expenses, summary)
				}

				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				if err := export.Write(file, f, expenses, summary); err != nil {
					_ = file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return fmt.Errorf("closing %s: %w", output, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d expenses to %s\n", len(expenses), output)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func printExpenses(w io.Writer, expenses []repository.Expense) error {
	if len(expenses) == 0 {
		_, err := fmt.Fprintln(w, "no expenses")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, e := range expenses {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			e.ID, e.ExpenseDate.Format(service.DateLayout), e.Category, e.Amount.String(), e.Description)
	}
	return tw.Flush()
}
