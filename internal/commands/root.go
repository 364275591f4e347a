// Package commands implements the expensectl command line.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/expense-tracker/internal/buildinfo"
)

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	userID  int64
	backend string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openRuntime)
}

func newRootCommand(open opener) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "expensectl",
		Short:   "Record and summarize personal expenses",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Int64Var(&opts.userID, "user", 0, "owner id the command acts for")
	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "store backend, postgres, sqlite or memory (default from STORE_BACKEND)")

	rootCmd.AddCommand(
		newAddCommand(open, opts),
		newListCommand(open, opts),
		newRecentCommand(open, opts),
		newSummaryCommand(open, opts),
		newCategoriesCommand(open, opts),
		newExportCommand(open, opts),
		newSeedCommand(open, opts),
		newMigrateCommand(open, opts),
		newRegisterCommand(open, opts),
	)

	return rootCmd
}

// owner returns the --user value, which owner-scoped commands require
func (o *globalOptions) owner() (int64, error) {
	if o.userID <= 0 {
		return 0, fmt.Errorf("--user must be a positive owner id")
	}
	return o.userID, nil
}
