package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(open opener, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			switch {
			case rt.db != nil:
				err = rt.db.RunMigrations()
			case rt.sqlite != nil:
				err = rt.sqlite.RunMigrations()
			default:
				return errors.New("migrate needs the postgres or sqlite backend")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
