package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	userservice "github.com/FACorreiaa/expense-tracker/internal/domain/user/service"
)

func newRegisterCommand(open opener, opts *globalOptions) *cobra.Command {
	var (
		params        userservice.RegisterParams
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account that expenses can be recorded for",
		Long: `Create an account. The printed id is the value to pass as --user.
Prefer --password-stdin so the password does not end up in shell history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password from stdin: %w", err)
				}
				params.Password = strings.TrimRight(line, "\r\n")
			}
			if params.Password == "" {
				return errors.New("a password is required, use --password or --password-stdin")
			}

			rt, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			u, err := rt.users.Register(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered user %d (%s)\n", u.ID, u.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Username, "username", "", "login name (required)")
	_ = cmd.MarkFlagRequired("username")
	cmd.Flags().StringVar(&params.Email, "email", "", "email address (required)")
	_ = cmd.MarkFlagRequired("email")
	cmd.Flags().StringVar(&params.Password, "password", "", "account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from the first line of stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}
