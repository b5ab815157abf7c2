package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func usersCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer user accounts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a := get()
				if err := a.requireAdmin(); err != nil {
					return err
				}
				users, err := a.api.Users(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), users)
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a non-admin user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := get()
				if err := a.requireAdmin(); err != nil {
					return err
				}
				if err := a.api.DeleteUser(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "User removed")
				return nil
			},
		},
	)
	return cmd
}
