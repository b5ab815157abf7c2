package main

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/pkg/dashboard"
)

func dashboardCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Catalog and user statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.requireAdmin(); err != nil {
				return err
			}
			products, err := a.api.Products(cmd.Context())
			if err != nil {
				return err
			}
			users, err := a.api.Users(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dashboard.Compute(products, users))
		},
	}
}
