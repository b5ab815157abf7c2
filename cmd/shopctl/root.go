package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. The returned func releases whatever
// the run opened and must be called once Execute returns, whether or not
// the command failed.
func newRootCmd(open func() (*app, error)) (*cobra.Command, func() error) {
	var a *app

	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Storefront client: browse products, keep a cart, administer the shop",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = open()
			return err
		},
	}

	get := func() *app { return a }
	root.AddCommand(
		signupCmd(get),
		loginCmd(get),
		logoutCmd(get),
		whoamiCmd(get),
		productsCmd(get),
		usersCmd(get),
		cartCmd(get),
		dashboardCmd(get),
	)
	closeApp := func() error {
		if a == nil {
			return nil
		}
		err := a.close()
		a = nil
		return err
	}
	return root, closeApp
}
