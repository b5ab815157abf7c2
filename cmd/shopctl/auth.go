package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/pkg/apiclient"
)

func signupCmd(get func() *app) *cobra.Command {
	var in apiclient.SignupInput
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := get().api.Signup(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "SignUp Successfully")
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	cmd.Flags().StringVar(&in.Role, "role", "", "customer or admin")
	return cmd
}

func loginCmd(get func() *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			u, err := a.api.Login(cmd.Context(), email, password)
			if err != nil {
				a.log.Warn("login_failed", "status", apiclient.StatusOf(err))
				return err
			}
			if err := a.auth.SetCredentials(profileOf(u)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", u.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func logoutCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.api.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := a.auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logout Successfully!")
			return nil
		},
	}
}

func whoamiCmd(get func() *app) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if !remote {
				st := a.auth.State()
				if !st.LoggedIn() {
					fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
					return nil
				}
				return printJSON(cmd.OutOrStdout(), st.UserInfo)
			}
			u, err := a.api.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "ask the server instead of local state")
	return cmd
}
