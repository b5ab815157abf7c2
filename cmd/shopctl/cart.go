package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/pkg/cart"
)

func cartCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local shopping cart",
	}

	// Totals are not derived by the store, so recompute after each change.
	apply := func(cmd *cobra.Command, fn func(*cart.Store) (cart.State, error)) error {
		a := get()
		if _, err := fn(a.cart); err != nil {
			return err
		}
		st, err := a.cart.RecomputeTotals()
		if err != nil {
			return err
		}
		return printCart(cmd.OutOrStdout(), st)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show cart items and totals",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return apply(cmd, func(s *cart.Store) (cart.State, error) { return s.State(), nil })
			},
		},
		&cobra.Command{
			Use:   "add PRODUCT_ID",
			Short: "Add one unit of a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := get().api.Product(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return apply(cmd, func(s *cart.Store) (cart.State, error) { return s.Add(cartProduct(p)) })
			},
		},
		&cobra.Command{
			Use:   "decrease PRODUCT_ID",
			Short: "Remove one unit of a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return apply(cmd, func(s *cart.Store) (cart.State, error) { return s.Decrease(args[0]) })
			},
		},
		&cobra.Command{
			Use:   "remove PRODUCT_ID",
			Short: "Drop a product from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return apply(cmd, func(s *cart.Store) (cart.State, error) { return s.Remove(args[0]) })
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return apply(cmd, func(s *cart.Store) (cart.State, error) { return s.Clear() })
			},
		},
	)
	return cmd
}

func printCart(w io.Writer, st cart.State) error {
	if len(st.CartItems) == 0 {
		_, err := fmt.Fprintln(w, "Your cart is empty")
		return err
	}
	for _, it := range st.CartItems {
		fmt.Fprintf(w, "%-24s %3d x %8.2f  %s\n", it.Title, it.CartQuantity, it.Price, it.ID)
	}
	_, err := fmt.Fprintf(w, "Total: %d item(s), $%.2f\n", st.CartTotalQuantity, st.CartTotalAmount)
	return err
}
