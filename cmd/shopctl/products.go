package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/pkg/apiclient"
)

func productsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Browse and manage the catalog",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all products, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				items, err := get().api.Products(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), items)
			},
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Show one product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := get().api.Product(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), p)
			},
		},
		&cobra.Command{
			Use:   "categories",
			Short: "List product categories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cats, err := get().api.Categories(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), cats)
			},
		},
		searchCmd(get),
		createProductCmd(get),
		updateProductCmd(get),
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a product",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := get().api.DeleteProduct(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Product Deleted: %s\n", p.Title)
				return nil
			},
		},
	)
	return cmd
}

func searchCmd(get func() *app) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Full-text product search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := get().api.SearchProducts(cmd.Context(), args[0], page, size)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", 10, "page size")
	return cmd
}

func createProductCmd(get func() *app) *cobra.Command {
	var in apiclient.ProductInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := get().api.CreateProduct(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Created New Product Successfully!")
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "title")
	f.Float64Var(&in.Price, "price", 0, "price")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&in.Category, "category", "", "category")
	f.StringVar(&in.Image, "image", "", "image URL")
	return cmd
}

func updateProductCmd(get func() *app) *cobra.Command {
	var (
		title, description, category, image string
		price                               float64
	)
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change some fields of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			var patch apiclient.ProductPatch
			if f.Changed("title") {
				patch.Title = &title
			}
			if f.Changed("price") {
				patch.Price = &price
			}
			if f.Changed("description") {
				patch.Description = &description
			}
			if f.Changed("category") {
				patch.Category = &category
			}
			if f.Changed("image") {
				patch.Image = &image
			}
			p, err := get().api.UpdateProduct(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Product Updated")
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "title")
	f.Float64Var(&price, "price", 0, "price")
	f.StringVar(&description, "description", "", "description")
	f.StringVar(&category, "category", "", "category")
	f.StringVar(&image, "image", "", "image URL")
	return cmd
}
