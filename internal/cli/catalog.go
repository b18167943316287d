package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/spf13/cobra"
)

func newProductsCommand(env *rootEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Browse the catalog",
	}

	cmd.AddCommand(
		newProductsListCommand(env),
		newProductShowCommand(env),
		newFeaturedCommand(env),
	)

	return cmd
}

func newProductsListCommand(env *rootEnv) *cobra.Command {
	var (
		query service.ProductQuery
		sort  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally filtered and sorted",
		Example: `  storefront products list --category rings --sort price_asc
  storefront products list --search mug --max-price 50000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sortBy, err := service.ParseSort(sort)
			if err != nil {
				return err
			}

			query.SortBy = sortBy

			app := env.app
			app.browser.Apply(cmd.Context(), query)

			snap := app.browser.Snapshot()
			if snap.Err != nil {
				return snap.Err
			}

			out := cmd.OutOrStdout()

			if n := snap.Query.ActiveFilterCount(); n > 0 {
				fmt.Fprintf(out, "%d products (%d filters active)\n", len(snap.Products), n)
			} else {
				fmt.Fprintf(out, "%d products\n", len(snap.Products))
			}

			writeProducts(out, snap.Products)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&query.Category, "category", "", "category slug")
	flags.StringVar(&query.Search, "search", "", "search in names and descriptions")
	flags.StringVar(&query.MinPrice, "min-price", "", "lowest price")
	flags.StringVar(&query.MaxPrice, "max-price", "", "highest price")
	flags.StringVar(&sort, "sort", "", "one of "+sortChoices())

	return cmd
}

func sortChoices() string {
	choices := make([]string, 0, len(service.SortOptions()))
	for _, s := range service.SortOptions() {
		choices = append(choices, string(s))
	}

	return strings.Join(choices, ", ")
}

func writeProducts(w io.Writer, products []models.Product) {
	if len(products) == 0 {
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSLUG\tNAME\tCATEGORY\tPRICE")

	for i := range products {
		p := &products[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Slug, p.Name, p.CategoryName, productPrice(p))
	}

	tw.Flush()
}

func newProductShowCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one product with similar products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := env.app.catalog.ProductBySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "%s (#%d)\n", p.Name, p.ID)
			fmt.Fprintf(out, "Price:    %s\n", productPrice(p))

			if p.CategoryName != "" {
				fmt.Fprintf(out, "Category: %s\n", p.CategoryName)
			}

			if p.UzumLink != "" {
				fmt.Fprintf(out, "Uzum:     %s\n", p.UzumLink)
			}

			if p.YandexMarketLink != nil && *p.YandexMarketLink != "" {
				fmt.Fprintf(out, "Yandex:   %s\n", *p.YandexMarketLink)
			}

			for _, img := range p.Images() {
				fmt.Fprintf(out, "Image:    %s\n", img)
			}

			if desc := strings.TrimSpace(p.PlainDescription()); desc != "" {
				fmt.Fprintf(out, "\n%s\n", desc)
			}

			if len(p.SimilarProducts) > 0 {
				fmt.Fprintln(out, "\nSimilar products:")
				writeProducts(out, p.SimilarProducts)
			}

			return nil
		},
	}
}

func newFeaturedCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "List featured products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := env.app.catalog.Featured(cmd.Context())
			if err != nil {
				return err
			}

			writeProducts(cmd.OutOrStdout(), products)

			return nil
		},
	}
}

func newCategoriesCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories, err := env.app.catalog.Categories(cmd.Context())
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "SLUG\tNAME\tPRODUCTS")

			for _, c := range categories {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Slug, c.Name, c.ProductCount)
			}

			return tw.Flush()
		},
	}
}
