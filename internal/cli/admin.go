package cli

import (
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/spf13/cobra"
)

func newAdminCommand(env *rootEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Staff tools for managing the catalog",
	}

	products := &cobra.Command{
		Use:   "products",
		Short: "Create, edit and delete products",
	}

	products.AddCommand(
		newAdminListCommand(env),
		newAdminCreateCommand(env),
		newAdminUpdateCommand(env),
		newAdminDeleteCommand(env),
	)

	cmd.AddCommand(
		newAdminLoginCommand(env),
		newAdminCheckCommand(env),
		products,
	)

	return cmd
}

func newAdminLoginCommand(env *rootEnv) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Start a staff session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := secret(cmd, password, "Password")
			if err != nil {
				return err
			}

			return report(cmd.OutOrStdout(), env.app.admin.Login(cmd.Context(), args[0], pw))
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password, read from stdin when omitted")

	return cmd
}

func newAdminCheckCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the session has staff rights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := env.app.admin.Check(cmd.Context())
			if err != nil {
				return err
			}

			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in as staff")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Staff session for %s\n", user.Username)

			return nil
		},
	}
}

func newAdminListCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every product, inactive ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := env.app.admin.ListProducts(cmd.Context(), nil)
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tPRICE\tFEATURED\tACTIVE")

			for i := range products {
				p := &products[i]
				active := p.IsActive == nil || *p.IsActive
				fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%t\n", p.ID, p.Name, productPrice(p), p.IsFeatured, active)
			}

			return tw.Flush()
		},
	}
}

type imageFlags struct {
	main, second, third string
}

func (f *imageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.main, "image", "", "main image file")
	cmd.Flags().StringVar(&f.second, "image-2", "", "second image file")
	cmd.Flags().StringVar(&f.third, "image-3", "", "third image file")
}

func (f *imageFlags) files() map[string]string {
	files := map[string]string{}

	for slot, path := range map[string]string{"image": f.main, "image_2": f.second, "image_3": f.third} {
		if path != "" {
			files[slot] = path
		}
	}

	return files
}

func newAdminCreateCommand(env *rootEnv) *cobra.Command {
	var (
		form   models.ProductForm
		images imageFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form.Images = images.files()

			product, res := env.app.admin.CreateProduct(cmd.Context(), form)
			if err := report(cmd.OutOrStdout(), res); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "#%d %s (%s)\n", product.ID, product.Name, product.Slug)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&form.Name, "name", "", "product name")
	flags.Int64Var(&form.Category, "category", 0, "category id")
	flags.StringVar(&form.Description, "description", "", "description")
	flags.StringVar(&form.Price, "price", "", "price before discount")
	flags.IntVar(&form.DiscountPercentage, "discount", 0, "discount percentage (0-100)")
	flags.StringVar(&form.UzumLink, "uzum-link", "", "Uzum marketplace URL")
	flags.StringVar(&form.YandexMarketLink, "yandex-link", "", "Yandex Market URL")
	flags.BoolVar(&form.IsFeatured, "featured", false, "show on the home page")
	flags.BoolVar(&form.IsActive, "active", true, "visible in the catalog")
	images.register(cmd)

	return cmd
}

func newAdminUpdateCommand(env *rootEnv) *cobra.Command {
	var (
		fields map[string]string
		images imageFlags
	)

	cmd := &cobra.Command{
		Use:     "update <product-id>",
		Short:   "Change some fields of a product",
		Example: "  storefront admin products update 12 --set price=39000 --set is_featured=false",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0], "product_id")
			if err != nil {
				return err
			}

			form := models.PartialProductForm{Fields: fields, Images: images.files()}

			product, res := env.app.admin.UpdateProduct(cmd.Context(), productID, form)
			if err := report(cmd.OutOrStdout(), res); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "#%d %s %s\n", product.ID, product.Name, productPrice(product))

			return nil
		},
	}

	cmd.Flags().StringToStringVar(&fields, "set", nil, "field=value to change, repeatable")
	images.register(cmd)

	return cmd
}

func newAdminDeleteCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <product-id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0], "product_id")
			if err != nil {
				return err
			}

			return report(cmd.OutOrStdout(), env.app.admin.DeleteProduct(cmd.Context(), productID))
		},
	}
}
