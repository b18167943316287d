package cli

import (
	"fmt"
	"strconv"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/spf13/cobra"
)

func newCartCommand(env *rootEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change your cart",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// cobra runs only the nearest persistent hook
			if err := env.setup(cmd); err != nil {
				return err
			}

			env.app.ensureSession(cmd.Context())

			return nil
		},
	}

	cmd.AddCommand(
		newCartShowCommand(env),
		newCartAddCommand(env),
		newCartUpdateCommand(env),
		newCartRemoveCommand(env),
		newCartClearCommand(env),
	)

	return cmd
}

func newCartShowCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := env.app

			if app.cart.Cart() == nil {
				if err := report(cmd.OutOrStdout(), app.cart.Load(cmd.Context())); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()

			cart := app.cart.Cart()
			if cart.IsEmpty() {
				fmt.Fprintln(out, "Your cart is empty")
				return nil
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "ITEM\tPRODUCT\tQTY\tPRICE\tSUBTOTAL")

			for _, item := range cart.Items {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
					item.ID, item.ProductName, item.Quantity, formatPrice(item.DiscountedPrice), formatPrice(item.Subtotal))
			}

			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\nTotal: %d items, %s\n", app.cart.Count(), formatPrice(app.cart.Total()))
			fmt.Fprintln(out, "Empty it with: storefront cart clear")

			return nil
		},
	}
}

func newCartAddCommand(env *rootEnv) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0], "product_id")
			if err != nil {
				return err
			}

			app := env.app
			if err := report(cmd.OutOrStdout(), app.cart.AddToCart(cmd.Context(), productID, quantity)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cart: %d items\n", app.cart.Count())

			return nil
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "how many to add (1-99)")

	return cmd
}

func newCartUpdateCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "update <item-id> <quantity>",
		Short: "Change the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0], "item_id")
			if err != nil {
				return err
			}

			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.AddValidationError("quantity", fmt.Sprintf("%q is not a number", args[1]))
			}

			return report(cmd.OutOrStdout(), env.app.cart.UpdateCartItem(cmd.Context(), itemID, quantity))
		},
	}
}

func newCartRemoveCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0], "item_id")
			if err != nil {
				return err
			}

			return report(cmd.OutOrStdout(), env.app.cart.RemoveFromCart(cmd.Context(), itemID))
		},
	}
}

func newCartClearCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return report(cmd.OutOrStdout(), env.app.cart.ClearCart(cmd.Context()))
		},
	}
}
