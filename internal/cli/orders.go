package cli

import (
	"fmt"
	"io"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/spf13/cobra"
)

func newOrdersCommand(env *rootEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Check out and follow your orders",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := env.setup(cmd); err != nil {
				return err
			}

			env.app.ensureSession(cmd.Context())

			return nil
		},
	}

	cmd.AddCommand(
		newOrdersListCommand(env),
		newOrderShowCommand(env),
		newOrderCreateCommand(env),
		newOrderCancelCommand(env),
	)

	return cmd
}

func newOrdersListCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orders, err := env.app.orders.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if len(orders) == 0 {
				fmt.Fprintln(out, "No orders yet")
				return nil
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tPLACED\tSTATUS\tITEMS\tTOTAL")

			for i := range orders {
				o := &orders[i]
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
					o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.StatusLabel(), len(o.Items), formatPrice(o.TotalPrice))
			}

			return tw.Flush()
		},
	}
}

func newOrderShowCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseID(args[0], "order_id")
			if err != nil {
				return err
			}

			order, err := env.app.orders.Get(cmd.Context(), orderID)
			if err != nil {
				return err
			}

			writeOrder(cmd.OutOrStdout(), order)

			return nil
		},
	}
}

func writeOrder(w io.Writer, o *models.Order) {
	fmt.Fprintf(w, "Order #%d: %s\n", o.ID, o.StatusLabel())
	fmt.Fprintf(w, "Deliver to: %s, %s\n", o.FullName, o.Phone)
	fmt.Fprintf(w, "Address:    %s, %s\n", o.Address, o.City)

	if o.Notes != "" {
		fmt.Fprintf(w, "Notes:      %s\n", o.Notes)
	}

	for _, item := range o.Items {
		fmt.Fprintf(w, "  %d x %s  %s\n", item.Quantity, item.ProductName, formatPrice(item.Subtotal))
	}

	fmt.Fprintf(w, "Total: %s\n", formatPrice(o.TotalPrice))

	if o.Status.Cancellable() {
		fmt.Fprintf(w, "Cancel with: storefront orders cancel %d\n", o.ID)
	}
}

func newOrderCreateCommand(env *rootEnv) *cobra.Command {
	var req models.CreateOrderRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Place an order for everything in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, res := env.app.orders.Create(cmd.Context(), req)
			if err := report(cmd.OutOrStdout(), res); err != nil {
				return err
			}

			if order != nil {
				writeOrder(cmd.OutOrStdout(), order)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.FullName, "full-name", "", "recipient name")
	flags.StringVar(&req.Phone, "phone", "", "contact phone")
	flags.StringVar(&req.Email, "email", "", "contact email")
	flags.StringVar(&req.Address, "address", "", "street address")
	flags.StringVar(&req.City, "city", "", "city")
	flags.StringVar(&req.PostalCode, "postal-code", "", "postal code")
	flags.StringVar(&req.Notes, "notes", "", "delivery notes")

	return cmd
}

func newOrderCancelCommand(env *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseID(args[0], "order_id")
			if err != nil {
				return err
			}

			app := env.app

			order, err := app.orders.Get(cmd.Context(), orderID)
			if err != nil {
				return err
			}

			_, res := app.orders.Cancel(cmd.Context(), order)

			return report(cmd.OutOrStdout(), res)
		},
	}
}
