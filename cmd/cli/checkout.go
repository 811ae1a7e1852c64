package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/hwdepot/rigbuilder/internal/checkout"
	"github.com/hwdepot/rigbuilder/internal/orders"
	"github.com/hwdepot/rigbuilder/internal/pricing"
)

func newCheckoutCommand(c *cli) *cobra.Command {
	var (
		method        string
		discountType  string
		discountValue string
		place         bool
		name          string
		contact       string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Summarise the saved build and optionally place the order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdLogger := c.logger.With("command", "checkout")

			fulfillment, err := checkout.ParseMethod(method)
			if err != nil {
				return err
			}
			discount, err := parseDiscount(discountType, discountValue)
			if err != nil {
				return err
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			summary := app.Checkout.Summary(cmd.Context(), fulfillment, discount)
			currency := app.Config.Checkout.Currency
			if err := printSummary(cmd.OutOrStdout(), summary, currency); err != nil {
				return err
			}
			if !place {
				return nil
			}

			svc, err := app.Orders()
			if err != nil {
				return err
			}
			return placeOrder(cmd.Context(), svc, summary, orders.Customer{Name: name, Contact: contact}, cmd.OutOrStdout(), cmdLogger)
		},
	}

	cmd.Flags().StringVar(&method, "method", string(checkout.Pickup), "Fulfillment method (pickup, shipping)")
	cmd.Flags().StringVar(&discountType, "discount-type", "none", "Discount type (none, percentage, fixed)")
	cmd.Flags().StringVar(&discountValue, "discount-value", "0", "Discount value")
	cmd.Flags().BoolVar(&place, "place", false, "Place the order after printing the summary")
	cmd.Flags().StringVar(&name, "name", "", "Customer name (required with --place)")
	cmd.Flags().StringVar(&contact, "contact", "", "Customer e-mail or phone")
	return cmd
}

// placeOrder reports an order that was archived but not announced as
// placed, so a retry does not duplicate it.
func placeOrder(ctx context.Context, svc *orders.Service, summary checkout.Summary, customer orders.Customer, out io.Writer, logger *slog.Logger) error {
	order, err := svc.Place(ctx, summary, customer)
	switch {
	case errors.Is(err, orders.ErrNotAnnounced):
		logger.Warn("order placed but not announced, do not place it again", "order", order.ID, "error", err)
		fmt.Fprintf(out, "\norder %s placed (announcement failed)\n", order.ID)
		return nil
	case err != nil:
		return err
	}
	logger.Info("order placed", "order", order.ID, "grand_total", order.GrandTotal.StringFixed(2))
	fmt.Fprintf(out, "\norder %s placed\n", order.ID)
	return nil
}

func parseDiscount(kind, value string) (pricing.Discount, error) {
	discountType, err := pricing.ParseDiscountType(kind)
	if err != nil {
		return pricing.NoDiscount, err
	}
	if discountType == pricing.DiscountNone {
		return pricing.NoDiscount, nil
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return pricing.NoDiscount, fmt.Errorf("invalid discount value %q: %w", value, err)
	}
	return pricing.Discount{Type: discountType, Value: amount}, nil
}

func printSummary(w io.Writer, summary checkout.Summary, currency string) error {
	if summary.IsEmpty() {
		_, err := fmt.Fprintln(w, "build is empty")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ITEM\tQTY\tUNIT\tTOTAL")
	for _, line := range summary.Lines {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", line.Name, line.Quantity, money(line.UnitPrice, currency), money(line.Total(), currency))
	}
	fmt.Fprintln(tw, "\t\t\t")
	fmt.Fprintf(tw, "Subtotal\t\t\t%s\n", money(summary.Subtotal, currency))
	if !summary.Discount.IsZero() {
		fmt.Fprintf(tw, "Discount (%s)\t\t\t%s\n", summary.Discount, money(summary.Discounted.Sub(summary.Subtotal), currency))
	}
	fmt.Fprintf(tw, "Delivery (%s)\t\t\t%s\n", summary.Method, money(summary.DeliveryFee, currency))
	fmt.Fprintf(tw, "Grand total\t\t\t%s\n", money(summary.GrandTotal, currency))
	return tw.Flush()
}

func newOrdersCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect placed orders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List archived orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			svc, err := app.Orders()
			if err != nil {
				return err
			}
			placed, err := svc.Archive.List()
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tCREATED\tCUSTOMER\tMETHOD\tTOTAL")
			for _, o := range placed {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Customer.Name, o.Method, money(o.GrandTotal, o.Currency))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <order-id>",
		Args:  cobra.ExactArgs(1),
		Short: "Show one archived order",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			svc, err := app.Orders()
			if err != nil {
				return err
			}
			order, err := svc.Archive.Get(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "order %s, %s\n", order.ID, order.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "customer: %s %s\n\n", order.Customer.Name, order.Customer.Contact)
			tw := newTable(out)
			fmt.Fprintln(tw, "ITEM\tQTY\tTOTAL")
			for _, line := range order.Lines {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", line.Name, line.Quantity, money(line.Total(), order.Currency))
			}
			fmt.Fprintf(tw, "Grand total\t\t%s\n", money(order.GrandTotal, order.Currency))
			return tw.Flush()
		},
	})
	return cmd
}
