package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hwdepot/rigbuilder/category"
)

func newCatalogCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the component catalog",
	}

	cmd.AddCommand(newCatalogListCommand(c), newCatalogShowCommand(c))
	return cmd
}

func newCatalogListCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List component categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "CATEGORY\tLABEL\tKIND\tOFFERINGS\tFILTERS")
			for _, cat := range app.Catalog.Categories() {
				entry, err := app.Catalog.Entry(cat)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", cat, cat.Label(), cat.Kind(), len(entry.Offerings), strings.Join(entry.SubTypeFilters, ", "))
			}
			return tw.Flush()
		},
	}
}

func newCatalogShowCommand(c *cli) *cobra.Command {
	var filter, query string

	cmd := &cobra.Command{
		Use:   "show <category>",
		Args:  cobra.ExactArgs(1),
		Short: "Show the offerings of one category",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := category.Parse(args[0])
			if err != nil {
				return err
			}
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			offerings, err := app.Catalog.Search(cat, filter, query)
			if err != nil {
				return err
			}
			if len(offerings) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no %s offerings match\n", cat.Label())
				return nil
			}
			return printOfferings(cmd.OutOrStdout(), offerings, app.Config.Checkout.Currency)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "ALL", "Sub-type filter tag")
	cmd.Flags().StringVar(&query, "query", "", "Search text matched against offering names")
	return cmd
}
