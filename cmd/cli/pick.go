package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/picker"
)

func newPickCommand(c *cli) *cobra.Command {
	var (
		filter string
		query  string
		row    int
	)

	cmd := &cobra.Command{
		Use:   "pick <category>",
		Args:  cobra.ExactArgs(1),
		Short: "Choose an offering for a category",
		Long: `Open the picker for a category. With --row the visible row is chosen
directly; otherwise the picker reads commands from stdin:

  f <tag>    set the sub-type filter (empty resets to ALL)
  q <text>   set the search query
  <n>        choose row n
  x          close without choosing`,
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

			dialog := picker.New(app.Catalog, app.Builder, c.logger.With("command", "pick"))
			if err := dialog.Open(cat); err != nil {
				return err
			}
			if err := dialog.SetFilter(filter); err != nil {
				return err
			}
			if err := dialog.SetQuery(query); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			currency := app.Config.Checkout.Currency
			if row > 0 {
				chosen, err := dialog.Choose(cmd.Context(), row-1)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %s (%s)\n", cat.Label(), chosen.Name, money(chosen.UnitPrice, currency))
				return nil
			}
			return runPicker(cmd.Context(), dialog, cmd.InOrStdin(), out, currency)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "ALL", "Initial sub-type filter")
	cmd.Flags().StringVar(&query, "query", "", "Initial search query")
	cmd.Flags().IntVar(&row, "row", 0, "Choose the visible row with this number and exit")
	return cmd
}

func runPicker(ctx context.Context, dialog *picker.Dialog, in io.Reader, out io.Writer, currency string) error {
	scanner := bufio.NewScanner(in)
	for dialog.IsOpen() {
		if err := renderPicker(dialog, out, currency); err != nil {
			return err
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			dialog.Close()
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		cmdName, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		switch strings.ToLower(cmdName) {
		case "":
			continue
		case "x", "exit", "close":
			dialog.Close()
		case "f", "filter":
			_ = dialog.SetFilter(rest)
		case "q", "query":
			_ = dialog.SetQuery(rest)
		default:
			n, err := strconv.Atoi(cmdName)
			if err != nil {
				fmt.Fprintf(out, "unknown command %q\n", cmdName)
				continue
			}
			cat := dialog.Category()
			chosen, err := dialog.Choose(ctx, n-1)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%s: %s (%s)\n", cat.Label(), chosen.Name, money(chosen.UnitPrice, currency))
		}
	}
	return scanner.Err()
}

func renderPicker(dialog *picker.Dialog, out io.Writer, currency string) error {
	visible, err := dialog.Visible()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s  filter=%s query=%q\n", dialog.Category().Label(), dialog.Filter(), dialog.Query())
	fmt.Fprintf(out, "filters: %s\n", strings.Join(dialog.Filters(), " | "))
	if len(visible) == 0 {
		_, err := fmt.Fprintln(out, "no offerings match")
		return err
	}
	return printOfferings(out, visible, currency)
}
