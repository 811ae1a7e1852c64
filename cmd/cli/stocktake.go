package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hwdepot/rigbuilder/internal/stocktake"
)

func newStocktakeCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stocktake",
		Short: "Reconcile physical counts against recorded stock",
	}

	cmd.AddCommand(newStocktakeImportCommand(c), newStocktakeRunCommand(c), newStocktakeHistoryCommand(c))
	return cmd
}

func newStocktakeImportCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <stock.yaml>",
		Args:  cobra.ExactArgs(1),
		Short: "Record stock levels from a file",
		Long: `Record stock levels from a YAML list of {sku, name, quantity} entries.
Known SKUs take the imported quantity; new SKUs are added.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := stocktake.LoadStock(args[0])
			if err != nil {
				return err
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			svc, err := app.Stocktake(cmd.Context())
			if err != nil {
				return err
			}
			n, err := svc.Import(cmd.Context(), records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d stock records\n", n)
			return nil
		},
	}
}

func newStocktakeRunCommand(c *cli) *cobra.Command {
	var (
		actor  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "run <counts.yaml>",
		Args:  cobra.ExactArgs(1),
		Short: "Apply a counted-stock file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdLogger := c.logger.With("command", "stocktake.run")

			counted, err := stocktake.LoadCounts(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(actor) == "" {
				actor = os.Getenv("USER")
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			svc, err := app.Stocktake(cmd.Context())
			if err != nil {
				return err
			}
			result, err := svc.Run(cmd.Context(), counted, actor, dryRun)
			if err != nil {
				return err
			}
			cmdLogger.Debug("stock take finished", "dry_run", dryRun, "adjustments", len(result.Adjustments))

			out := cmd.OutOrStdout()
			if !result.HasChanges() {
				fmt.Fprintf(out, "no adjustments (%d matched)\n", result.Matched)
			} else {
				tw := newTable(out)
				fmt.Fprintln(tw, "SKU\tNAME\tRECORDED\tCOUNTED\tDELTA")
				for _, adj := range result.Adjustments {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%+d\n", adj.SKU, adj.Name, adj.Recorded, adj.Counted, adj.Delta)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			if len(result.Unknown) > 0 {
				fmt.Fprintf(out, "unknown SKUs: %s\n", strings.Join(result.Unknown, ", "))
			}
			if len(result.Uncounted) > 0 {
				fmt.Fprintf(out, "not counted: %s\n", strings.Join(result.Uncounted, ", "))
			}
			if dryRun && result.HasChanges() {
				fmt.Fprintln(out, "dry run, nothing applied")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Who performed the count (default $USER)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report adjustments without applying them")
	return cmd
}

func newStocktakeHistoryCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List applied stock takes",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			svc, err := app.Stocktake(cmd.Context())
			if err != nil {
				return err
			}
			if svc.Audit == nil {
				return errors.New("no audit log configured")
			}
			entries, err := svc.Audit.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tAT\tACTOR\tADJUSTMENTS\tUNKNOWN")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", e.ID, e.At.Format("2006-01-02 15:04"), e.Actor, len(e.Adjustments), len(e.Unknown))
			}
			return tw.Flush()
		},
	}
}
