package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/diagnostics"
)

func newBuildCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Inspect and edit the saved build",
	}

	cmd.AddCommand(
		newBuildShowCommand(c),
		newBuildAddCommand(c),
		newBuildRemoveCommand(c),
		newBuildQuantityCommand(c),
		newBuildResetCommand(c),
	)
	return cmd
}

func newBuildShowCommand(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current build and its diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			state := app.Builder.State()
			if !asJSON {
				return printBuild(cmd.OutOrStdout(), state, app.Config.Checkout.Currency)
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(struct {
				Build       any                  `json:"build"`
				Diagnostics diagnostics.Snapshot `json:"diagnostics"`
			}{state, diagnostics.Compute(state)})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot document and diagnostics as JSON")
	return cmd
}

func newBuildAddCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <category> <offering-id>",
		Args:  cobra.ExactArgs(2),
		Short: "Select a catalog offering by id",
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

			offering, err := app.Catalog.Find(cat, args[1])
			if err != nil {
				return err
			}
			if err := app.Builder.Select(cmd.Context(), cat, offering); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cat.Label(), offering.Name)
			return nil
		},
	}
}

func newBuildRemoveCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <category> [index]",
		Args:  cobra.RangeArgs(1, 2),
		Short: "Clear a category or remove one entry of a multi category",
		Long: `Clear a single-valued category, or remove the entry at index (as listed
by "build show") from a multi-valued category. The index is required for
multi-valued categories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := category.Parse(args[0])
			if err != nil {
				return err
			}
			index, err := removeIndex(cat, args[1:])
			if err != nil {
				return err
			}
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Builder.Remove(cmd.Context(), cat, index)
		},
	}
}

// removeIndex converts the optional 1-based index argument. Multi-valued
// categories need it; single-valued ones ignore it.
func removeIndex(cat category.Category, args []string) (int, error) {
	if len(args) == 0 {
		if cat.AllowsMultiple() {
			return 0, fmt.Errorf("%s holds several entries, give the index to remove (see \"build show\")", cat)
		}
		return 0, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", args[0], err)
	}
	return n - 1, nil
}

func newBuildQuantityCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "qty <category> <delta>",
		Aliases: []string{"quantity"},
		Args:    cobra.ExactArgs(2),
		Short:   "Change the quantity of a quantity-bearing category",
		Example: "  rigbuilder build qty memory +1\n  rigbuilder build qty memory -- -1",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := category.Parse(args[0])
			if err != nil {
				return err
			}
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid delta %q: %w", args[1], err)
			}
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Builder.SetQuantity(cmd.Context(), cat, delta); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s quantity: %d\n", cat.Label(), app.Builder.State().Selection(cat).Quantity())
			return nil
		},
	}
}

func newBuildResetCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear every category and delete the saved snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Builder.ResetAll(cmd.Context())
		},
	}
}
