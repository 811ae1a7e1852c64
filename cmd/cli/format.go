package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/build"
	"github.com/hwdepot/rigbuilder/internal/catalog"
	"github.com/hwdepot/rigbuilder/internal/diagnostics"
)

const barWidth = 20

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func money(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(2) + " " + currency
}

func bar(score int) string {
	filled := score * barWidth / 100
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

func printOfferings(w io.Writer, offerings []catalog.Offering, currency string) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tID\tNAME\tPRICE\tSTATUS\tWEIGHT")
	for i, o := range offerings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n", i+1, o.ID, o.Name, money(o.UnitPrice, currency), o.Availability.Label(), o.PerformanceWeight)
	}
	return tw.Flush()
}

func printBuild(w io.Writer, state build.State, currency string) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\t#\tSELECTION\tQTY\tPRICE")
	for _, c := range category.All() {
		sel := state.Selection(c)
		if sel.IsEmpty() {
			fmt.Fprintf(tw, "%s\t\t-\t\t\n", c.Label())
			continue
		}
		for i, item := range sel.Items() {
			qty := 1
			if !c.AllowsMultiple() {
				qty = sel.Quantity()
			}
			index := ""
			if c.AllowsMultiple() {
				index = fmt.Sprint(i + 1)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", c.Label(), index, item.Name, qty, money(item.UnitPrice, currency))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	d := diagnostics.Compute(state)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Processing output  %s %3d\n", bar(d.ProcessingOutput), d.ProcessingOutput)
	fmt.Fprintf(w, "Graphical load     %s %3d\n", bar(d.GraphicalLoad), d.GraphicalLoad)
	fmt.Fprintf(w, "Data registry      %s %3d\n", bar(d.DataRegistry), d.DataRegistry)
	fmt.Fprintf(w, "Engine health      %s %s\n", bar(d.StabilityScore), d.EngineHealth)
	_, err := fmt.Fprintf(w, "Total              %s\n", money(d.TotalPrice, currency))
	return err
}
