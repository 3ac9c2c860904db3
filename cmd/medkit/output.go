package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/medkit-app/medkit/internal/inventory"
)

func validateFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
	}
}

func outputJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func getTerminalWidth() int {
	// Try to get terminal width from stdout
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	// Default width if terminal size cannot be determined
	return 80
}

// nameWidth is what is left for the name column once the fixed columns are laid out.
func nameWidth(termWidth, fixed, columns int) int {
	// Reserve space for table borders and padding (roughly 3 chars per column)
	width := termWidth - fixed - columns*3
	if width < 15 {
		width = 15
	}
	return width
}

func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	return t
}

func outputSupplyTable(cmd *cobra.Command, supplies []inventory.SupplyView) {
	t := newTable(cmd)

	maxBarcode := len("Barcode")
	maxContainer := len("Container")
	for _, s := range supplies {
		maxBarcode = max(maxBarcode, runewidth.StringWidth(s.Barcode))
		maxContainer = max(maxContainer, runewidth.StringWidth(s.Container))
	}
	// Qty, Expires (10), Status (13)
	fixed := maxBarcode + maxContainer + 5 + 10 + 13
	width := nameWidth(getTerminalWidth(), fixed, 6)

	// Note: we truncate with runewidth ourselves because go-pretty's WidthMax
	// doesn't handle multi-byte characters correctly.
	t.AppendHeader(table.Row{"Barcode", "Name", "Qty", "Expires", "Container", "Status"})
	for _, s := range supplies {
		expires := s.Expires
		if expires == "" {
			expires = "-"
		}
		t.AppendRow(table.Row{
			s.Barcode,
			runewidth.Truncate(s.Name, width, "..."),
			s.Quantity,
			expires,
			s.Container,
			string(s.Status),
		})
	}

	t.Render()
}

func outputSupplyDetail(cmd *cobra.Command, s inventory.SupplyView) {
	t := newTable(cmd)
	expires := s.Expires
	if expires == "" {
		expires = "-"
	}
	container := s.Container
	if container == "" {
		container = "-"
	}
	uses := strings.Join(s.Uses, ", ")
	if uses == "" {
		uses = "-"
	}
	width := nameWidth(getTerminalWidth(), len("Container"), 2)

	t.AppendRows([]table.Row{
		{"Barcode", s.Barcode},
		{"Name", runewidth.Truncate(s.Name, width, "...")},
		{"Quantity", s.Quantity},
		{"Expires", expires},
		{"Status", string(s.Status)},
		{"Container", container},
		{"Uses", runewidth.Truncate(uses, width, "...")},
	})
	t.Render()
}

func outputContainerTable(cmd *cobra.Command, containers []inventory.ContainerView) {
	t := newTable(cmd)
	width := nameWidth(getTerminalWidth(), 20+8, 3)

	t.AppendHeader(table.Row{"Barcode", "Name", "Supplies"})
	for _, c := range containers {
		t.AppendRow(table.Row{c.Barcode, runewidth.Truncate(c.Name, width, "..."), c.Supplies})
	}
	t.Render()
}

func outputSupplyUseTable(cmd *cobra.Command, uses []inventory.SupplyUseView) {
	t := newTable(cmd)
	width := nameWidth(getTerminalWidth(), 4+7, 3)

	t.AppendHeader(table.Row{"ID", "Name", "Default"})
	for _, u := range uses {
		def := ""
		if u.IsDefault {
			def = "yes"
		}
		t.AppendRow(table.Row{u.ID, runewidth.Truncate(u.Name, width, "..."), def})
	}
	t.Render()
}
