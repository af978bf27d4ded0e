package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quotana/quotana/internal/cli"
	"github.com/quotana/quotana/internal/shortlist"
)

func shortlistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shortlist <supplier>...",
		Short: "Suggest candidate products for a chosen supplier set",
		Long: `Derive candidate products from overlap and recurrence across the chosen
suppliers, falling back to the highest-volume products when the rules
produce nothing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runShortlist,
	}
}

func runShortlist(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, cfg, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	history, err := loadHistory(cfg)
	if err != nil {
		return err
	}

	candidates, err := shortlist.Suggest(history.Records, args)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		slog.Warn(cli.FormatWarning("No purchase history for the chosen suppliers."))
		return nil
	}

	var b strings.Builder
	current := ""
	for _, c := range candidates {
		if c.SupplierName != current {
			if current != "" {
				b.WriteString("\n")
			}
			current = c.SupplierName
			fmt.Fprintf(&b, "%s\n", c.SupplierName)
		}
		fmt.Fprintf(&b, "  %-12s %-35s R$ %9.2f  %s\n",
			c.ProductCode, truncate(c.Description, 35), c.LastPrice, c.Justification)
	}

	slog.Info(cli.RenderBox(fmt.Sprintf("Product Shortlist (%d candidates)", len(candidates)),
		strings.TrimRight(b.String(), "\n")))
	return nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
