package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quotana/quotana/internal/cli"
	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/model"
	"github.com/quotana/quotana/internal/ranking"
)

func rankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank <product-code>...",
		Short: "Rank the top suppliers for each product",
		Long: `For each product, rank the suppliers that sold it by classifier rating,
mean price and local purchase count, keeping the top three.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRank,
	}
}

func runRank(cmd *cobra.Command, args []string) error {
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

	cohort, err := store.LatestClassifiedSuppliers(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		slog.Warn(cli.FormatWarning("No classification run found, ranking without ratings."))
		cohort = nil
	}

	rankings := ranking.Rank(history.Records, args, cohort)
	if len(rankings) == 0 {
		slog.Warn(cli.FormatWarning("No purchase history for the given product codes."))
		return nil
	}

	var b strings.Builder
	for i, r := range rankings {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s\n", r.ProductCode, truncate(r.Description, 45))
		for pos, s := range r.Suppliers {
			fmt.Fprintf(&b, "  %d. %-40s R$ %9.2f  x%-3d %s\n",
				pos+1, s.SupplierName, s.MeanPrice, s.LocalCount, ratingSummary(s))
		}
	}

	slog.Info(cli.RenderBox(fmt.Sprintf("Supplier Ranking (%d products)", len(rankings)),
		strings.TrimRight(b.String(), "\n")))
	return nil
}

func ratingSummary(s model.SupplierRankingEntry) string {
	return fmt.Sprintf("[%d] %s", s.Rating, s.Classification)
}
