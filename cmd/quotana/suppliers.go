package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quotana/quotana/internal/analysis"
	"github.com/quotana/quotana/internal/cli"
	"github.com/quotana/quotana/internal/common"
	"github.com/quotana/quotana/internal/config"
	"github.com/quotana/quotana/internal/flow"
	"github.com/quotana/quotana/internal/model"
)

func suppliersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suppliers",
		Short: "List the latest classified suppliers",
		Long: `Show the most recent classification run, best rated first. The filter
accepts a classification label or a synonym like "melhores" or "ruins".
Without a trained model the suppliers are scored by the rule-based 0-100
heuristic instead.`,
		RunE: runSuppliers,
	}

	cmd.Flags().StringP("filter", "f", "", "only show suppliers with this classification")

	return cmd
}

func runSuppliers(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	filter, _ := cmd.Flags().GetString("filter")

	store, cfg, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	suppliers, err := store.LatestClassifiedSuppliers(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			if filter != "" {
				return fmt.Errorf("classification filter %q needs a trained model; run 'quotana train' first", filter)
			}
			slog.Warn(cli.FormatWarning("No classification run found; showing heuristic scores. Run 'quotana train' for ratings."))
			return runHeuristicSuppliers(cfg)
		}
		return err
	}

	if filter != "" {
		label, ok := flow.ParseLabelFilter(filter)
		if !ok {
			return fmt.Errorf("unknown classification filter: %q", filter)
		}
		kept := suppliers[:0]
		for _, s := range suppliers {
			if s.Classification == label {
				kept = append(kept, s)
			}
		}
		suppliers = kept
	}

	if len(suppliers) == 0 {
		slog.Info(cli.FormatSubtle("No suppliers match the filter."))
		return nil
	}

	sort.SliceStable(suppliers, func(i, j int) bool {
		if suppliers[i].Rating != suppliers[j].Rating {
			return suppliers[i].Rating > suppliers[j].Rating
		}
		return suppliers[i].Score > suppliers[j].Score
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%-40s %6s  %-25s %10s\n", "SUPPLIER", "RATING", "CLASSIFICATION", "LEAD(d)")
	for _, s := range suppliers {
		fmt.Fprintf(&b, "%-40s %6d  %-25s %10.1f\n",
			s.Features.SupplierName, s.Rating, s.Classification, s.Features.AvgLeadTime)
	}

	slog.Info(cli.RenderBox(fmt.Sprintf("Suppliers (%d)", len(suppliers)),
		strings.TrimRight(b.String(), "\n")))
	return nil
}

// heuristicEntry is one supplier scored by the rule-based pre-classifier.
type heuristicEntry struct {
	SupplierName string
	AvgLeadTime  float64
	TotalSpent   float64
	Score        int
}

// heuristicEntries scores the cohort with the rule-based heuristic, best
// first with name as the tie-break. The purchase extracts carry no region
// column, so the preferred-region bonus never applies on this path.
func heuristicEntries(cohort []model.SupplierFeatures) []heuristicEntry {
	entries := make([]heuristicEntry, 0, len(cohort))
	for _, f := range cohort {
		entries = append(entries, heuristicEntry{
			SupplierName: f.SupplierName,
			AvgLeadTime:  f.AvgLeadTime,
			TotalSpent:   f.TotalSpent,
			Score:        analysis.HeuristicSupplierScore(f.AvgLeadTime, f.TotalSpent, ""),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].SupplierName < entries[j].SupplierName
	})
	return entries
}

func runHeuristicSuppliers(cfg *config.Config) error {
	history, err := loadHistory(cfg)
	if err != nil {
		return err
	}
	entries := heuristicEntries(buildCohort(history))
	if len(entries) == 0 {
		slog.Info(cli.FormatSubtle("No purchase history loaded."))
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-40s %6s %12s %10s\n", "SUPPLIER", "SCORE", "SPENT", "LEAD(d)")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-40s %6d %12.2f %10.1f\n",
			e.SupplierName, e.Score, e.TotalSpent, e.AvgLeadTime)
	}

	slog.Info(cli.RenderBox(fmt.Sprintf("Suppliers, heuristic score (%d)", len(entries)),
		strings.TrimRight(b.String(), "\n")))
	return nil
}
