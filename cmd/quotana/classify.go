package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quotana/quotana/internal/classifier"
	"github.com/quotana/quotana/internal/cli"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Apply the trained model to the current supplier cohort",
		Long: `Engineer features from the purchase extracts and rate each supplier
with the persisted model. Fails with a hint to run 'quotana train' when
no model exists.`,
		RunE: runClassify,
	}
}

func runClassify(cmd *cobra.Command, _ []string) error {
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
	cohort := buildCohort(history)

	slog.Info(cli.FormatTitle("Classifying supplier cohort..."))

	classified, err := classifier.New(cfg.Model, store).Classify(ctx, cohort)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-40s %6s  %s\n", "SUPPLIER", "RATING", "CLASSIFICATION")
	for _, c := range classified {
		fmt.Fprintf(&b, "%-40s %6d  %s\n",
			c.Features.SupplierName, c.Rating, c.Classification)
	}

	slog.Info(cli.RenderBox("Classified Suppliers", strings.TrimRight(b.String(), "\n")))
	return nil
}
