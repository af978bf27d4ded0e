package main

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quotana/quotana/internal/classifier"
	"github.com/quotana/quotana/internal/cli"
)

func trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train the supplier quality model on purchase history",
		Long: `Engineer per-supplier features from the purchase extracts, derive
quantile ratings, fit the regression model and persist both the model
artifacts and the classified cohort.`,
		RunE: runTrain,
	}
}

func runTrain(cmd *cobra.Command, _ []string) error {
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

	slog.Info(cli.FormatTitle("Training supplier quality model..."))

	report, err := classifier.New(cfg.Model, store).Train(ctx, cohort)
	if err != nil {
		return err
	}

	labels := make([]string, 0, len(report.Distributed))
	for label := range report.Distributed {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var b strings.Builder
	fmt.Fprintf(&b, "Suppliers classified: %d\n", report.CohortSize)
	fmt.Fprintf(&b, "Holdout MAE: %.3f\n", report.HoldoutMAE)
	fmt.Fprintf(&b, "Executed at: %s\n\n", report.ExecutedAt.Format(time.RFC3339))
	for _, label := range labels {
		fmt.Fprintf(&b, "%-25s %d\n", label, report.Distributed[label])
	}

	slog.Info(cli.RenderBox("Training Report", strings.TrimRight(b.String(), "\n")))
	slog.Info(cli.FormatSuccess("Model trained and persisted"))
	return nil
}
