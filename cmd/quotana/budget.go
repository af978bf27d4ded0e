package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quotana/quotana/internal/analysis"
	"github.com/quotana/quotana/internal/budget"
	"github.com/quotana/quotana/internal/cli"
	"github.com/quotana/quotana/internal/model"
	"github.com/quotana/quotana/internal/registry"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Aggregate confirmed decisions into per-supplier budgets",
		Long: `Read a decisions file mapping product codes to supplier assignments,
group the assignments into one budget per supplier and audit the prices.
With --confirm the budgets are persisted, resolving contact phones from
the company registry.`,
		RunE: runBudget,
	}

	cmd.Flags().StringP("decisions", "d", "", "JSON decisions file (required)")
	cmd.Flags().Bool("confirm", false, "persist the budgets")
	_ = cmd.MarkFlagRequired("decisions")

	return cmd
}

// decisionsFile is the on-disk shape of the decisions map. Alias fields
// are resolved here, at the ingress boundary, and nowhere else.
type decisionsFile map[string][]struct {
	SupplierName string  `json:"supplier_name"`
	Supplier     string  `json:"supplier"`
	TaxID        string  `json:"tax_id"`
	BasePrice    float64 `json:"base_price"`
	Recurrence   int     `json:"recurrence"`
}

func loadDecisions(path string) (model.Decisions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read decisions file: %w", err)
	}

	var file decisionsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse decisions file: %w", err)
	}

	decisions := make(model.Decisions, len(file))
	for code, entries := range file {
		assignments := make([]model.Assignment, 0, len(entries))
		for _, e := range entries {
			name := e.SupplierName
			if name == "" {
				name = e.Supplier
			}
			assignments = append(assignments, model.Assignment{
				SupplierName: name,
				TaxID:        e.TaxID,
				BasePrice:    e.BasePrice,
				Recurrence:   e.Recurrence,
			})
		}
		decisions[code] = assignments
	}
	return decisions, nil
}

func runBudget(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	decisionsPath, _ := cmd.Flags().GetString("decisions")
	confirm, _ := cmd.Flags().GetBool("confirm")

	decisions, err := loadDecisions(decisionsPath)
	if err != nil {
		return err
	}

	budgets := budget.Summarize(decisions)
	if len(budgets) == 0 {
		slog.Warn(cli.FormatWarning("Decisions file produced no budgets."))
		return nil
	}

	var b strings.Builder
	for i, bd := range budgets {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  (total R$ %.2f)\n", bd.SupplierName, bd.TotalValue)
		for _, audited := range analysis.AuditBudgetItems(bd.Items) {
			fmt.Fprintf(&b, "  %-12s R$ %9.2f  %s\n",
				audited.ProductCode, audited.BasePrice, audited.Flags)
		}
	}

	slog.Info(cli.RenderBox(
		fmt.Sprintf("Budgets (%d suppliers, %d assignments)", len(budgets), decisions.AssignmentCount()),
		strings.TrimRight(b.String(), "\n")))

	if !confirm {
		slog.Info(cli.FormatSubtle("Dry run. Re-run with --confirm to persist."))
		return nil
	}

	store, cfg, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	aggregator := budget.NewAggregator(store, registry.NewClient(cfg.Registry, store))
	persisted, err := aggregator.Confirm(ctx, budgets)
	if err != nil {
		return err
	}

	for _, p := range persisted {
		slog.Info(cli.FormatSuccess(
			fmt.Sprintf("Budget #%d saved for %s (R$ %.2f)", p.ID, p.SupplierName, p.TotalValue)))
	}
	return nil
}
