package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quotana/quotana/internal/analysis"
	"github.com/quotana/quotana/internal/budget"
	"github.com/quotana/quotana/internal/classifier"
	"github.com/quotana/quotana/internal/cli"
	"github.com/quotana/quotana/internal/config"
	"github.com/quotana/quotana/internal/dataset"
	"github.com/quotana/quotana/internal/flow"
	"github.com/quotana/quotana/internal/model"
	"github.com/quotana/quotana/internal/ranking"
	"github.com/quotana/quotana/internal/registry"
	"github.com/quotana/quotana/internal/service"
	"github.com/quotana/quotana/internal/shortlist"
)

func flowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flow",
		Short: "Run the interactive procurement wizard",
		Long: `Walk through the full pipeline in one guided session: pick suppliers
from the classified cohort, shortlist products, choose a supplier per
product from the ranking and confirm the resulting budgets.`,
		RunE: runFlow,
	}
}

// errWizardQuit signals a user-requested exit, not a failure.
var errWizardQuit = errors.New("wizard quit")

// errStageRestart sends the wizard back to supplier selection when a stage
// cannot proceed with the current selection.
var errStageRestart = errors.New("stage restart")

const helpText = `Etapas do assistente:
  1. Seleção de fornecedores (cohort classificado)
  2. Seleção de produtos (shortlist)
  3. Escolha do fornecedor por produto (ranking)
  4. Confirmação dos orçamentos

Digite "sair" a qualquer momento para encerrar.`

type wizard struct {
	session    *flow.Session
	pipeline   *flow.Pipeline
	reader     *cli.LineReader
	store      service.Storage
	cfg        *config.Config
	history    *dataset.History
	cohort     []model.SupplierFeatures
	classified []model.ClassifiedSupplier

	selectedSuppliers []string
	selectedProducts  []string
	rankings          []model.ProductRanking
	decisions         model.Decisions
}

func runFlow(cmd *cobra.Command, _ []string) error {
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

	w := &wizard{
		session:  flow.NewSession(store, nil),
		pipeline: flow.NewPipeline(store, classifier.New(cfg.Model, store)),
		reader:   cli.NewLineReader(os.Stdin),
		store:    store,
		cfg:      cfg,
		history:  history,
		cohort:   buildCohort(history),
	}

	err = w.run(ctx)
	switch {
	case errors.Is(err, errWizardQuit), errors.Is(err, cli.ErrInputCancelled):
		if ferr := w.session.Finish(ctx, flow.RunStatusAborted); ferr != nil {
			slog.Warn("failed to record session status", "error", ferr)
		}
		fmt.Println(cli.FormatSubtle("Sessão encerrada."))
		return nil
	case err != nil:
		if ferr := w.session.Finish(ctx, flow.RunStatusAborted); ferr != nil {
			slog.Warn("failed to record session status", "error", ferr)
		}
		return err
	}

	return w.session.Finish(ctx, flow.RunStatusCompleted)
}

func (w *wizard) run(ctx context.Context) error {
	fmt.Println(cli.FormatTitle("Assistente de cotações"))
	fmt.Println(helpText)
	fmt.Println()

	text, err := w.prompt(ctx, "O que você precisa")
	if err != nil {
		return err
	}
	if err := w.session.Start(ctx, text); err != nil {
		return err
	}

	action, reason := w.session.Route(ctx, text)
	fmt.Println(cli.FormatSubtle(reason))
	switch action {
	case flow.ActionQuit:
		return errWizardQuit
	case flow.ActionHelp:
		fmt.Println(helpText)
	default:
		if t := w.session.Apply(action); t.Redirected {
			fmt.Println(cli.FormatWarning(t.Note))
		} else {
			// The routed intent only positions the wizard; the stage
			// itself still has to be worked through below.
			w.session.Machine.Reset()
		}
	}

	for w.session.Machine.Stage() != flow.StageDone {
		var action flow.Action

		var stageErr error
		switch w.session.Machine.Stage() {
		case flow.StageSupplierSelection:
			stageErr = w.chooseSuppliers(ctx)
			action = flow.ActionSelectSuppliers
		case flow.StageProductSelection:
			stageErr = w.chooseProducts(ctx)
			action = flow.ActionSelectProducts
		case flow.StageRankingSelection:
			stageErr = w.chooseRanking(ctx)
			action = flow.ActionSelectRanking
		case flow.StageBudgetConfirmation:
			stageErr = w.confirmBudgets(ctx)
			action = flow.ActionConfirmBudget
		default:
			return fmt.Errorf("unexpected wizard stage %s", w.session.Machine.Stage())
		}

		if errors.Is(stageErr, errStageRestart) {
			w.session.Machine.Reset()
			continue
		}
		if stageErr != nil {
			return stageErr
		}
		w.session.Apply(action)
	}

	fmt.Println(cli.FormatSuccess("Fluxo concluído."))
	return nil
}

// prompt reads one line, translating quit keywords into errWizardQuit.
func (w *wizard) prompt(ctx context.Context, label string) (string, error) {
	fmt.Print(cli.FormatPrompt(label))
	text, err := w.reader.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(text) {
	case "sair", "quit", "exit":
		return "", errWizardQuit
	}
	return text, nil
}

func (w *wizard) chooseSuppliers(ctx context.Context) error {
	classified, err := w.pipeline.ClassifiedCohort(ctx, w.cohort)
	if err != nil {
		return err
	}
	w.classified = classified

	sorted := make([]model.ClassifiedSupplier, len(classified))
	copy(sorted, classified)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})

	var b strings.Builder
	for _, c := range sorted {
		fmt.Fprintf(&b, "%-40s [%d] %s\n", c.Features.SupplierName, c.Rating, c.Classification)
	}
	fmt.Println(cli.RenderBox("Fornecedores classificados", strings.TrimRight(b.String(), "\n")))

	for {
		text, err := w.prompt(ctx, "Fornecedores (separados por vírgula)")
		if err != nil {
			return err
		}
		names := splitList(text)
		if len(names) > 0 {
			w.selectedSuppliers = names
			return nil
		}
		fmt.Println(cli.FormatWarning("Informe ao menos um fornecedor."))
	}
}

func (w *wizard) chooseProducts(ctx context.Context) error {
	candidates, err := shortlist.Suggest(w.history.Records, w.selectedSuppliers)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Println(cli.FormatWarning("Sem histórico de compras para os fornecedores escolhidos."))
		return errStageRestart
	}

	var b strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&b, "%-12s %-35s R$ %9.2f  %s\n",
			c.ProductCode, truncate(c.Description, 35), c.LastPrice, c.Justification)
	}
	fmt.Println(cli.RenderBox("Shortlist de produtos", strings.TrimRight(b.String(), "\n")))

	text, err := w.prompt(ctx, "Códigos de produto (vazio = todos)")
	if err != nil {
		return err
	}
	codes := splitList(text)
	if len(codes) == 0 {
		codes = shortlist.Codes(candidates)
	}
	w.selectedProducts = codes
	return nil
}

func (w *wizard) chooseRanking(ctx context.Context) error {
	w.rankings = ranking.Rank(w.history.Records, w.selectedProducts, w.classified)
	if len(w.rankings) == 0 {
		fmt.Println(cli.FormatWarning("Nenhum produto com histórico entre os selecionados."))
		return errStageRestart
	}

	w.decisions = make(model.Decisions, len(w.rankings))
	for _, r := range w.rankings {
		var b strings.Builder
		for pos, s := range r.Suppliers {
			fmt.Fprintf(&b, "%d. %-40s R$ %9.2f  x%-3d [%d] %s\n",
				pos+1, s.SupplierName, s.MeanPrice, s.LocalCount, s.Rating, s.Classification)
		}
		fmt.Println(cli.RenderBox(
			fmt.Sprintf("%s  %s", r.ProductCode, truncate(r.Description, 45)),
			strings.TrimRight(b.String(), "\n")))

		chosen, err := w.pickSupplier(ctx, r)
		if err != nil {
			return err
		}
		// No tax ID is known from history alone, so wizard budgets are
		// saved without a registry phone lookup.
		w.decisions[r.ProductCode] = []model.Assignment{{
			SupplierName: chosen.SupplierName,
			BasePrice:    chosen.MeanPrice,
			Recurrence:   chosen.LocalCount,
		}}
	}
	return nil
}

func (w *wizard) pickSupplier(ctx context.Context, r model.ProductRanking) (model.SupplierRankingEntry, error) {
	for {
		text, err := w.prompt(ctx, fmt.Sprintf("Fornecedor para %s (1-%d, vazio = 1)", r.ProductCode, len(r.Suppliers)))
		if err != nil {
			return model.SupplierRankingEntry{}, err
		}
		if text == "" {
			return r.Suppliers[0], nil
		}
		choice, err := strconv.Atoi(text)
		if err == nil && choice >= 1 && choice <= len(r.Suppliers) {
			return r.Suppliers[choice-1], nil
		}
		fmt.Println(cli.FormatWarning("Escolha inválida."))
	}
}

func (w *wizard) confirmBudgets(ctx context.Context) error {
	budgets := budget.Summarize(w.decisions)

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
	fmt.Println(cli.RenderBox(
		fmt.Sprintf("Orçamentos (%d fornecedores)", len(budgets)),
		strings.TrimRight(b.String(), "\n")))

	text, err := w.prompt(ctx, "Confirmar e salvar? (s/n)")
	if err != nil {
		return err
	}
	if !strings.EqualFold(text, "s") && !strings.EqualFold(text, "sim") {
		return errWizardQuit
	}

	aggregator := budget.NewAggregator(w.store, registry.NewClient(w.cfg.Registry, w.store))
	persisted, err := aggregator.Confirm(ctx, budgets)
	if err != nil {
		return err
	}
	for _, p := range persisted {
		fmt.Println(cli.FormatSuccess(
			fmt.Sprintf("Orçamento #%d salvo para %s (R$ %.2f)", p.ID, p.SupplierName, p.TotalValue)))
	}
	return nil
}

func splitList(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
