package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/quotana/quotana/internal/cli"
	"github.com/quotana/quotana/internal/mailer"
	"github.com/quotana/quotana/internal/model"
)

func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Email quotation requests for persisted budgets",
		Long: `Render a quotation request per budget and send it over SMTP. A failed
dispatch never aborts the batch; the tally reports sent and failed
budgets at the end.`,
		RunE: runSend,
	}

	cmd.Flags().Int64Slice("budget-ids", nil, "budget IDs to send (default: all)")

	return cmd
}

func runSend(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	ids, _ := cmd.Flags().GetInt64Slice("budget-ids")

	store, cfg, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := cfg.ValidateSMTP(); err != nil {
		return err
	}

	budgets, err := store.ListBudgets(ctx, ids)
	if err != nil {
		return err
	}
	if len(budgets) == 0 {
		slog.Warn(cli.FormatWarning("No budgets to send. Run 'quotana budget --confirm' first."))
		return nil
	}

	slog.Info(cli.FormatTitle(fmt.Sprintf("Sending %d quotation requests...", len(budgets))))

	bar := progressbar.NewOptions(len(budgets),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("sending"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	smtp := mailer.NewSMTPMailer(cfg.SMTP)
	results := make([]model.SendResult, 0, len(budgets))
	for _, b := range budgets {
		results = append(results, smtp.SendQuotation(ctx, b))
		_ = bar.Add(1)
	}

	sent, failed := 0, 0
	var detail strings.Builder
	for _, r := range results {
		if r.Success {
			sent++
			fmt.Fprintf(&detail, "%s %s\n", cli.SuccessIcon, r.SupplierName)
		} else {
			failed++
			fmt.Fprintf(&detail, "%s %s: %s\n", cli.ErrorIcon, r.SupplierName, r.Error)
		}
	}

	slog.Info(cli.RenderBox(
		fmt.Sprintf("Dispatch: %d sent, %d failed", sent, failed),
		strings.TrimRight(detail.String(), "\n")))

	if failed > 0 {
		return fmt.Errorf("%d of %d quotation requests failed", failed, len(results))
	}
	return nil
}
