// Package mailer dispatches quotation request emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/quotana/quotana/internal/config"
	"github.com/quotana/quotana/internal/model"
)

// SMTPMailer sends quotation requests through a configured SMTP relay.
// Transport failures never abort a batch; each budget yields a SendResult
// recording success or the failure reason.
type SMTPMailer struct {
	cfg config.SMTPConfig
	now func() time.Time
}

// NewSMTPMailer creates a mailer from SMTP configuration.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, now: time.Now}
}

// SendQuotation renders and sends the quotation request for one budget.
// The returned result carries the rendered message body either way so a
// failed dispatch can still be inspected or retried by hand.
func (m *SMTPMailer) SendQuotation(ctx context.Context, budget model.Budget) model.SendResult {
	result := model.SendResult{
		SentAt:       m.now().UTC(),
		SupplierName: budget.SupplierName,
		Recipient:    m.cfg.Recipient,
	}

	body, err := RenderQuotation(budget)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Message = body

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.User); err != nil {
		result.Error = fmt.Sprintf("invalid sender address: %v", err)
		return result
	}
	if err := msg.To(m.cfg.Recipient); err != nil {
		result.Error = fmt.Sprintf("invalid recipient address: %v", err)
		return result
	}
	msg.Subject(fmt.Sprintf("Solicitação de cotação - %s", budget.SupplierName))
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		result.Error = fmt.Sprintf("failed to create smtp client: %v", err)
		return result
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		result.Error = fmt.Sprintf("failed to send: %v", err)
		slog.Warn("quotation dispatch failed",
			"supplier", budget.SupplierName,
			"error", err)
		return result
	}

	result.Success = true
	slog.Info("quotation sent",
		"supplier", budget.SupplierName,
		"recipient", result.Recipient,
		"items", len(budget.Items))
	return result
}
