// internal/workers/invoicing/email-invoice/handler.go
package emailinvoice

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"agency-workers/internal/billing"
	"agency-workers/internal/common/aws"
	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/metrics"
	"agency-workers/internal/common/observability"
	"agency-workers/internal/common/validation"
	"agency-workers/internal/documents"
	"agency-workers/internal/models"
	"agency-workers/internal/reconciliation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "email-invoice"

var inputSchema = validation.MustCompile(TaskType, validation.Object(
	[]string{"invoiceId"},
	map[string]interface{}{
		"invoiceId": map[string]interface{}{"type": "string", "minLength": 1},
		"to":        validation.ArrayOf(map[string]interface{}{"type": "string", "format": "email"}),
		"message":   validation.Type("string"),
	},
))

type API interface {
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
}

type Mailer interface {
	Send(ctx context.Context, email aws.Email) (string, error)
}

type HandlerOptions struct {
	Config        *Config
	API           API
	Mailer        Mailer
	Logos         *documents.LogoLoader
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	config *Config
	api    API
	mailer Mailer
	logos  *documents.LogoLoader
	obs    *observability.Observability
	logger logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	return &Handler{
		config: opts.Config,
		api:    opts.API,
		mailer: opts.Mailer,
		logos:  opts.Logos,
		obs:    opts.Observability,
		logger: opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(client, job, camunda.JobSpec{
		TaskType: TaskType,
		Timeout:  h.config.Timeout,
		Schema:   inputSchema,
		Logger:   h.logger,
	}, h.execute)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	inv, err := h.api.GetInvoice(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	to := recipients(input.To, inv.Customer.Email)
	if len(to) == 0 {
		return nil, errors.NewValidationError([]string{
			fmt.Sprintf("invoice %s has no customer email and no recipients were given", inv.Reference),
		})
	}

	opts := h.config.Options
	opts.Logo = h.logos.Load(ctx, inv.CreatedBy.ImgURL)

	var buf bytes.Buffer
	start := time.Now()
	summary, err := documents.RenderInvoice(&buf, *inv, opts)
	if err != nil {
		return nil, errors.NewDocumentRenderFailedError(inv.Reference, err)
	}
	h.obs.RecordRender(ctx, reconciliation.KindInvoice, "pdf", time.Since(start))
	metrics.DocumentsRendered.WithLabelValues(reconciliation.KindInvoice, "pdf").Inc()

	name := documents.InvoiceFileName(inv.Reference)
	messageID, err := h.mailer.Send(ctx, aws.Email{
		To:       to,
		Subject:  subject(inv, opts.Issuer),
		TextBody: body(inv, summary, opts, input.Message),
		Attachments: []aws.Attachment{{
			Filename:    name,
			ContentType: "application/pdf",
			Data:        buf.Bytes(),
		}},
	})
	if err != nil {
		return nil, errors.NewNotificationSendFailedError("email", err)
	}

	h.logger.Info("Invoice emailed", map[string]interface{}{
		"invoiceId":  inv.ID,
		"recipients": len(to),
		"messageId":  messageID,
	})
	return &Output{MessageID: messageID, Recipients: to, FileName: name}, nil
}

// recipients trims and dedupes the requested addresses, falling back to the
// customer's address when none were given.
func recipients(requested []string, fallback string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, addr := range requested {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, addr)
	}
	if len(out) == 0 && strings.TrimSpace(fallback) != "" {
		out = []string{strings.TrimSpace(fallback)}
	}
	return out
}

func subject(inv *models.Invoice, issuer models.Issuer) string {
	if issuer.CompanyName != "" {
		return fmt.Sprintf("Invoice %s from %s", inv.Reference, issuer.CompanyName)
	}
	return "Invoice " + inv.Reference
}

func body(inv *models.Invoice, s billing.InvoiceSummary, opts documents.Options, note string) string {
	var b strings.Builder
	name := inv.Customer.Name
	if name == "" {
		name = "Sir/Madam"
	}
	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	fmt.Fprintf(&b, "Please find attached invoice %s for %d student(s), %s %s.\n",
		inv.Reference, len(inv.Students), inv.Year, inv.Session)
	fmt.Fprintf(&b, "Amount due: %s%s\n", currency(opts), billing.Money(s.Total).StringFixed(2))
	if note = strings.TrimSpace(note); note != "" {
		b.WriteString("\n" + note + "\n")
	}
	b.WriteString("\nKind regards,\n")
	if opts.Issuer.CompanyName != "" {
		b.WriteString(opts.Issuer.CompanyName + "\n")
	}
	return b.String()
}

func currency(opts documents.Options) string {
	if opts.CurrencySymbol == "" {
		return "£"
	}
	return opts.CurrencySymbol
}
