// internal/workers/invoicing/export-invoice-accounting/handler.go
package exportinvoiceaccounting

import (
	"context"
	"fmt"

	"agency-workers/internal/billing"
	"agency-workers/internal/common/accounting"
	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/validation"
	"agency-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "export-invoice-accounting"

var inputSchema = validation.MustCompile(TaskType, validation.Object(
	[]string{"session", "invoiceId"},
	map[string]interface{}{
		"session":   validation.Object([]string{"userId"}, map[string]interface{}{"userId": validation.Type("string")}),
		"invoiceId": map[string]interface{}{"type": "string", "minLength": 1},
	},
))

type API interface {
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, id string, fields map[string]interface{}) error
}

// Exporter posts an invoice to the accounting ledger.
type Exporter interface {
	Export(ctx context.Context, inv *models.Invoice) (*accounting.Transaction, error)
}

type Handler struct {
	config   *Config
	api      API
	exporter Exporter
	logger   logger.Logger
}

func NewHandler(cfg *Config, api API, exporter Exporter, log logger.Logger) *Handler {
	return &Handler{
		config:   cfg,
		api:      api,
		exporter: exporter,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
	if err := input.Session.Require(models.PrivilegeInvoiceUpdate); err != nil {
		return nil, err
	}

	inv, err := h.api.GetInvoice(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.IsPaid() {
		return nil, errors.NewValidationError([]string{
			fmt.Sprintf("invoice %s is %s; only paid invoices can be exported", inv.Reference, inv.Status),
		})
	}
	if inv.Exported {
		h.logger.Info("Invoice already exported", map[string]interface{}{"invoiceId": inv.ID})
		return &Output{InvoiceID: inv.ID, Reference: inv.Reference, Exported: true, Skipped: true}, nil
	}

	tx, err := h.exporter.Export(ctx, inv)
	if err != nil {
		return nil, errors.NewAccountingExportFailedError(inv.ID, err)
	}

	// exported is what stops a second ledger entry on the next run.
	if err := h.api.UpdateInvoice(ctx, inv.ID, map[string]interface{}{"exported": true}); err != nil {
		return nil, err
	}

	h.logger.Info("Invoice exported to accounting", map[string]interface{}{
		"invoiceId": inv.ID,
		"reference": inv.Reference,
		"amount":    tx.Amount.String(),
	})

	return &Output{
		InvoiceID:       inv.ID,
		Reference:       inv.Reference,
		Exported:        true,
		TransactionDate: tx.TransactionDate,
		Amount:          billing.Money(tx.Amount.Decimal).StringFixed(2),
	}, nil
}
