// internal/workers/invoicing/mark-invoice-paid/handler.go
package markinvoicepaid

import (
	"context"

	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/validation"
	"agency-workers/internal/models"
	"agency-workers/internal/reconciliation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "mark-invoice-paid"

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

type Handler struct {
	config *Config
	api    API
	logger logger.Logger
}

func NewHandler(cfg *Config, api API, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		api:    api,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
	if inv.IsPaid() {
		return nil, errors.NewInvoiceLockedError(reconciliation.KindInvoice, inv.ID)
	}

	if err := h.api.UpdateInvoice(ctx, inv.ID, map[string]interface{}{"status": models.StatusPaid}); err != nil {
		return nil, err
	}

	h.logger.Info("Invoice marked paid", map[string]interface{}{
		"invoiceId": inv.ID,
		"reference": inv.Reference,
		"userId":    input.Session.UserID,
	})
	return &Output{InvoiceID: inv.ID, Reference: inv.Reference, Status: models.StatusPaid}, nil
}
