// internal/workers/remittance/mark-remit-paid/handler.go
package markremitpaid

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

const TaskType = "mark-remit-paid"

var inputSchema = validation.MustCompile(TaskType, validation.Object(
	[]string{"session", "remitId"},
	map[string]interface{}{
		"session": validation.Object([]string{"userId"}, map[string]interface{}{"userId": validation.Type("string")}),
		"remitId": map[string]interface{}{"type": "string", "minLength": 1},
	},
))

type API interface {
	GetRemit(ctx context.Context, id string) (*models.RemitInvoice, error)
	UpdateRemit(ctx context.Context, id string, fields map[string]interface{}) error
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
	if err := input.Session.Require(models.PrivilegeRemitUpdate); err != nil {
		return nil, err
	}

	rem, err := h.api.GetRemit(ctx, input.RemitID)
	if err != nil {
		return nil, err
	}
	if rem.IsPaid() {
		return nil, errors.NewInvoiceLockedError(reconciliation.KindRemit, rem.ID)
	}

	if err := h.api.UpdateRemit(ctx, rem.ID, map[string]interface{}{"status": models.StatusPaid}); err != nil {
		return nil, err
	}

	h.logger.Info("Remit marked paid", map[string]interface{}{
		"remitId":   rem.ID,
		"agentId":   rem.RemitTo.ID,
		"reference": rem.Reference,
		"userId":    input.Session.UserID,
	})
	return &Output{RemitID: rem.ID, Reference: rem.Reference, Status: models.StatusPaid}, nil
}
