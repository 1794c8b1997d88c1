// internal/workers/remittance/render-remit-pdf/handler.go
package renderremitpdf

import (
	"context"
	"io"
	"time"

	"agency-workers/internal/billing"
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

const TaskType = "render-remit-pdf"

var inputSchema = validation.MustCompile(TaskType, validation.Object(
	[]string{"remitId"},
	map[string]interface{}{
		"remitId": map[string]interface{}{"type": "string", "minLength": 1},
	},
))

type API interface {
	GetRemit(ctx context.Context, id string) (*models.RemitInvoice, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, e reconciliation.Entry) (reconciliation.Entry, error)
}

type HandlerOptions struct {
	Config        *Config
	API           API
	Audit         AuditRecorder
	Logos         *documents.LogoLoader
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	config *Config
	api    API
	audit  AuditRecorder
	logos  *documents.LogoLoader
	obs    *observability.Observability
	logger logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	return &Handler{
		config: opts.Config,
		api:    opts.API,
		audit:  opts.Audit,
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
	rem, err := h.api.GetRemit(ctx, input.RemitID)
	if err != nil {
		return nil, err
	}

	opts := h.config.Options
	opts.Logo = h.logos.Load(ctx, rem.CreatedBy.ImgURL)

	name := documents.RemitFileName(rem.Reference)
	start := time.Now()
	var summary billing.RemitSummary
	path, size, err := documents.WriteFile(h.config.OutputDir, name, func(w io.Writer) error {
		var err error
		summary, err = documents.RenderRemit(w, *rem, opts)
		return err
	})
	if err != nil {
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, errors.NewDocumentRenderFailedError(rem.Reference, err)
	}
	h.obs.RecordRender(ctx, reconciliation.KindRemit, "pdf", time.Since(start))
	metrics.DocumentsRendered.WithLabelValues(reconciliation.KindRemit, "pdf").Inc()

	stored := rem.TotalAmount.Decimal
	entry := reconciliation.RemitEntry(rem.ID, rem.Reference, reconciliation.StageRendered, summary).WithStored(stored)
	// A successful Record counts and logs drift itself.
	audited := false
	if h.audit != nil {
		if _, err := h.audit.Record(ctx, entry); err == nil {
			audited = true
		} else {
			h.logger.Warn("Failed to record rendered totals", map[string]interface{}{
				"remitId": rem.ID,
				"error":   err.Error(),
			})
		}
	}

	h.logger.Info("Remit PDF rendered", map[string]interface{}{
		"remitId": rem.ID,
		"agentId": rem.RemitTo.ID,
		"path":    path,
		"size":    size,
	})

	drift := billing.Money(summary.Total).Sub(billing.Money(stored))
	if !drift.IsZero() && !audited {
		metrics.TotalDrift.WithLabelValues(reconciliation.KindRemit).Inc()
		h.logger.Warn("Rendered total differs from stored total", map[string]interface{}{
			"remitId": rem.ID,
			"stored":  billing.Money(stored).StringFixed(2),
			"total":   billing.Money(summary.Total).StringFixed(2),
		})
	}

	return &Output{
		FilePath:    path,
		FileName:    name,
		SizeBytes:   size,
		TotalAmount: billing.Money(summary.Total).StringFixed(2),
		StoredTotal: billing.Money(stored).StringFixed(2),
		Drift:       drift.StringFixed(2),
	}, nil
}
