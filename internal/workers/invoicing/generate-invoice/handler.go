// internal/workers/invoicing/generate-invoice/handler.go
package generateinvoice

import (
	"context"

	"agency-workers/internal/agencyapi"
	"agency-workers/internal/billing"
	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/metrics"
	"agency-workers/internal/common/validation"
	"agency-workers/internal/models"
	"agency-workers/internal/reconciliation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType  = "generate-invoice"
	EventType = "invoice.generated"
)

var inputSchema = validation.MustCompile(TaskType, validation.Object(
	[]string{"session", "courseRelationId", "studentIds", "customerId", "bankId"},
	map[string]interface{}{
		"session":          validation.Object([]string{"userId"}, map[string]interface{}{"userId": validation.Type("string")}),
		"courseRelationId": map[string]interface{}{"type": "string", "minLength": 1},
		"year":             validation.Type("string"),
		"sessionName":      validation.Type("string"),
		"studentIds":       validation.ArrayOf(validation.Type("string")),
		"customerId":       map[string]interface{}{"type": "string", "minLength": 1},
		"bankId":           map[string]interface{}{"type": "string", "minLength": 1},
		"discountType":     validation.Enum("", models.DiscountFlat, models.DiscountPercentage),
		"discountAmount":   validation.Numeric(),
		"discountMsg":      validation.Type("string"),
		"vat":              validation.Numeric(),
	},
))

type API interface {
	GetCourseRelation(ctx context.Context, id string) (*models.CourseRelation, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	CreateInvoice(ctx context.Context, draft *models.InvoiceDraft) (*agencyapi.Created, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, e reconciliation.Entry) (reconciliation.Entry, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) (string, error)
}

type Handler struct {
	config *Config
	api    API
	audit  AuditRecorder
	events EventPublisher
	logger logger.Logger
}

func NewHandler(cfg *Config, api API, audit AuditRecorder, events EventPublisher, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		api:    api,
		audit:  audit,
		events: events,
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
	if err := input.Session.Require(models.PrivilegeInvoiceCreate); err != nil {
		return nil, err
	}

	relation, err := h.api.GetCourseRelation(ctx, input.CourseRelationID)
	if err != nil {
		return nil, err
	}
	builder, err := billing.NewInvoiceBuilder(relation, input.Year, input.SessionName, h.logger)
	if err != nil {
		return nil, err
	}

	for _, id := range input.StudentIDs {
		st, err := h.api.GetStudent(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := builder.Add(*st); err != nil {
			return nil, err
		}
	}

	draft, summary, err := builder.Build(billing.InvoiceParams{
		CustomerID:     input.CustomerID,
		BankID:         input.BankID,
		DiscountType:   input.DiscountType,
		DiscountAmount: input.DiscountAmount.Decimal,
		DiscountMsg:    input.DiscountMsg,
		VAT:            input.VAT.Decimal,
		CreatedBy:      input.Session.UserID,
	})
	if err != nil {
		return nil, err
	}

	created, err := h.api.CreateInvoice(ctx, draft)
	if err != nil {
		return nil, err
	}
	builder.Selection().MarkSubmitted()
	metrics.DocumentsGenerated.WithLabelValues(reconciliation.KindInvoice).Inc()

	log := h.logger.WithFields(map[string]interface{}{
		"invoiceId": created.ID,
		"reference": created.Reference,
	})
	log.Info("Invoice created", map[string]interface{}{
		"noOfStudents": draft.NoOfStudents,
		"totalAmount":  draft.TotalAmount.String(),
		"createdBy":    draft.CreatedBy,
	})

	// The invoice exists from here on; a retry would create a second one, so
	// audit and event failures are only logged.
	if h.audit != nil {
		entry := reconciliation.InvoiceEntry(created.ID, created.Reference, reconciliation.StageGenerated, summary)
		entry.RecordedBy = input.Session.UserID
		if _, err := h.audit.Record(ctx, entry); err != nil {
			log.Warn("Failed to record invoice totals", map[string]interface{}{"error": err.Error()})
		}
	}

	if h.events != nil {
		_, err := h.events.Publish(ctx, EventType, Event{
			InvoiceID:        created.ID,
			Reference:        created.Reference,
			CourseRelationID: draft.CourseRelationID,
			Year:             draft.Year,
			Session:          draft.Session,
			NoOfStudents:     draft.NoOfStudents,
			TotalAmount:      draft.TotalAmount.String(),
			CreatedBy:        draft.CreatedBy,
		})
		if err != nil {
			log.Warn("Failed to publish invoice event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &Output{
		InvoiceID:    created.ID,
		Reference:    created.Reference,
		NoOfStudents: draft.NoOfStudents,
		Subtotal:     billing.Money(summary.Subtotal).StringFixed(2),
		Discount:     billing.Money(summary.DiscountValue).StringFixed(2),
		VATAmount:    billing.Money(summary.VATAmount).StringFixed(2),
		TotalAmount:  billing.Money(summary.Total).StringFixed(2),
	}, nil
}
