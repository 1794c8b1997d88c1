// internal/workers/remittance/generate-remit/handler.go
package generateremit

import (
	"context"

	"agency-workers/internal/agencyapi"
	"agency-workers/internal/billing"
	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/metrics"
	"agency-workers/internal/common/validation"
	"agency-workers/internal/models"
	"agency-workers/internal/reconciliation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType  = "generate-remit"
	EventType = "remit.generated"
)

var inputSchema = validation.MustCompile(TaskType, validation.Object(
	[]string{"session", "agentId", "courseRelationId", "studentIds"},
	map[string]interface{}{
		"session":           validation.Object([]string{"userId"}, map[string]interface{}{"userId": validation.Type("string")}),
		"agentId":           map[string]interface{}{"type": "string", "minLength": 1},
		"courseRelationId":  map[string]interface{}{"type": "string", "minLength": 1},
		"year":              validation.Type("string"),
		"sessionName":       validation.Type("string"),
		"studentIds":        validation.ArrayOf(validation.Type("string")),
		"bankId":            validation.Type("string"),
		"adjustmentType":    validation.Enum("", models.DiscountFlat, models.DiscountPercentage),
		"adjustmentBalance": validation.Numeric(),
	},
))

type API interface {
	GetCourseRelation(ctx context.Context, id string) (*models.CourseRelation, error)
	GetAgentCourse(ctx context.Context, agentID, courseRelationID string) (*models.AgentCourse, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	CreateRemit(ctx context.Context, draft *models.RemitDraft) (*agencyapi.Created, error)
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
	if err := input.Session.Require(models.PrivilegeRemitCreate); err != nil {
		return nil, err
	}
	if input.AgentID == "" {
		return nil, errors.NewAgentRequiredError()
	}

	relation, err := h.api.GetCourseRelation(ctx, input.CourseRelationID)
	if err != nil {
		return nil, err
	}
	agentCourse, err := h.api.GetAgentCourse(ctx, input.AgentID, relation.ID)
	if agencyapi.IsNotFound(err) {
		return nil, errors.NewAgentCourseNotFoundError(input.AgentID, relation.ID)
	}
	if err != nil {
		return nil, err
	}

	builder, err := billing.NewRemitBuilder(relation, input.AgentID, agentCourse, input.Year, input.SessionName, h.logger)
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

	draft, summary, err := builder.Build(billing.RemitParams{
		AdjustmentType:  input.AdjustmentType,
		AdjustmentValue: input.AdjustmentValue.Decimal,
		BankID:          input.BankID,
		CreatedBy:       input.Session.UserID,
	})
	if err != nil {
		return nil, err
	}

	created, err := h.api.CreateRemit(ctx, draft)
	if err != nil {
		return nil, err
	}
	builder.Selection().MarkSubmitted()
	metrics.DocumentsGenerated.WithLabelValues(reconciliation.KindRemit).Inc()

	log := h.logger.WithFields(map[string]interface{}{
		"remitId":   created.ID,
		"reference": created.Reference,
	})
	log.Info("Remit created", map[string]interface{}{
		"agentId":      input.AgentID,
		"noOfStudents": draft.NoOfStudents,
		"totalAmount":  draft.TotalAmount.String(),
	})

	if h.audit != nil {
		entry := reconciliation.RemitEntry(created.ID, created.Reference, reconciliation.StageGenerated, summary)
		entry.RecordedBy = input.Session.UserID
		if _, err := h.audit.Record(ctx, entry); err != nil {
			log.Warn("Failed to record remit totals", map[string]interface{}{"error": err.Error()})
		}
	}

	if h.events != nil {
		_, err := h.events.Publish(ctx, EventType, Event{
			RemitID:          created.ID,
			Reference:        created.Reference,
			AgentID:          draft.RemitTo,
			CourseRelationID: draft.CourseRelationID,
			Year:             draft.Year,
			Session:          draft.Session,
			NoOfStudents:     draft.NoOfStudents,
			TotalAmount:      draft.TotalAmount.String(),
			CreatedBy:        draft.CreatedBy,
		})
		if err != nil {
			log.Warn("Failed to publish remit event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &Output{
		RemitID:      created.ID,
		Reference:    created.Reference,
		NoOfStudents: draft.NoOfStudents,
		Subtotal:     billing.Money(summary.Subtotal).StringFixed(2),
		Deduction:    billing.Money(summary.Deduction).StringFixed(2),
		TotalAmount:  billing.Money(summary.Total).StringFixed(2),
	}, nil
}
