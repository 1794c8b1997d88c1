// internal/workers/invoicing/find-invoiceable-students/handler.go
package findinvoiceablestudents

import (
	"context"

	"agency-workers/internal/agencyapi"
	"agency-workers/internal/billing"
	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/validation"
	"agency-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "find-invoiceable-students"

var inputSchema = validation.MustCompile(TaskType, validation.Object(
	[]string{"courseRelationId"},
	map[string]interface{}{
		"courseRelationId": map[string]interface{}{"type": "string", "minLength": 1},
		"year":             validation.Type("string"),
		"sessionName":      validation.Type("string"),
		"paymentStatus":    validation.Enum(models.StatusDue, models.StatusPaid),
		"searchQuery":      validation.Type("string"),
	},
))

type API interface {
	GetCourseRelation(ctx context.Context, id string) (*models.CourseRelation, error)
	ListStudents(ctx context.Context, f agencyapi.StudentFilter) ([]models.Student, agencyapi.Page, error)
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
	relation, err := h.api.GetCourseRelation(ctx, input.CourseRelationID)
	if err != nil {
		return nil, err
	}

	builder, err := billing.NewInvoiceBuilder(relation, input.Year, input.SessionName, h.logger)
	if err != nil {
		return nil, err
	}
	year, session := builder.Period()

	status := input.PaymentStatus
	if status == "" {
		status = h.config.DefaultPaymentStatus
	}
	students, _, err := h.api.ListStudents(ctx, agencyapi.StudentFilter{
		SearchQuery:       input.SearchQuery,
		PaymentStatus:     status,
		ApplicationCourse: relation.ID,
		Year:              year,
		Session:           session,
	})
	if err != nil {
		return nil, err
	}

	eligible := billing.Filter(students, billing.InvoiceableFilter{
		CourseRelationID: relation.ID,
		Year:             year,
		Session:          session,
	}.Match)

	out := &Output{Year: year, SessionName: session, Candidates: []Candidate{}}
	for _, st := range eligible {
		row, err := builder.Quote(st)
		if err != nil {
			if errors.Code(err) == string(errors.ErrCodeApplicationNotFound) {
				out.Skipped = append(out.Skipped, st.ID)
				continue
			}
			return nil, err
		}
		app, _ := st.ApplicationFor(relation.ID)
		out.Candidates = append(out.Candidates, Candidate{
			StudentID:   st.ID,
			RefID:       st.RefID,
			CollegeRoll: st.CollegeRoll,
			Name:        st.FullName(),
			Choice:      app.Choice,
			Fee:         row.Fee.StringFixed(2),
		})
	}
	out.Total = len(out.Candidates)

	h.logger.Info("Invoiceable students found", map[string]interface{}{
		"courseRelationId": relation.ID,
		"year":             year,
		"session":          session,
		"listed":           len(students),
		"candidates":       out.Total,
		"skipped":          len(out.Skipped),
	})
	return out, nil
}
