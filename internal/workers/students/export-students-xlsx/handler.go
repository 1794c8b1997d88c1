// internal/workers/students/export-students-xlsx/handler.go
package exportstudentsxlsx

import (
	"context"
	"io"
	"time"

	"agency-workers/internal/agencyapi"
	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/metrics"
	"agency-workers/internal/common/observability"
	"agency-workers/internal/common/validation"
	"agency-workers/internal/documents"
	"agency-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "export-students-xlsx"
	kind     = "students"
)

var inputSchema = validation.MustCompile(TaskType, validation.Object(
	nil,
	map[string]interface{}{
		"searchQuery":       validation.Type("string"),
		"status":            validation.Type("string"),
		"applicationCourse": validation.Type("string"),
		"paymentStatus":     validation.Enum("", models.StatusDue, models.StatusPaid),
		"year":              validation.Type("string"),
		"sessionName":       validation.Type("string"),
	},
))

type API interface {
	ListStudents(ctx context.Context, f agencyapi.StudentFilter) ([]models.Student, agencyapi.Page, error)
}

type Handler struct {
	config *Config
	api    API
	obs    *observability.Observability
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(cfg *Config, api API, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		api:    api,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
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
	students, page, err := h.api.ListStudents(ctx, agencyapi.StudentFilter{
		SearchQuery:       input.SearchQuery,
		Status:            input.Status,
		ApplicationCourse: input.ApplicationCourse,
		PaymentStatus:     input.PaymentStatus,
		Year:              input.Year,
		Session:           input.SessionName,
		Limit:             h.config.MaxRows,
	})
	if err != nil {
		return nil, err
	}

	name := documents.StudentsFileName(h.now().UTC().Format("20060102-150405"))
	start := time.Now()
	path, size, err := documents.WriteFile(h.config.OutputDir, name, func(w io.Writer) error {
		return documents.ExportStudents(w, students, h.config.ApplicationSlots)
	})
	if err != nil {
		if _, ok := errors.AsStandardError(err); ok {
			return nil, err
		}
		return nil, errors.NewDocumentRenderFailedError(name, err)
	}
	h.obs.RecordRender(ctx, kind, "xlsx", time.Since(start))
	metrics.DocumentsRendered.WithLabelValues(kind, "xlsx").Inc()

	truncated := page.Total > len(students)
	if truncated {
		h.logger.Warn("Student export truncated", map[string]interface{}{
			"exported": len(students),
			"total":    page.Total,
		})
	}

	h.logger.Info("Students exported", map[string]interface{}{
		"path":     path,
		"students": len(students),
		"size":     size,
	})
	return &Output{
		FilePath:  path,
		FileName:  name,
		SizeBytes: size,
		Students:  len(students),
		Truncated: truncated,
	}, nil
}
