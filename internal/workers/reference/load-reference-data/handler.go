// internal/workers/reference/load-reference-data/handler.go
package loadreferencedata

import (
	"context"

	"agency-workers/internal/agencyapi"
	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "load-reference-data"

var inputSchema = validation.MustCompile(TaskType, validation.Object(nil, map[string]interface{}{
	"refresh": validation.Type("boolean"),
}))

type ReferenceLoader interface {
	LoadReferenceData(ctx context.Context, cache *agencyapi.Cache) (*agencyapi.ReferenceData, error)
}

type Handler struct {
	config *Config
	api    ReferenceLoader
	cache  *agencyapi.Cache
	logger logger.Logger
}

func NewHandler(cfg *Config, api ReferenceLoader, cache *agencyapi.Cache, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		api:    api,
		cache:  cache,
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
	if input.Refresh {
		err := h.cache.Invalidate(ctx,
			agencyapi.ResourceInstitutes,
			agencyapi.ResourceTerms,
			agencyapi.ResourceCourses,
			agencyapi.ResourceAcademicYears,
		)
		if err != nil {
			h.logger.Warn("Failed to invalidate reference cache", map[string]interface{}{"error": err.Error()})
		}
	}

	data, err := h.api.LoadReferenceData(ctx, h.cache)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{
		agencyapi.ResourceInstitutes:    len(data.Institutes),
		agencyapi.ResourceTerms:         len(data.Terms),
		agencyapi.ResourceCourses:       len(data.Courses),
		agencyapi.ResourceAcademicYears: len(data.AcademicYears),
	}
	h.logger.Info("Reference data loaded", map[string]interface{}{"counts": counts})

	return &Output{ReferenceData: data, Counts: counts}, nil
}
