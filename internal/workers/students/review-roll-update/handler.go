// internal/workers/students/review-roll-update/handler.go
package reviewrollupdate

import (
	"context"

	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/validation"
	"agency-workers/internal/models"
	"agency-workers/internal/rollimport"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "review-roll-update"

var inputSchema = validation.MustCompile(TaskType, validation.Object(
	[]string{"session", "uploadId", "action", "tempIds"},
	map[string]interface{}{
		"session":  validation.Object([]string{"userId"}, map[string]interface{}{"userId": validation.Type("string")}),
		"uploadId": map[string]interface{}{"type": "string", "minLength": 1},
		"action":   validation.Enum(ActionApprove, ActionReject),
		"tempIds":  validation.ArrayOf(validation.Type("string")),
	},
))

type API interface {
	GetActiveRollUpload(ctx context.Context) (*models.RollUpload, error)
	UpdateStudent(ctx context.Context, id string, fields map[string]interface{}) error
	RemoveRollRow(ctx context.Context, uploadID, tempID string) error
	DeleteRollUpload(ctx context.Context, uploadID string) error
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
	if err := input.Session.Require(models.PrivilegeStudentUpdate); err != nil {
		return nil, err
	}
	if len(input.TempIDs) == 0 {
		return nil, errors.NewValidationError([]string{"tempIds: at least one row is required"})
	}

	upload, err := h.api.GetActiveRollUpload(ctx)
	if err != nil {
		return nil, err
	}
	if upload == nil || upload.ID != input.UploadID {
		return nil, errors.NewResourceNotFoundError("roll upload", "uploadId="+input.UploadID)
	}
	upload.StudentData = rollimport.Reclassify(upload.StudentData)

	// Check every row before touching any of them.
	rows := make([]models.RollRow, 0, len(input.TempIDs))
	seen := make(map[string]bool, len(input.TempIDs))
	for _, id := range input.TempIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		row, _, ok := upload.Row(id)
		if !ok {
			return nil, errors.NewResourceNotFoundError("roll row", "tempId="+id)
		}
		if input.Action == ActionApprove && !row.Eligible() {
			return nil, errors.NewRowNotEligibleError(row.TempID, row.Status)
		}
		rows = append(rows, row)
	}

	out := &Output{UploadID: upload.ID, Removed: []string{}}
	for _, row := range rows {
		if input.Action == ActionApprove {
			if err := h.api.UpdateStudent(ctx, row.StudentID.ID, map[string]interface{}{"collegeRoll": row.RegNo}); err != nil {
				return nil, err
			}
			out.Approved = append(out.Approved, row.StudentID.ID)
		}
		if err := h.api.RemoveRollRow(ctx, upload.ID, row.TempID); err != nil {
			return nil, err
		}
		out.Removed = append(out.Removed, row.TempID)
	}

	out.Remaining = len(upload.StudentData) - len(out.Removed)
	if out.Remaining <= 0 {
		if err := h.api.DeleteRollUpload(ctx, upload.ID); err != nil {
			return nil, err
		}
		out.Remaining = 0
		out.UploadDeleted = true
	}

	h.logger.Info("Roll rows reviewed", map[string]interface{}{
		"uploadId":  upload.ID,
		"action":    input.Action,
		"rows":      len(out.Removed),
		"remaining": out.Remaining,
		"userId":    input.Session.UserID,
	})
	return out, nil
}
