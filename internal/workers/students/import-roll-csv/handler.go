// internal/workers/students/import-roll-csv/handler.go
package importrollcsv

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/database"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/metrics"
	"agency-workers/internal/common/validation"
	"agency-workers/internal/models"
	"agency-workers/internal/rollimport"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "import-roll-csv"

var inputSchema = validation.MustCompile(TaskType, validation.Object(
	[]string{"session", "csv"},
	map[string]interface{}{
		"session":  validation.Object([]string{"userId"}, map[string]interface{}{"userId": validation.Type("string")}),
		"csv":      validation.Type("string"),
		"fileName": validation.Type("string"),
	},
))

type API interface {
	GetActiveRollUpload(ctx context.Context) (*models.RollUpload, error)
	CreateRollUpload(ctx context.Context, rows []models.RollRow) (*models.RollUpload, error)
}

// Resolver matches roll records to existing students.
type Resolver interface {
	Resolve(ctx context.Context, records []rollimport.Record) (rollimport.Lookup, error)
}

// Locker is satisfied by *database.RedisClient.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

type Handler struct {
	config   *Config
	api      API
	resolver Resolver
	locker   Locker
	logger   logger.Logger
}

// NewHandler builds the import worker. locker may be nil when only one worker
// instance runs.
func NewHandler(cfg *Config, api API, resolver Resolver, locker Locker, log logger.Logger) *Handler {
	return &Handler{
		config:   cfg,
		api:      api,
		resolver: resolver,
		locker:   locker,
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
	if err := input.Session.Require(models.PrivilegeStudentUpdate); err != nil {
		return nil, err
	}

	records, err := rollimport.ParseCSV(strings.NewReader(input.CSV))
	if err != nil {
		return nil, parseError(err)
	}

	if h.locker != nil {
		unlock, err := h.locker.Lock(ctx, h.config.LockKey, h.config.LockTTL)
		if stderrors.Is(err, database.ErrLocked) {
			return nil, errors.NewUploadInProgressError("")
		}
		if err != nil {
			return nil, errors.NewDatabaseConnectionFailedError(err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				h.logger.Warn("Failed to release upload lock", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	active, err := h.api.GetActiveRollUpload(ctx)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, errors.NewUploadInProgressError(active.ID)
	}

	lookup, err := h.resolver.Resolve(ctx, records)
	if err != nil {
		return nil, err
	}
	rows := rollimport.Classify(records, lookup)

	upload, err := h.api.CreateRollUpload(ctx, rows)
	if err != nil {
		return nil, err
	}

	summary := rollimport.Summary(rows)
	for status, n := range summary {
		metrics.RollRowsImported.WithLabelValues(status).Add(float64(n))
	}

	stored := upload.StudentData
	if len(stored) == 0 {
		stored = rows
	}

	h.logger.Info("Roll CSV imported", map[string]interface{}{
		"uploadId": upload.ID,
		"fileName": input.FileName,
		"rows":     len(rows),
		"found":    summary[models.RowFound],
		"errors":   summary[models.RowError],
		"dupes":    summary[models.RowDuplicate],
	})
	return &Output{UploadID: upload.ID, Rows: stored, Summary: summary, Total: len(rows)}, nil
}

func parseError(err error) error {
	var missing *rollimport.MissingColumnsError
	switch {
	case stderrors.Is(err, rollimport.ErrEmptyCSV):
		return errors.NewCSVEmptyError()
	case stderrors.As(err, &missing):
		return errors.NewCSVMissingColumnsError(missing.Columns)
	default:
		return errors.NewCSVMalformedError(err)
	}
}
