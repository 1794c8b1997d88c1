// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"agency-workers/internal/common/config"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/metrics"
	"agency-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

const defaultJobTimeout = 30 * time.Second

// JobSpec is what Run needs to know about a task type.
type JobSpec struct {
	TaskType string
	Timeout  time.Duration
	Schema   *validation.Schema
	Logger   logger.Logger
}

// ParseVariables validates the job variables against schema, when there is
// one, and decodes them into In.
func ParseVariables[In any](job entities.Job, schema *validation.Schema) (*In, error) {
	raw := job.Variables
	if raw == "" {
		raw = "{}"
	}
	if schema != nil {
		result := schema.Validate(raw)
		if !result.Valid {
			return nil, errors.NewValidationError(result.GetErrorMessages())
		}
	}

	var input In
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return nil, errors.NewInputParsingError(err)
	}
	return &input, nil
}

// Run takes one job through parse, execute and complete. Failures go to the
// shared ErrorHandler, which picks between retrying and a BPMN error.
func Run[In any, Out any](client worker.JobClient, job entities.Job, spec JobSpec, execute func(context.Context, *In) (*Out, error)) {
	timer := metrics.StartJob(spec.TaskType)

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log := spec.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})
	log.Info("Processing job", nil)

	output, err := func() (*Out, error) {
		input, err := ParseVariables[In](job, spec.Schema)
		if err != nil {
			return nil, err
		}
		return execute(ctx, input)
	}()
	if err != nil {
		timer.Done(errors.Code(err))
		errors.NewErrorHandler(log).HandleJobError(ctx, client, job, err)
		return
	}

	if err := complete(ctx, client, job, output); err != nil {
		timer.Done("COMPLETE_FAILED")
		log.Error("Failed to complete job", map[string]interface{}{"error": err.Error()})
		return
	}
	timer.Done("")
	log.Info("Job completed", nil)
}

func complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("set output variables: %w", err)
	}
	_, err = cmd.Send(ctx)
	return err
}

// Workers opens one Zeebe job worker per enabled task type and closes them
// together on shutdown.
type Workers struct {
	client zbc.Client
	log    logger.Logger

	mu   sync.Mutex
	open map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{client: client, log: log, open: make(map[string]worker.JobWorker)}
}

// Start opens a worker for taskType unless the config disables it.
func (w *Workers) Start(taskType string, wc config.WorkerConfig, handler worker.JobHandler) {
	if !wc.Enabled {
		w.log.Info("Worker disabled, skipping", map[string]interface{}{"taskType": taskType})
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.open[taskType]; ok {
		w.log.Warn("Worker already started", map[string]interface{}{"taskType": taskType})
		return
	}

	step := w.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		Name(fmt.Sprintf("%s-worker", taskType))
	if wc.MaxJobsActive > 0 {
		step = step.MaxJobsActive(wc.MaxJobsActive)
	}
	if wc.Timeout > 0 {
		step = step.Timeout(config.GetDuration(wc.Timeout))
	}
	w.open[taskType] = step.Open()

	w.log.Info("Worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wc.MaxJobsActive,
		"timeoutMs":     wc.Timeout,
	})
}

func (w *Workers) TaskTypes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	types := make([]string, 0, len(w.open))
	for t := range w.open {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Stop closes every open worker and waits for in-flight jobs.
func (w *Workers) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for taskType, jw := range w.open {
		w.log.Info("Stopping worker", map[string]interface{}{"taskType": taskType})
		jw.Close()
		jw.AwaitClose()
	}
	w.open = make(map[string]worker.JobWorker)
}
