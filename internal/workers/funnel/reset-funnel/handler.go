// internal/workers/funnel/reset-funnel/handler.go
package resetfunnel

import (
	"context"
	"encoding/json"
	"time"

	"provider-funnel/internal/common/errors"
	"provider-funnel/internal/common/logger"
	"provider-funnel/internal/common/metrics"
	"provider-funnel/internal/common/validation"
	"provider-funnel/internal/funnel"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "funnel-reset"
)

var schema = validation.MustCompile(inputSchema)

type Handler struct {
	config  *Config
	service *funnel.Service
	errors  *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, service *funnel.Service, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		service: service,
		errors:  errors.NewErrorHandler(log),
		logger:  log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	start, status := time.Now(), "completed"
	defer func() { h.service.RecordJob(ctx, TaskType, status, time.Since(start)) }()

	input, err := parseInput(job.Variables)
	if err != nil {
		status = "failed"
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		status = "failed"
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func parseInput(variables string) (*Input, error) {
	if err := schema.Check([]byte(variables)); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	c, err := h.service.Open(ctx, input.SessionID, input.UserID, input.Category)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	snap, err := c.Reset(ctx)
	if err != nil {
		return nil, err
	}
	h.logger.Info("funnel reset", map[string]interface{}{"category": input.Category})
	return &Output{Variables: funnel.VariablesFrom(snap)}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
