// internal/workers/mentor/recommend-mentors/handler.go
package recommendmentors

import (
	"context"
	"encoding/json"
	"time"

	apperrors "mentor-match/internal/common/errors"
	"mentor-match/internal/common/logger"
	"mentor-match/internal/common/metrics"
	"mentor-match/internal/common/observability"
	"mentor-match/internal/common/validation"
	"mentor-match/internal/recommendation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "recommend-mentors"
)

// Recommender is the slice of recommendation.Service this worker needs.
type Recommender interface {
	Recommend(ctx context.Context, req recommendation.Request) (*recommendation.Result, error)
}

type Handler struct {
	config     *Config
	service    Recommender
	validator  *validation.Validator
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, service Recommender, validator *validation.Validator, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = observability.NewNoop()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		service:    service,
		validator:  validator,
		obs:        obs,
		errHandler: apperrors.NewErrorHandler(l),
		logger:     l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.run(ctx, job.Variables)
	if err != nil {
		stdErr := apperrors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.observe(ctx, start, "failed")
		h.errHandler.HandleJobError(client, job, stdErr)
		return
	}

	h.completeJob(client, job, output)
	h.observe(ctx, start, "completed")
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) run(ctx context.Context, variables string) (*Output, error) {
	input, err := h.parseInput(variables)
	if err != nil {
		return nil, err
	}
	return h.execute(ctx, input)
}

func (h *Handler) parseInput(variables string) (*Input, error) {
	if res := h.validator.ValidateBytes(validation.SchemaRecommendMentorsJob, []byte(variables)); !res.Valid {
		return nil, apperrors.NewInvalidInputError(res.Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError("parse input: " + err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	req := recommendation.Request{
		UserID:    input.UserID,
		User:      input.User,
		Providers: input.Providers,
		Source:    "worker",
	}
	if input.Options != nil {
		req.Limit = input.Options.Limit
		req.Context = input.Options.Context
	}

	res, err := h.service.Recommend(ctx, req)
	if err != nil {
		return nil, err
	}

	h.logger.Info("mentors recommended", map[string]interface{}{
		"userId":       input.UserID,
		"path":         res.SelectionPath,
		"poolSize":     res.PoolSize,
		"returned":     len(res.Recommendations),
		"fallbackUsed": res.FallbackUsed,
	})

	return &Output{
		Recommendations:     res.Recommendations,
		HasAvailableMentors: res.HasAvailableMentors,
		FallbackUsed:        res.FallbackUsed,
		SelectionPath:       res.SelectionPath,
	}, nil
}

func (h *Handler) observe(ctx context.Context, start time.Time, status string) {
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, elapsed, status)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}

	ctx, cancel := apperrors.CommandContext()
	defer cancel()
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

// Execute runs the worker logic without a Zeebe job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
