package rag

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
	"github.com/akolanti/DocFlowAPI/internal/domain/jobModel"
	"github.com/akolanti/DocFlowAPI/internal/rag/ingest"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

func returnOutput(job jobModel.Job, res flowModel.FlowResult) jobModel.Job {
	job.JobPayload.Answer = res.Answer
	job.JobPayload.Relevance = res.Relevance
	job.JobPayload.Sources = res.Sources
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("RunFlow", "Current Status", job.CurrentStep)
	return job
}

// jobError records err on the job. Configuration and input problems are the
// caller's to fix and are never retryable.
func (s *service) jobError(ctx context.Context, job jobModel.Job, err error) jobModel.Job {
	job.Error = classify(err)
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error

	log := s.logger.FromContext(ctx).With("JobId", job.Id, "code", job.Error.Code)
	if job.Error.Code >= http.StatusInternalServerError {
		log.Error("job failed", "error", err)
	} else {
		log.Warn("job rejected", "error", err)
	}
	return job
}

func classify(err error) jobModel.JobError {
	switch {
	case errors.Is(err, flowModel.ErrMissingInput):
		return jobModel.JobError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, flowModel.ErrUnknownProfile):
		return jobModel.JobError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, ingest.ErrUnsupportedDocument):
		return jobModel.JobError{Code: http.StatusUnsupportedMediaType, Message: err.Error()}
	case errors.Is(err, ingest.ErrExtractionFailed):
		return jobModel.JobError{Code: http.StatusUnprocessableEntity, Message: ingest.ErrExtractionFailed.Error()}
	case errors.Is(err, flowModel.ErrProviderNotConfigured):
		return jobModel.JobError{Code: http.StatusServiceUnavailable, Message: "Completion service is not configured"}
	case flowModel.IsConfigError(err):
		return jobModel.JobError{Code: http.StatusUnprocessableEntity, Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return jobModel.JobError{Code: http.StatusGatewayTimeout, Message: "Completion service timed out", Retry: true}
	default:
		return jobModel.JobError{Code: http.StatusBadGateway, Message: "Completion service failed", Retry: true}
	}
}
