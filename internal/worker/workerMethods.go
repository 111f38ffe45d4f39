package worker

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
	jobmodel "github.com/akolanti/DocFlowAPI/internal/domain/jobModel"
	"github.com/akolanti/DocFlowAPI/internal/metrics"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobTimeout)
	defer cancel()
	log := logger.FromContext(ctx).With("job Id", job.Id, "type", job.JobType)
	log.Debug("Processing job")

	// a panicking flow or reader must not take the worker down with it
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r, "step", job.CurrentStep)
			job.Status = jobmodel.JobStatusError
			job.CurrentStep = jobmodel.Error
			job.Error = jobmodel.JobError{Code: http.StatusInternalServerError, Message: "Internal error", Retry: false}
			job.EndTime = time.Now()
			saveJobState(ctx, job, log)
		}
	}()

	job.Status = jobmodel.JobStatusRunning
	saveJobState(ctx, job, log)

	if job.JobType == jobmodel.JobTypeDocument {
		job = extractDocument(ctx, job, log)
	} else {
		job = runFlow(ctx, job, log)
	}

	job.EndTime = time.Now()
	if job.Status != jobmodel.JobStatusError {
		job.Status = jobmodel.JobStatusComplete
	}
	saveJobState(ctx, job, log)
}

// removeWorker expects the caller to have released its slot in currentWorkerCount.
func removeWorker(reason string) {
	workerWaitGroup.Done()
	logger.Info("Removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	metrics.DecrementActiveWorkerCount()
}

func extractDocument(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) jobmodel.Job {
	job, doc := _ragService.ExtractDocument(ctx, job)
	if job.Status == jobmodel.JobStatusError {
		return job
	}
	job.CurrentStep = jobmodel.SessionCall
	if err := _jobService.SessionStore.SaveDocument(ctx, job.ChatId, doc); err != nil {
		log.Error("Failed to save document to session", "err", err)
		return sessionFailure(job)
	}
	job.CurrentStep = jobmodel.Complete
	return job
}

func runFlow(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) jobmodel.Job {
	job.CurrentStep = jobmodel.SessionCall
	sessions := _jobService.SessionStore

	history, err := sessions.GetHistory(ctx, job.ChatId, _jobService.HistoryWindow(job.JobPayload.Flow))
	if err != nil {
		// a lost history only costs context, the question can still be answered
		log.Error("Failed to get message history", "err", err)
		history = []commonModels.ChatTurn{}
	}

	var doc *commonModels.Document
	if _jobService.FlowKind(job.JobPayload.Flow) == flowModel.KindDocumentQA {
		d, found, err := sessions.GetDocument(ctx, job.ChatId)
		if err != nil {
			log.Error("Failed to get session document", "err", err)
			return sessionFailure(job)
		}
		if found {
			doc = &d
		}
	}

	job = _ragService.RunFlow(ctx, job, history, doc)
	if job.Status == jobmodel.JobStatusError {
		return job
	}

	err = sessions.AppendTurns(ctx, job.ChatId,
		commonModels.ChatTurn{Role: commonModels.RoleUser, Content: job.JobPayload.Question},
		commonModels.ChatTurn{Role: commonModels.RoleAssistant, Content: job.JobPayload.Answer},
	)
	if err != nil {
		log.Error("Failed to save chat history", "err", err)
	}
	return job
}

func sessionFailure(job jobmodel.Job) jobmodel.Job {
	job.Status = jobmodel.JobStatusError
	job.CurrentStep = jobmodel.Error
	job.Error = jobmodel.JobError{Code: http.StatusInternalServerError, Message: "Session store unavailable", Retry: true}
	return job
}

func saveJobState(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) {
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Failed to update job state", "err", err)
	}
}
