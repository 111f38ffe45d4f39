package handlers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocFlowAPI/internal/api"
	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
	"github.com/akolanti/DocFlowAPI/internal/domain/jobModel"
	"github.com/akolanti/DocFlowAPI/internal/job"
	"github.com/akolanti/DocFlowAPI/internal/metrics"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           = logger_i.NewLogger("JobHandler")
)

// HealthInfo is what the health endpoint reports about the wiring chosen at startup.
type HealthInfo struct {
	Store         string
	Provider      string
	ProviderReady bool
}

type JobHandler struct {
	service *job.Service
	health  HealthInfo
}

func InitJobHandler(jobService *job.Service, health HealthInfo) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService, health: health}
		logJH.Info("Starting job handler")
	})
}

var errUnknownChat = errors.New("unknown chat_id")

// CreateNewJob registers a new chat before queueing so the worker never sees
// a job for a chat that does not exist yet.
func CreateNewJob(ctx context.Context, newJob newJobData) error {
	log := logJH.FromContext(ctx).With("job id", newJob.id)
	if newJob.isNewChat {
		log.Info("Create new chat", "chatId", newJob.chatId)
		if err := handlerInstance.service.SessionStore.InitNewChat(ctx, newJob.chatId); err != nil {
			log.Error("Error initiating new chat", "chatId", newJob.chatId, "error", err)
			return err
		}
	}
	handlerInstance.pushToJobChannel(ctx, newJob)
	return nil
}

func GetJobStatus(ctx context.Context, id string) (result jobModel.Job, isFound bool) {
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctx, id)
	}
	return result, false
}

func currentRegistry() *config.Registry {
	if handlerInstance == nil || handlerInstance.service.Registry == nil {
		return nil
	}
	return handlerInstance.service.Registry.Current()
}

// flowKey is the configured flow that serves the kind. Without a registry the
// kind's own name is used and the executor reports the missing flow.
func flowKey(kind flowModel.Kind) string {
	if reg := currentRegistry(); reg != nil {
		if f, err := reg.FlowByKind(kind); err == nil {
			return f.Key
		}
	}
	return kind.String()
}

func chatExists(ctx context.Context, chatId string) bool {
	return handlerInstance.service.SessionStore.ValidateChatId(ctx, chatId)
}

// ValidateChatRequest returns the reason a chat request is rejected, or nil.
func ValidateChatRequest(ctx context.Context, chatReq api.ChatRequest) error {
	if handlerInstance == nil {
		return errors.New("service not ready")
	}
	logJH.FromContext(ctx).Debug("Validating chat request", "chatId", chatReq.ChatID)
	if chatReq.Message == "" {
		return errors.New("message is required")
	}
	if reg := currentRegistry(); reg != nil {
		if _, err := reg.FlowByKind(flowModel.KindChatAssistant); err != nil {
			return err
		}
		if _, err := reg.Profile(chatReq.Profile); err != nil {
			return err
		}
	}
	if chatReq.ChatID != "" && !chatExists(ctx, chatReq.ChatID) {
		return errUnknownChat
	}
	return nil
}

func ValidateAskRequest(ctx context.Context, askReq api.AskRequest) error {
	if handlerInstance == nil {
		return errors.New("service not ready")
	}
	if askReq.Question == "" {
		return errors.New("question is required")
	}
	if askReq.ChatID == "" {
		return errors.New("chat_id is required, upload a document first")
	}
	if reg := currentRegistry(); reg != nil {
		if _, err := reg.FlowByKind(flowModel.KindDocumentQA); err != nil {
			return err
		}
	}
	if !chatExists(ctx, askReq.ChatID) {
		return errUnknownChat
	}
	return nil
}

// private methods
func (h *JobHandler) pushToJobChannel(ctx context.Context, newJob newJobData) {
	log := logJH.FromContext(ctx).With("job id", newJob.id)

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.ChatId = newJob.chatId
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued
	_job.JobType = newJob.jobType

	if newJob.jobType == jobModel.JobTypeDocument {
		_job.CurrentStep = jobModel.ExtractInit
		_job.JobPayload.DocumentName = newJob.documentName
		_job.JobPayload.DocumentPath = newJob.documentSource
	} else {
		_job.CurrentStep = jobModel.FlowInit
		_job.JobPayload.Flow = newJob.flow
		_job.JobPayload.Profile = newJob.profile
		_job.JobPayload.Question = newJob.message
	}

	// status polls before a worker picks the job up should find it queued
	if err := h.service.JobStore.SaveJob(ctx, _job); err != nil {
		log.Error("Failed to save queued job", "error", err)
	}

	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	log.Info("Created new job", "type", _job.JobType)

	//a new worker every RequestsPerNewWorkerCount jobs, and one per document extraction
	//idle workers retire, so the pool shrinks back on its own
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobModel.JobTypeDocument {
		metrics.StartDispatcherSignalCount()
		log.Debug("Signalling dispatcher", "requestCount", accurateCount)
		select {
		case h.service.DispatcherChannel <- true:
		default:
			//a signal is already pending
		}
	}
}
