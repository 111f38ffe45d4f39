package rag

import (
	"context"
	"time"

	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
	"github.com/akolanti/DocFlowAPI/internal/domain/jobModel"
	"github.com/akolanti/DocFlowAPI/internal/metrics"
	"github.com/akolanti/DocFlowAPI/internal/rag/ingest"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

/*
The worker only sees Service. The private struct holds the executor and
the extraction step, so tests can swap either without touching the worker.
*/

// Service runs flows and document extraction on behalf of queued jobs.
type Service interface {
	RunFlow(ctx context.Context, job jobModel.Job, history []commonModels.ChatTurn, doc *commonModels.Document) jobModel.Job
	ExtractDocument(ctx context.Context, job jobModel.Job) (jobModel.Job, commonModels.Document)
}

// FlowExecutor is satisfied by *flow.Executor.
type FlowExecutor interface {
	Execute(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error)
}

type Extractor func(ctx context.Context, name, path string) (commonModels.Document, error)

type service struct {
	executor FlowExecutor
	extract  Extractor
	logger   *logger_i.Logger
}

func NewService(executor FlowExecutor) Service {
	return NewServiceWithExtractor(executor, ingest.ExtractDocument)
}

func NewServiceWithExtractor(executor FlowExecutor, extract Extractor) Service {
	return &service{
		executor: executor,
		extract:  extract,
		logger:   logger_i.NewLogger("Flow Service"),
	}
}

func (s *service) RunFlow(ctx context.Context, job jobModel.Job, history []commonModels.ChatTurn, doc *commonModels.Document) jobModel.Job {
	log := s.logger.FromContext(ctx).With("JobId", job.Id, "flow", job.JobPayload.Flow)

	flowCtx, cancel := context.WithTimeout(ctx, config.JobTimeout)
	defer cancel()

	job = logOutput(job, jobModel.FlowCall, log)

	start := time.Now()
	result, err := s.executor.Execute(flowCtx, job.JobPayload.Flow, flowModel.Input{
		Question: job.JobPayload.Question,
		Document: doc,
		History:  history,
		Profile:  job.JobPayload.Profile,
	})
	metrics.CaptureExecutionMetrics("flow_"+job.JobPayload.Flow, time.Since(start))
	if err != nil {
		return s.jobError(ctx, job, err)
	}

	return returnOutput(job, result)
}

func (s *service) ExtractDocument(ctx context.Context, job jobModel.Job) (jobModel.Job, commonModels.Document) {
	log := s.logger.FromContext(ctx).With("JobId", job.Id)
	job = logOutput(job, jobModel.ExtractProcessing, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_extraction", time.Since(start)) }()

	doc, err := s.extract(ctx, job.JobPayload.DocumentName, job.JobPayload.DocumentPath)
	if err != nil {
		return s.jobError(ctx, job, err), commonModels.Document{}
	}
	job.JobPayload.Answer = "Document '" + doc.Name + "' is ready for questions."
	job.CurrentStep = jobModel.Complete
	return job, doc
}
