package rag_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
	"github.com/akolanti/DocFlowAPI/internal/domain/jobModel"
	"github.com/akolanti/DocFlowAPI/internal/rag"
	"github.com/akolanti/DocFlowAPI/internal/rag/ingest"
	"github.com/akolanti/DocFlowAPI/internal/rag/llm"
)

func TestRunFlow_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		onExecute      func(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error)
		expectedStep   jobModel.InternalStatus
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		expectedCode   int
		expectedRetry  bool
	}{
		{
			name: "Success",
			onExecute: func(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error) {
				return flowModel.FlowResult{Flow: name, Answer: "final answer", Relevance: "**Relevance: 80.0% (High)**", Sources: "**Sources:**"}, nil
			},
			expectedStep:   jobModel.Complete,
			expectedStatus: jobModel.JobStatusQueued,
			expectedAnswer: "final answer",
		},
		{
			name: "Missing_Input",
			onExecute: func(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error) {
				return flowModel.FlowResult{}, fmt.Errorf("%w: %q", flowModel.ErrMissingInput, "document_content")
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusBadRequest,
		},
		{
			name: "Unknown_Profile",
			onExecute: func(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error) {
				return flowModel.FlowResult{}, flowModel.ErrUnknownProfile
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusBadRequest,
		},
		{
			name: "Disabled_Flow",
			onExecute: func(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error) {
				return flowModel.FlowResult{}, fmt.Errorf("%w: %s", flowModel.ErrFlowDisabled, name)
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusUnprocessableEntity,
		},
		{
			name: "No_Provider",
			onExecute: func(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error) {
				return flowModel.FlowResult{}, flowModel.ErrProviderNotConfigured
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name: "Completion_Failure",
			onExecute: func(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error) {
				return flowModel.FlowResult{}, errors.New("provider down")
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusBadGateway,
			expectedRetry:  true,
		},
		{
			name: "Empty_Completion",
			onExecute: func(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error) {
				return flowModel.FlowResult{}, fmt.Errorf("gemini generate: %w", llm.ErrEmptyCompletion)
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusBadGateway,
			expectedRetry:  true,
		},
		{
			name: "Completion_Timeout",
			onExecute: func(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error) {
				return flowModel.FlowResult{}, fmt.Errorf("gemini generate: %w", context.DeadlineExceeded)
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusGatewayTimeout,
			expectedRetry:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &MockExecutor{OnExecute: tt.onExecute}
			s := rag.NewService(exec)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			job := jobModel.Job{
				Id:     "test-job",
				Status: jobModel.JobStatusQueued,
				JobPayload: jobModel.JobPayload{
					Flow:     flowModel.DocumentQAName,
					Question: "test question",
				},
			}

			result := s.RunFlow(ctx, job, nil, nil)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if result.CurrentStep != tt.expectedStep {
				t.Errorf("Step got %v, want %v", result.CurrentStep, tt.expectedStep)
			}
			if result.JobPayload.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %q, want %q", result.JobPayload.Answer, tt.expectedAnswer)
			}
			if result.Error.Code != tt.expectedCode || result.Error.Retry != tt.expectedRetry {
				t.Errorf("Error got %+v, want code %d retry %v", result.Error, tt.expectedCode, tt.expectedRetry)
			}
		})
	}
}

func TestRunFlow_PassesJobToExecutor(t *testing.T) {
	exec := &MockExecutor{}
	s := rag.NewService(exec)

	history := []commonModels.ChatTurn{{Role: commonModels.RoleUser, Content: "Hi"}}
	doc := &commonModels.Document{Name: "a.txt", Content: "text"}
	job := jobModel.Job{
		Id: "job-1",
		JobPayload: jobModel.JobPayload{
			Flow:     flowModel.ChatAssistantName,
			Profile:  "Creative",
			Question: "Write a poem",
		},
	}

	result := s.RunFlow(context.Background(), job, history, doc)

	if exec.LastFlow != flowModel.ChatAssistantName {
		t.Errorf("flow got %q", exec.LastFlow)
	}
	in := exec.LastInput
	if in.Question != "Write a poem" || in.Profile != "Creative" || in.Document != doc || len(in.History) != 1 {
		t.Errorf("unexpected input %+v", in)
	}
	if result.JobPayload.Answer != "mocked answer" {
		t.Errorf("Answer got %q", result.JobPayload.Answer)
	}
}

func TestRunFlow_HasDeadline(t *testing.T) {
	exec := &MockExecutor{OnExecute: func(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error) {
		if _, ok := ctx.Deadline(); !ok {
			return flowModel.FlowResult{}, errors.New("no deadline set")
		}
		return flowModel.FlowResult{Answer: "ok"}, nil
	}}

	result := rag.NewService(exec).RunFlow(context.Background(), jobModel.Job{Id: "j"}, nil, nil)
	if result.Status == jobModel.JobStatusError {
		t.Errorf("flow should run under a deadline: %+v", result.Error)
	}
}

func TestExtractDocument_Scenarios(t *testing.T) {
	tests := []struct {
		name          string
		onExtract     func(ctx context.Context, name, path string) (commonModels.Document, error)
		expectedCode  int
		expectedDoc   string
		expectedState jobModel.InternalStatus
	}{
		{
			name:          "Extraction_Success",
			expectedDoc:   "mocked content",
			expectedState: jobModel.Complete,
		},
		{
			name: "Unsupported_Type",
			onExtract: func(ctx context.Context, name, path string) (commonModels.Document, error) {
				return commonModels.Document{}, fmt.Errorf("%w: %s", ingest.ErrUnsupportedDocument, name)
			},
			expectedCode:  http.StatusUnsupportedMediaType,
			expectedState: jobModel.Error,
		},
		{
			name: "Unreadable_File",
			onExtract: func(ctx context.Context, name, path string) (commonModels.Document, error) {
				return commonModels.Document{}, fmt.Errorf("%w: broken xref", ingest.ErrExtractionFailed)
			},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedState: jobModel.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &MockExtractor{OnExtract: tt.onExtract}
			s := rag.NewServiceWithExtractor(&MockExecutor{}, extractor.Extract)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "extract-trace")
			job := jobModel.Job{
				Id: "extract-job-1",
				JobPayload: jobModel.JobPayload{
					DocumentName: "handbook.txt",
					DocumentPath: "/tmp/handbook.txt",
				},
			}

			result, doc := s.ExtractDocument(ctx, job)

			if result.CurrentStep != tt.expectedState {
				t.Errorf("Step got %v, want %v", result.CurrentStep, tt.expectedState)
			}
			if result.Error.Code != tt.expectedCode {
				t.Errorf("Error Code got %d, want %d", result.Error.Code, tt.expectedCode)
			}
			if result.Error.Retry {
				t.Error("extraction failures are not retryable")
			}
			if doc.Content != tt.expectedDoc {
				t.Errorf("Content got %q, want %q", doc.Content, tt.expectedDoc)
			}
		})
	}
}
