package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	FlowInit          InternalStatus = "Init"
	SessionCall       InternalStatus = "Session"
	FlowCall          InternalStatus = "Flow"
	PreprocessStep    InternalStatus = "Preprocess"
	ContextStep       InternalStatus = "ExtractContext"
	CompletionCall    InternalStatus = "Completion"
	RelevanceStep     InternalStatus = "Relevance"
	SourcesStep       InternalStatus = "Sources"
	FormatStep        InternalStatus = "Format"
	ExtractInit       InternalStatus = "ExtractInit"
	ExtractProcessing InternalStatus = "ExtractProcessing"
	Error             InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeFlow     JobType = "Flow"
	JobTypeDocument JobType = "Document"
)

type Job struct {
	Id          string         `json:"id"`
	ChatId      string         `json:"chat_id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	Flow      string `json:"flow,omitempty"`
	Profile   string `json:"profile,omitempty"`
	Question  string `json:"question,omitempty"`
	Answer    string `json:"answer,omitempty"`
	Relevance string `json:"relevance,omitempty"`
	Sources   string `json:"sources,omitempty"`

	DocumentName string `json:"document_name,omitempty"`
	DocumentPath string `json:"document_path,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

// SessionStore owns everything a chat carries between requests: the bounded
// history ring and the uploaded document. The flow core only ever receives copies.
type SessionStore interface {
	ValidateChatId(ctx context.Context, id string) bool
	InitNewChat(ctx context.Context, id string) error
	AppendTurns(ctx context.Context, chatId string, turns ...commonModels.ChatTurn) error
	GetHistory(ctx context.Context, chatId string, window int) ([]commonModels.ChatTurn, error)
	SaveDocument(ctx context.Context, chatId string, doc commonModels.Document) error
	GetDocument(ctx context.Context, chatId string) (commonModels.Document, bool, error)
}
