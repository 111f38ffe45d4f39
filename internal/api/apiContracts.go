package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type FlowResponse struct {
	Flow      string `json:"flow" example:"document_qa"`
	Question  string `json:"question,omitempty"`
	Answer    string `json:"answer"`
	Relevance string `json:"relevance_score,omitempty" example:"**Relevance: 85.0% (High)**"`
	Sources   string `json:"sources,omitempty"`
}

type Result struct {
	Status       string        `json:"status" example:"COMPLETE"`
	Step         string        `json:"step,omitempty" example:"Complete"`
	FlowResponse *FlowResponse `json:"flow_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	ChatId    string `json:"chat_id,omitempty"`
	StatusURL string `json:"status_url"`
}

type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Store    string `json:"store" example:"redis"`
	Provider string `json:"provider" example:"gemini"`
	Ready    bool   `json:"provider_ready"`
	Flows    int    `json:"flows"`
}

type FlowInput struct {
	Name     string `json:"name" example:"question"`
	Type     string `json:"type,omitempty" example:"string"`
	Required bool   `json:"required"`
}

type FlowInfo struct {
	Name          string      `json:"name" example:"document_qa"`
	Title         string      `json:"title" example:"Document Q&A"`
	Kind          string      `json:"kind" example:"document_qa"`
	Description   string      `json:"description"`
	HistoryWindow int         `json:"history_window" example:"3"`
	Inputs        []FlowInput `json:"inputs"`
}

type ProfileInfo struct {
	Name               string `json:"name" example:"Analytical"`
	Description        string `json:"description"`
	Icon               string `json:"icon,omitempty"`
	SupportsFileUpload bool   `json:"supports_file_upload"`
	Citations          bool   `json:"citations"`
	Default            bool   `json:"default"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required" example:"Explain our refund policy"`
	ChatID  string `json:"chat_id,omitempty"`
	Profile string `json:"profile,omitempty" example:"Business"`
}

type AskRequest struct {
	Question string `json:"question" validate:"required" example:"What are the work hours?"`
	ChatID   string `json:"chat_id" validate:"required"`
}
