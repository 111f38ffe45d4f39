package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/DocFlowAPI/internal/api"
	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/jobModel"
)

func ToInitJobResponse(id string, chatId string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		ChatId:    chatId,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:       string(job.Status),
		Step:         string(job.CurrentStep),
		FlowResponse: ToFlowResponse(job.JobPayload),
	}

	return api.JobResponse{
		Id:        job.Id,
		ChatId:    job.ChatId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToFlowResponse(payload jobModel.JobPayload) *api.FlowResponse {
	if payload.Answer == "" && payload.Sources == "" {
		return nil
	}

	return &api.FlowResponse{
		Flow:      payload.Flow,
		Question:  payload.Question,
		Answer:    payload.Answer,
		Relevance: payload.Relevance,
		Sources:   payload.Sources,
	}
}

func ToFlowInfo(f config.FlowConfig) api.FlowInfo {
	inputs := make([]api.FlowInput, 0, len(f.Inputs))
	for _, in := range f.Inputs {
		inputs = append(inputs, api.FlowInput{Name: in.Name, Type: in.Type, Required: in.Required})
	}
	return api.FlowInfo{
		Name:          f.Key,
		Title:         f.Name,
		Kind:          f.Kind.String(),
		Description:   f.Description,
		HistoryWindow: f.HistoryWindow,
		Inputs:        inputs,
	}
}

func ToProfileInfo(p config.ProfileConfig, defaultProfile string) api.ProfileInfo {
	return api.ProfileInfo{
		Name:               p.Name,
		Description:        p.Description,
		Icon:               p.Icon,
		SupportsFileUpload: p.SupportsFileUpload,
		Citations:          p.Citations,
		Default:            p.Name == defaultProfile,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
