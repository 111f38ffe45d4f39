package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/DocFlowAPI/internal/adapter"
	"github.com/akolanti/DocFlowAPI/internal/adapter/utils"
	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/jobModel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logRH.Error("Couldn't close the request body", "error", err)
	}
}

func validateId(r *http.Request, id string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.FromContext(r.Context()).Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(r.Context(), id)
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.FromContext(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, config.UploadTempDirName)
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}

func traceId(r *http.Request) string {
	trace, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	return trace
}

// newChatJob starts a new chat when chatId is empty.
func newChatJob(r *http.Request, chatId string) newJobData {
	newJob := newJobData{
		id:      utils.GetNewUUID(),
		chatId:  chatId,
		traceId: traceId(r),
	}
	if chatId == "" {
		newJob.chatId = utils.GetNewUUID()
		newJob.isNewChat = true
		logRH.FromContext(r.Context()).Debug("New Chat request", "chatID", newJob.chatId)
	}
	return newJob
}

func newFlowJob(r *http.Request, chatId, flow, question string) newJobData {
	newJob := newChatJob(r, chatId)
	newJob.jobType = jobModel.JobTypeFlow
	newJob.flow = flow
	newJob.message = question
	return newJob
}

// processNewJobData reports whether the job was queued.
func processNewJobData(w http.ResponseWriter, r *http.Request, newJob newJobData) bool {
	if err := CreateNewJob(r.Context(), newJob); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, newJob.chatId, "Could not start chat")
		return false
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id, newJob.chatId))
	return true
}

func writeUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func removeUpload(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logRH.Error("Couldn't remove upload", "path", path, "error", err)
	}
}
