package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/akolanti/DocFlowAPI/internal/adapter"
	"github.com/akolanti/DocFlowAPI/internal/adapter/utils"
	"github.com/akolanti/DocFlowAPI/internal/api"
	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
	"github.com/akolanti/DocFlowAPI/internal/domain/jobModel"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

type newJobData struct {
	id             string
	chatId         string
	isNewChat      bool
	traceId        string
	jobType        jobModel.JobType
	flow           string
	profile        string
	message        string
	documentName   string
	documentSource string
}

// GetHandler godoc
// @Summary      Health check
// @Description  Reports the session store backend, the completion provider and how many flows are enabled.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func GetHandler(w http.ResponseWriter, r *http.Request) {
	res := api.HealthResponse{Status: "ok"}
	if handlerInstance != nil {
		res.Store = handlerInstance.health.Store
		res.Provider = handlerInstance.health.Provider
		res.Ready = handlerInstance.health.ProviderReady
	}
	if reg := currentRegistry(); reg != nil {
		res.Flows = len(reg.Flows())
	}
	writeJsonResponse(w, http.StatusOK, res)
}

// GetFlowsHandler godoc
// @Summary      List flows
// @Description  Lists the enabled flows with their inputs.
// @Tags         Flows
// @Produce      json
// @Success      200  {array}   api.FlowInfo
// @Failure      503  {object}  api.JobResponse  "No flow configuration loaded"
// @Router       /flows [get]
func GetFlowsHandler(w http.ResponseWriter, r *http.Request) {
	reg := currentRegistry()
	if reg == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Flow configuration not loaded")
		return
	}
	flows := reg.Flows()
	res := make([]api.FlowInfo, 0, len(flows))
	for _, f := range flows {
		res = append(res, adapter.ToFlowInfo(f))
	}
	writeJsonResponse(w, http.StatusOK, res)
}

// GetProfilesHandler godoc
// @Summary      List chat profiles
// @Description  Lists the enabled chat assistant profiles.
// @Tags         Flows
// @Produce      json
// @Success      200  {array}   api.ProfileInfo
// @Failure      503  {object}  api.JobResponse  "No flow configuration loaded"
// @Router       /profiles [get]
func GetProfilesHandler(w http.ResponseWriter, r *http.Request) {
	reg := currentRegistry()
	if reg == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Flow configuration not loaded")
		return
	}
	profiles := reg.Profiles()
	res := make([]api.ProfileInfo, 0, len(profiles))
	for _, p := range profiles {
		res = append(res, adapter.ToProfileInfo(p, reg.DefaultProfile()))
	}
	writeJsonResponse(w, http.StatusOK, res)
}

// ChatHandler godoc
// @Summary      Ask the chat assistant
// @Description  Queues a chat assistant job for the message using the chosen profile. A new chat is started when chat_id is empty.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Message, optional chat id and profile"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data, chat ID or profile"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		return
	}
	log := logRH.FromContext(request.Context())
	defer closeBody(request.Body)

	var requestData api.ChatRequest
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		log.Warn("Bad Chat Request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}
	if err := ValidateChatRequest(request.Context(), requestData); err != nil {
		log.Warn("Bad Chat Request", "error", err, "chatId", requestData.ChatID)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, err.Error())
		return
	}

	newJob := newFlowJob(request, requestData.ChatID, flowKey(flowModel.KindChatAssistant), requestData.Message)
	newJob.profile = requestData.Profile
	processNewJobData(w, request, newJob)
}

// AskHandler godoc
// @Summary      Ask about the uploaded document
// @Description  Queues a document QA job over the document stored in the chat session.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest       true  "Question and the chat holding the document"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or chat ID"
// @Router       /ask [post]
func AskHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		return
	}
	log := logRH.FromContext(request.Context())
	defer closeBody(request.Body)

	var requestData api.AskRequest
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		log.Warn("Bad Ask Request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}
	if err := ValidateAskRequest(request.Context(), requestData); err != nil {
		log.Warn("Bad Ask Request", "error", err, "chatId", requestData.ChatID)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, err.Error())
		return
	}

	processNewJobData(w, request, newFlowJob(request, requestData.ChatID, flowKey(flowModel.KindDocumentQA), requestData.Question))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a job, with the flow result once it is complete.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(r, idString)

	logRH.FromContext(r.Context()).Debug("Get Status Request", "URL path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostDocumentHandler handles document uploads for document QA.
// @Summary      Upload a document
// @Description  Receives a file via multipart/form-data and queues a job that extracts its text into the chat session. A new chat is started when chat_id is empty.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        document  formData  file    true   "A .txt, .md, .pdf, .docx, .rtf or .odt file"
// @Param        chat_id   formData  string  false  "Existing chat to attach the document to"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id and chat id"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing fields or unknown chat"
// @Failure      413  {object}  api.JobResponse "File too large"
// @Failure      415  {object}  api.JobResponse "Unsupported file type"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /document [post]
func PostDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := logRH.FromContext(r.Context())

	const maxUploadSize = config.MaxUploadSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+(1<<20)) //room for the form fields
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "", fmt.Sprintf("File too large, limit is %dMB", config.MaxUploadSizeMB))
			return
		}
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	if fileMetadata.Size > maxUploadSize {
		WriteErrorResponse(w, http.StatusRequestEntityTooLarge, fileMetadata.Filename, fmt.Sprintf("File too large, limit is %dMB", config.MaxUploadSizeMB))
		return
	}
	docName := filepath.Base(fileMetadata.Filename)
	ext := strings.ToLower(filepath.Ext(docName))
	if !slices.Contains(config.AllowedUploadExtensions, ext) {
		WriteErrorResponse(w, http.StatusUnsupportedMediaType, docName,
			"Unsupported file type, allowed: "+strings.Join(config.AllowedUploadExtensions, " "))
		return
	}

	chatId := r.FormValue("chat_id")
	if chatId != "" && !chatExists(r.Context(), chatId) {
		WriteErrorResponse(w, http.StatusBadRequest, chatId, errUnknownChat.Error())
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		log.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), docName)
	tempFilePath := filepath.Join(targetDir, filename)
	if err := writeUpload(tempFilePath, fileReader); err != nil {
		log.Error("Couldn't store upload", "file", docName, "err", err)
		removeUpload(tempFilePath)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Write error")
		return
	}

	newJob := newChatJob(r, chatId)
	newJob.jobType = jobModel.JobTypeDocument
	newJob.documentName = docName
	newJob.documentSource = tempFilePath
	if !processNewJobData(w, r, newJob) {
		// no worker will ever read it
		removeUpload(tempFilePath)
	}
}
