package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/handlers"
	"github.com/akolanti/DocFlowAPI/internal/metrics"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

type authSettings struct {
	authToken  string
	authBypass bool
}

var settings authSettings

// Init takes the auth settings from the environment. Until it is called every
// request is rejected.
func Init(env config.Environment) {
	settings = authSettings{authToken: env.AuthToken, authBypass: env.NoAuthBypass}
}

var GetHandler = Wrap(handlers.GetHandler)
var GetFlowsHandler = Wrap(handlers.GetFlowsHandler)
var GetProfilesHandler = Wrap(handlers.GetProfilesHandler)

var ChatHandler = Wrap(handlers.ChatHandler)
var AskHandler = Wrap(handlers.AskHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)
var PostDocumentHandler = Wrap(handlers.PostDocumentHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(routePattern(r), strconv.Itoa(rec.Status)).Inc()
		}()

		re := processRequest(requestResponseStruct{req: r, writer: rec})
		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Debug("New request received", "path", re.req.URL.Path)
	for _, step := range []func(requestResponseStruct) requestResponseStruct{injectTrace, rateLimiter, authenticate} {
		re = step(re)
		if re.badRequest.isBadRequest {
			return re
		}
	}
	return re
}
