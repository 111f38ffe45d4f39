package utils

import (
	"net/http"

	"github.com/akolanti/DocFlowAPI/cmd/api/docs"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	swaggerPath = "/swagger"
	metricsPath = "/metrics"
)

var logRouter = logger_i.NewLogger("Router")

// GetNewUUID is used for job, chat and trace ids.
func GetNewUUID() string {
	return uuid.NewString()
}

type RouterClient struct {
	Router *chi.Mux
}

func GetChiURLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}

// NewRouter returns a mux with the API docs and the prometheus scrape endpoint
// mounted. Neither sits behind the request middleware.
func NewRouter() RouterClient {
	r := chi.NewRouter()
	mountSwagger(r)
	r.Handle(metricsPath, promhttp.Handler())

	logRouter.Debug("Router ready",
		"api", docs.SwaggerInfo.Title,
		"version", docs.SwaggerInfo.Version,
		"docs", swaggerPath+"/index.html",
		"metrics", metricsPath)
	return RouterClient{Router: r}
}

func mountSwagger(r chi.Router) {
	r.Get(swaggerPath, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, swaggerPath+"/index.html", http.StatusMovedPermanently)
	})
	r.Get(swaggerPath+"/*", httpSwagger.Handler(httpSwagger.URL(swaggerPath+"/doc.json")))
}
