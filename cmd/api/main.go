// @title           DocFlow API
// @version         1.0
// @description     Document QA and chat assistant flows, run as asynchronous jobs.
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/data/redisStore"
	"github.com/akolanti/DocFlowAPI/internal/data/store"
	"github.com/akolanti/DocFlowAPI/internal/domain/jobModel"
	"github.com/akolanti/DocFlowAPI/internal/handlers"
	"github.com/akolanti/DocFlowAPI/internal/job"
	"github.com/akolanti/DocFlowAPI/internal/mcpServer"
	"github.com/akolanti/DocFlowAPI/internal/metrics"
	"github.com/akolanti/DocFlowAPI/internal/middleware"
	"github.com/akolanti/DocFlowAPI/internal/rag"
	"github.com/akolanti/DocFlowAPI/internal/rag/flow"
	"github.com/akolanti/DocFlowAPI/internal/rag/llm"
	"github.com/akolanti/DocFlowAPI/internal/rag/llm/azureOpenAI"
	"github.com/akolanti/DocFlowAPI/internal/rag/llm/gemini"
	"github.com/akolanti/DocFlowAPI/internal/server"
	"github.com/akolanti/DocFlowAPI/internal/worker"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

const version = "1.0.0"

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	env := config.LoadEnvironment()

	logger_i.Init(env)
	middleware.Init(env)
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", env.ListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	registry, err := config.LoadRegistry(env.FlowConfigPath)
	if err != nil {
		logger.Error("Flow configuration is invalid", "path", env.FlowConfigPath, "error", err)
		return
	}
	holder := config.NewHolder(registry)
	if env.FlowConfigPath != "" {
		watchFlowConfig(serviceContext, env.FlowConfigPath, holder, logger)
	}

	//init buffered job channel
	jobChannel := make(chan jobModel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		Registry:          holder,
	}
	storeName := initStores(serviceContext, env, &serviceConfig, logger)
	logger.Info("Starting job service", "store", storeName)
	service := job.InitJobService(serviceConfig)

	provider, err := newProvider(serviceContext, env)
	if err != nil {
		logger.Error("Completion provider is not available, flows will fail until it is configured",
			"provider", env.LLMProvider, "error", err)
	}

	executor := flow.NewExecutor(holder, provider)
	ragService := rag.NewService(executor)

	handlers.InitJobHandler(service, handlers.HealthInfo{
		Store:         storeName,
		Provider:      env.LLMProvider,
		ProviderReady: provider != nil,
	})

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	mcpHandler := mcpServer.Handler(mcpServer.NewServer(executor, version))

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, mcpHandler)

	<-stopExecution
	logger.Info("Server stopped")
}

// initStores prefers redis and falls back to the in-memory stores when either
// redis DB is unreachable. It returns the backend name for the health endpoint.
func initStores(ctx context.Context, env config.Environment, cfg *job.ServiceConfig, logger *logger_i.Logger) string {
	opts := redisStore.Options{Addr: env.RedisAddr, Password: env.RedisPassword}

	jobStore := store.GetRedisJobStore(ctx, opts)
	sessionStore := store.GetRedisSessionStore(ctx, opts)
	if jobStore != nil && sessionStore != nil {
		cfg.JobStore = jobStore
		cfg.SessionStore = sessionStore
		return "redis"
	}

	logger.Error("Redis stores are offline, using in-memory stores")
	cfg.JobStore = store.InitInMemoryJobStore()
	cfg.SessionStore = store.InitInMemorySessionStore()
	return "memory"
}

func newProvider(ctx context.Context, env config.Environment) (llm.Provider, error) {
	switch env.LLMProvider {
	case config.ProviderAzureOpenAI:
		return azureOpenAI.NewProvider(azureOpenAI.Settings{
			Endpoint:   env.AzureEndpoint,
			APIKey:     env.AzureAPIKey,
			Deployment: env.AzureDeployment,
			APIVersion: env.AzureAPIVersion,
		})
	default:
		return gemini.GetGeminiClient(ctx, env.GeminiAPIKey, env.GeminiModel)
	}
}

func watchFlowConfig(ctx context.Context, path string, holder *config.Holder, logger *logger_i.Logger) {
	log := logger.With("path", path)
	err := config.WatchRegistry(ctx, path, holder,
		func(reg *config.Registry) {
			metrics.CaptureConfigReload(true)
			log.Info("Flow configuration reloaded", "flows", len(reg.Flows()))
		},
		func(err error) {
			metrics.CaptureConfigReload(false)
			log.Warn("Flow configuration change rejected, keeping the previous one", "error", err)
		})
	if err != nil {
		log.Warn("Flow configuration will not be reloaded", "error", err)
	}
}
