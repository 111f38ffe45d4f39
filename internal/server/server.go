package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/DocFlowAPI/internal/adapter/utils"
	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/middleware"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

// CreateServer blocks until the server is shut down. mcpHandler is mounted at
// /mcp behind the same middleware as the REST routes.
func CreateServer(listenAddr string, mcpHandler http.Handler) {
	r := utils.NewRouter()
	registerRoutes(r, mcpHandler)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func registerRoutes(r utils.RouterClient, mcpHandler http.Handler) {
	r.Router.Get("/health", middleware.GetHandler)
	r.Router.Get("/flows", middleware.GetFlowsHandler)
	r.Router.Get("/profiles", middleware.GetProfilesHandler)
	r.Router.Post("/chat", middleware.ChatHandler)
	r.Router.Post("/ask", middleware.AskHandler)
	r.Router.Post("/document", middleware.PostDocumentHandler)
	r.Router.Get("/status/{id}", middleware.GetStatusHandler)
	if mcpHandler != nil {
		r.Router.Handle("/mcp", middleware.Wrap(mcpHandler.ServeHTTP))
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "error", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
