// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"

	"github.com/blitt001/ha-opensensemap/api/resources"
	"github.com/blitt001/ha-opensensemap/internal/config"
	"github.com/blitt001/ha-opensensemap/internal/coordinator"
	"github.com/blitt001/ha-opensensemap/internal/monitoring"
)

// Server represents our HTTP server. It owns the coordinator's lifecycle:
// the upload loop starts with the server and stops on shutdown.
type Server struct {
	router      *mux.Router
	config      *config.Provider
	srv         *http.Server
	coordinator *coordinator.Coordinator
}

// New creates a new server instance
func New(cfg *config.Provider, coord *coordinator.Coordinator) *Server {
	router := mux.NewRouter()
	serverCfg := cfg.Current().Server

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", serverCfg.Host, serverCfg.Port),
		Handler:      handlers.RecoveryHandler()(handlers.CombinedLoggingHandler(os.Stdout, router)),
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
	}

	return &Server{
		router:      router,
		config:      cfg,
		srv:         srv,
		coordinator: coord,
	}
}

// Start begins the upload loop and listens for requests
func (s *Server) Start() error {
	s.setupCycleHandlers()
	s.setupRoutes()

	ctx, cancel := context.WithCancel(context.Background())
	go s.coordinator.Run(ctx)

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown(cancel)
}

// waitForShutdown waits for interrupt signal and gracefully shuts down
func (s *Server) waitForShutdown(cancel context.CancelFunc) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	// Stop the upload loop first so no cycle outlives the server.
	cancel()

	ctx, cancelTimeout := context.WithTimeout(context.Background(), s.config.Current().Server.ShutdownTimeout)
	defer cancelTimeout()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	res := resources.NewResources(s.coordinator)

	// API version prefix
	v1 := s.router.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	v1.HandleFunc("/status", res.Status.GetStatus).Methods(http.MethodGet)
	v1.HandleFunc("/refresh", res.Status.TriggerRefresh).Methods(http.MethodPost)
	v1.HandleFunc("/debug/request", res.Status.GetDebugRequest).Methods(http.MethodGet)

	s.router.Handle("/metrics", monitoring.Handler()).Methods(http.MethodGet)
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
	}
}

func (s *Server) setupCycleHandlers() {
	s.coordinator.OnCycle(coordinator.EventCycleSuccess, func(string) {
		monitoringEvent("cycle_success", "")
	})

	s.coordinator.OnCycle(coordinator.EventCycleError, func(msg string) {
		monitoringEvent("cycle_error", msg)
	})

	s.coordinator.OnCycle(coordinator.EventCycleSkipped, func(msg string) {
		monitoringEvent("cycle_skipped", msg)
	})
}

func monitoringEvent(name, msg string) {
	if msg != "" {
		nuts.L.Infof("[Monitoring] Event %s: %s", name, msg)
		return
	}
	nuts.L.Infof("[Monitoring] Event %s", name)
}
