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
	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/api"
	"github.com/Rajveerk82/MCD-SmartLight/internal/config"
	"github.com/Rajveerk82/MCD-SmartLight/internal/lightservice"
	"github.com/Rajveerk82/MCD-SmartLight/internal/monitoring"
	"github.com/Rajveerk82/MCD-SmartLight/internal/session"
	"github.com/Rajveerk82/MCD-SmartLight/internal/store"
	redisstore "github.com/Rajveerk82/MCD-SmartLight/internal/store/redis"
)

// Server represents our HTTP server
type Server struct {
	config       *config.Config
	srv          *http.Server
	store        store.Store
	lightservice *lightservice.LightService
	monitoring   *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start wires the services, begins listening and blocks until shutdown.
func (s *Server) Start() error {
	st, err := redisstore.New(s.config.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	s.store = st

	s.monitoring = monitoring.NewService()
	s.lightservice = lightservice.New(st, s.monitoring)
	if err := s.lightservice.Validate(); err != nil {
		return err
	}

	sessions := session.NewJWTProvider(st, s.config.Session.JWTSecret, s.config.Session.TokenTTL)

	// Mount the live feed before serving so the first requests already see
	// mirrored state.
	if err := s.lightservice.Mount(context.Background()); err != nil {
		return err
	}

	s.setupCleanupHandlers()

	router := api.NewRouter(s.lightservice, sessions, s.monitoring)
	s.srv.Handler = handlers.RecoveryHandler()(
		handlers.CORS(
			handlers.AllowedOrigins(s.config.Server.AllowedOrigins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		)(router),
	)

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	s.lightservice.Unmount()
	if err := s.store.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing store: %v", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) setupCleanupHandlers() {
	// Handle device deletion events
	s.lightservice.Cleanup.OnCleanup("device.deleted", func(id string) {
		nuts.L.Infof("[Cleanup] Device %s and all associated data deleted", id)
		s.monitoring.RecordEvent("device_deletion", map[string]string{
			"device_id": id,
		})
	})

	// Handle schedule deletion events
	s.lightservice.Cleanup.OnCleanup("schedule.deleted", func(id string) {
		nuts.L.Infof("[Cleanup] Schedule %s deleted", id)
		s.monitoring.RecordEvent("schedule_deletion", map[string]string{
			"schedule_id": id,
		})
	})

	// Handle history deletion events
	s.lightservice.Cleanup.OnCleanup("history.deleted", func(id string) {
		nuts.L.Infof("[Cleanup] History for device %s deleted", id)
	})
}
