package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Rajveerk82/MCD-SmartLight/api/middleware"
	"github.com/Rajveerk82/MCD-SmartLight/api/resources"
	"github.com/Rajveerk82/MCD-SmartLight/internal/lightservice"
	"github.com/Rajveerk82/MCD-SmartLight/internal/monitoring"
	"github.com/Rajveerk82/MCD-SmartLight/internal/session"
)

type Router struct {
	router    *mux.Router
	auth      *middleware.SessionMiddleware
	resources *resources.Resources
}

func NewRouter(svc *lightservice.LightService, sessions session.Provider, mon *monitoring.Service) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		auth:      middleware.NewSessionMiddleware(sessions),
		resources: resources.NewResources(svc, sessions),
	}
	r.resources.SetMetrics(mon.Handler().ServeHTTP)

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/auth/register", r.resources.Account.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", r.resources.Account.Login).Methods(http.MethodPost)
	api.HandleFunc("/metrics", r.resources.Metrics).Methods(http.MethodGet)
	// Conventional scrape path for Prometheus.
	r.router.HandleFunc("/metrics", r.resources.Metrics).Methods(http.MethodGet)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.auth.Authenticate)

	// Session and account
	protected.HandleFunc("/auth/logout", r.resources.Account.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/account", r.resources.Account.Me).Methods(http.MethodGet)
	protected.HandleFunc("/account/profile", r.resources.Account.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/account/email", r.resources.Account.UpdateEmail).Methods(http.MethodPut)
	protected.HandleFunc("/account/password", r.resources.Account.UpdatePassword).Methods(http.MethodPut)
	protected.HandleFunc("/settings", r.resources.Account.GetSettings).Methods(http.MethodGet)
	protected.HandleFunc("/settings", r.resources.Account.SaveSettings).Methods(http.MethodPut)

	// Devices
	devices := protected.PathPrefix("/devices").Subrouter()
	devices.HandleFunc("", r.resources.Devices.ListDevices).Methods(http.MethodGet)
	devices.HandleFunc("", r.resources.Devices.CreateDevice).Methods(http.MethodPost)
	devices.HandleFunc("/toggle-all", r.resources.Devices.ToggleAll).Methods(http.MethodPost)
	devices.HandleFunc("/{id}", r.resources.Devices.GetDevice).Methods(http.MethodGet)
	devices.HandleFunc("/{id}", r.resources.Devices.UpdateDevice).Methods(http.MethodPut)
	devices.HandleFunc("/{id}", r.resources.Devices.DeleteDevice).Methods(http.MethodDelete)
	devices.HandleFunc("/{id}/toggle", r.resources.Devices.ToggleDevice).Methods(http.MethodPost)
	devices.HandleFunc("/{id}/history", r.resources.Devices.GetDeviceHistory).Methods(http.MethodGet)

	// Dashboard views
	protected.HandleFunc("/summary", r.resources.Dashboard.GetSummary).Methods(http.MethodGet)
	protected.HandleFunc("/alerts", r.resources.Dashboard.GetAlerts).Methods(http.MethodGet)
	protected.HandleFunc("/defective", r.resources.Dashboard.GetDefective).Methods(http.MethodGet)
	protected.HandleFunc("/history", r.resources.Dashboard.GetTimeline).Methods(http.MethodGet)

	// Schedules
	schedules := protected.PathPrefix("/schedules").Subrouter()
	schedules.HandleFunc("", r.resources.Schedules.ListSchedules).Methods(http.MethodGet)
	schedules.HandleFunc("", r.resources.Schedules.CreateSchedule).Methods(http.MethodPost)
	schedules.HandleFunc("/{id}", r.resources.Schedules.UpdateSchedule).Methods(http.MethodPut)
	schedules.HandleFunc("/{id}", r.resources.Schedules.DeleteSchedule).Methods(http.MethodDelete)
	schedules.HandleFunc("/{id}/toggle", r.resources.Schedules.ToggleSchedule).Methods(http.MethodPost)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
