// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/lightservice"
	"github.com/Rajveerk82/MCD-SmartLight/internal/session"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Devices     *DeviceHandlers
	Schedules   *ScheduleHandlers
	Dashboard   *DashboardHandlers
	Account     *AccountHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
	Metrics     func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *lightservice.LightService, sessions session.Provider) *Resources {
	return &Resources{
		Devices:     &DeviceHandlers{lightservice: svc},
		Schedules:   &ScheduleHandlers{lightservice: svc},
		Dashboard:   &DashboardHandlers{lightservice: svc},
		Account:     &AccountHandlers{sessions: sessions, lightservice: svc},
		HealthCheck: healthCheck,
	}
}

// SetMetrics sets the metrics handler
func (r *Resources) SetMetrics(h func(w http.ResponseWriter, r *http.Request)) {
	r.Metrics = h
}

// @Summary Service health check
// @Description Reports whether the hub is up
// @Tags system
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UnixMilli(),
	})
}

// Helper functions

// asAPIError keeps typed service errors (and their status codes) intact and
// wraps everything else as internal.
func asAPIError(err error) *errors.APIError {
	if apiErr, ok := err.(*errors.APIError); ok {
		return apiErr
	}
	return errors.NewInternalError("unexpected error", err)
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
