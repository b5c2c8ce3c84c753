// FilePath: api/resources/api.resource.schedules.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/lightservice"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
)

// ScheduleHandlers encapsulates the schedule-related HTTP handlers
type ScheduleHandlers struct {
	lightservice *lightservice.LightService
}

// @Summary List schedules
// @Description Get all switching schedules, optionally narrowed to one device
// @Tags schedules
// @Produce json
// @Param deviceId query string false "Filter by device"
// @Success 200 {array} models.Schedule
// @Router /schedules [get]
// @Security BearerAuth
func (h *ScheduleHandlers) ListSchedules(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	respondWithJSON(w, http.StatusOK, h.lightservice.Schedules(deviceID))
}

// @Summary Create a schedule
// @Description Store a new switching rule; at least one weekday must be selected
// @Tags schedules
// @Accept json
// @Produce json
// @Param schedule body models.Schedule true "Schedule details"
// @Success 201 {object} models.Schedule
// @Failure 400 {object} errors.APIError
// @Router /schedules [post]
// @Security BearerAuth
func (h *ScheduleHandlers) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var schedule models.Schedule
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&schedule); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.lightservice.CreateSchedule(r.Context(), &schedule); err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, schedule)
}

// @Summary Update a schedule
// @Description Replace an existing switching rule
// @Tags schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param schedule body models.Schedule true "Updated schedule details"
// @Success 200 {object} models.Schedule
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /schedules/{id} [put]
// @Security BearerAuth
func (h *ScheduleHandlers) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	var schedule models.Schedule
	if err := json.NewDecoder(r.Body).Decode(&schedule); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	schedule.ID = id
	if err := h.lightservice.UpdateSchedule(r.Context(), &schedule); err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, schedule)
}

// @Summary Toggle a schedule
// @Description Flip a schedule between active and paused
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} models.Schedule
// @Failure 404 {object} errors.APIError
// @Router /schedules/{id}/toggle [post]
// @Security BearerAuth
func (h *ScheduleHandlers) ToggleSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	schedule, err := h.lightservice.ToggleSchedule(r.Context(), id)
	if err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, schedule)
}

// @Summary Delete a schedule
// @Description Remove a switching rule
// @Tags schedules
// @Param id path string true "Schedule ID"
// @Success 204
// @Failure 404 {object} errors.APIError
// @Router /schedules/{id} [delete]
// @Security BearerAuth
func (h *ScheduleHandlers) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	if err := h.lightservice.DeleteSchedule(r.Context(), id); err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
