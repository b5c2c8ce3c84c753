// FilePath: api/resources/api.resource.devices.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/lightservice"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// DeviceHandlers encapsulates the device-related HTTP handlers
type DeviceHandlers struct {
	lightservice *lightservice.LightService
}

// deviceListQuery captures the list filters from the query string.
type deviceListQuery struct {
	Query  string `schema:"query"`
	Status string `schema:"status"`
}

// @Summary List devices
// @Description Get all devices, optionally filtered by free-text query and status
// @Tags devices
// @Produce json
// @Param query query string false "Match against name, location or id"
// @Param status query string false "all|online|offline|on|off|defective"
// @Success 200 {array} models.Device
// @Router /devices [get]
// @Security BearerAuth
func (h *DeviceHandlers) ListDevices(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var q deviceListQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, h.lightservice.Devices(q.Query, q.Status))
}

// @Summary Create a new device
// @Description Register a new street-light controller
// @Tags devices
// @Accept json
// @Produce json
// @Param device body models.Device true "Device details"
// @Success 201 {object} models.Device
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Router /devices [post]
// @Security BearerAuth
func (h *DeviceHandlers) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var device models.Device
	requestID := nuts.NID("req", 12)

	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if err := h.lightservice.CreateDevice(r.Context(), &device); err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, device)
}

// @Summary Get a device by ID
// @Description Get the current state of one device
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} models.Device
// @Failure 404 {object} errors.APIError
// @Router /devices/{id} [get]
// @Security BearerAuth
func (h *DeviceHandlers) GetDevice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	device, err := h.lightservice.Device(id)
	if err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// @Summary Update a device
// @Description Update a device's configuration fields
// @Tags devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param device body models.Device true "Updated device details"
// @Success 200 {object} models.Device
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /devices/{id} [put]
// @Security BearerAuth
func (h *DeviceHandlers) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	var device models.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	device.ID = id
	if err := h.lightservice.UpdateDevice(r.Context(), &device); err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// @Summary Delete a device
// @Description Delete a device together with its history and schedules
// @Tags devices
// @Param id path string true "Device ID"
// @Success 204
// @Failure 404 {object} errors.APIError
// @Router /devices/{id} [delete]
// @Security BearerAuth
func (h *DeviceHandlers) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	if err := h.lightservice.DeleteDevice(r.Context(), id); err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Toggle a device
// @Description Flip one device between on and off
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} models.Device
// @Failure 404 {object} errors.APIError
// @Router /devices/{id}/toggle [post]
// @Security BearerAuth
func (h *DeviceHandlers) ToggleDevice(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	device, err := h.lightservice.ToggleDevice(r.Context(), id, lightservice.SourceDashboard)
	if err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}

// toggleAllResponse reports what the bulk command did.
type toggleAllResponse struct {
	Status  models.DeviceStatus `json:"status"`
	Devices int                 `json:"devices"`
}

// @Summary Toggle all devices
// @Description Switch every device in one atomic batch: off if all are on, on otherwise
// @Tags devices
// @Produce json
// @Success 200 {object} toggleAllResponse
// @Router /devices/toggle-all [post]
// @Security BearerAuth
func (h *DeviceHandlers) ToggleAll(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	status, n, err := h.lightservice.ToggleAll(r.Context(), lightservice.SourceBulk)
	if err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, toggleAllResponse{Status: status, Devices: n})
}

// @Summary Get a device's status history
// @Description Get one device's on/off history, newest first
// @Tags devices
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {array} models.HistoryEntry
// @Router /devices/{id}/history [get]
// @Security BearerAuth
func (h *DeviceHandlers) GetDeviceHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	requestID := nuts.NID("req", 12)

	if _, err := h.lightservice.Device(id); err != nil {
		respondWithError(w, asAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, h.lightservice.DeviceHistory(id))
}
