// FilePath: api/resources/api.resource.dashboard.go
package resources

import (
	"net/http"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/health"
	"github.com/Rajveerk82/MCD-SmartLight/internal/lightservice"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
)

// DashboardHandlers serves the aggregated views of the dashboard
type DashboardHandlers struct {
	lightservice *lightservice.LightService
}

// @Summary Dashboard summary
// @Description Headline counts plus power and energy totals and recently seen devices
// @Tags dashboard
// @Produce json
// @Success 200 {object} lightservice.Overview
// @Router /summary [get]
// @Security BearerAuth
func (h *DashboardHandlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.lightservice.Overview())
}

// @Summary Active alerts
// @Description All currently raised alerts: defective bulbs, device errors, offline devices
// @Tags dashboard
// @Produce json
// @Success 200 {array} health.Alert
// @Router /alerts [get]
// @Security BearerAuth
func (h *DashboardHandlers) GetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.lightservice.Alerts()
	if alerts == nil {
		alerts = []health.Alert{}
	}
	respondWithJSON(w, http.StatusOK, alerts)
}

// @Summary Defective devices
// @Description Devices with at least one estimated dead bulb, worst first
// @Tags dashboard
// @Produce json
// @Success 200 {array} lightservice.DefectiveDevice
// @Router /defective [get]
// @Security BearerAuth
func (h *DashboardHandlers) GetDefective(w http.ResponseWriter, r *http.Request) {
	defective := h.lightservice.DefectiveDevices()
	if defective == nil {
		defective = []lightservice.DefectiveDevice{}
	}
	respondWithJSON(w, http.StatusOK, defective)
}

// timelineQuery captures the history timeline filters from the query string.
type timelineQuery struct {
	Status   string `schema:"status"`
	DeviceID string `schema:"deviceId"`
	Date     string `schema:"date"`
}

// @Summary Status history timeline
// @Description All devices' on/off events flattened into one sequence, newest first
// @Tags dashboard
// @Produce json
// @Param status query string false "Filter by resulting status (on|off)"
// @Param deviceId query string false "Filter by device"
// @Param date query string false "Filter by local calendar day (YYYY-MM-DD)"
// @Success 200 {array} models.HistoryEntry
// @Failure 400 {object} errors.APIError
// @Router /history [get]
// @Security BearerAuth
func (h *DashboardHandlers) GetTimeline(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var q timelineQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}

	filter := health.TimelineFilter{
		Status:   models.DeviceStatus(q.Status),
		DeviceID: q.DeviceID,
	}
	if q.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", q.Date, time.Local)
		if err != nil {
			respondWithError(w, errors.NewValidationError("date must be formatted YYYY-MM-DD", err).WithRequestID(requestID))
			return
		}
		filter.Day = day
	}

	respondWithJSON(w, http.StatusOK, h.lightservice.Timeline(filter))
}
