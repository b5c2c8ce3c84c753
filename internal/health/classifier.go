// Package health derives device health from raw snapshots: online/offline
// staleness, defective-bulb estimation from the power deficit, and alert
// classification. Every view of the hub goes through these functions so the
// numbers cannot drift between pages.
package health

import (
	"math"
	"time"

	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
)

const (
	// SummaryOfflineAfter is the staleness threshold used by the dashboard
	// summary and device list views.
	SummaryOfflineAfter = 5 * time.Minute

	// AlertOfflineAfter is the tighter threshold used by the alert view.
	// Controllers publish every 5s; 3 intervals plus headroom. The two
	// thresholds are intentionally different and must stay that way.
	AlertOfflineAfter = 20 * time.Second
)

// IsOnline reports whether the device has reported within threshold of now.
// A device that has never reported (LastSeen zero) is offline.
func IsOnline(d models.Device, now time.Time, threshold time.Duration) bool {
	if d.LastSeen == 0 {
		return false
	}
	return now.UnixMilli()-d.LastSeen < threshold.Milliseconds()
}

// deficitRatio is the number of bulbs' worth of power missing from the
// expected full-load draw. Negative when the device over-reports.
func deficitRatio(d models.Device) float64 {
	return (d.ExpectedPower() - float64(d.Power)) / d.WattPerDevice
}

// DefectiveBulbCount estimates how many bulbs are dead on a device. Only
// meaningful while the device is switched on and configured; otherwise 0.
// Never negative, even when measured power exceeds the expected load.
func DefectiveBulbCount(d models.Device) int {
	if d.Status != models.StatusOn || d.TotalBulbs <= 0 || d.WattPerDevice <= 0 {
		return 0
	}
	n := math.Floor(deficitRatio(d))
	if n <= 0 {
		return 0
	}
	return int(n)
}

// IsDefective reports whether at least one full bulb's worth of power is
// missing. A deficit of exactly 1.0 bulbs counts as defective, matching
// DefectiveBulbCount on the boundary.
func IsDefective(d models.Device) bool {
	if d.Status != models.StatusOn || d.TotalBulbs <= 0 || d.WattPerDevice <= 0 {
		return false
	}
	return deficitRatio(d) >= 1
}

// AlertKind identifies one of the three alert conditions.
type AlertKind string

const (
	AlertDefective AlertKind = "defective"
	AlertError     AlertKind = "error"
	AlertOffline   AlertKind = "offline"
)

// Alert is one raised condition for one device.
type Alert struct {
	Kind     AlertKind     `json:"type"`
	DeviceID string        `json:"deviceId"`
	Message  string        `json:"message,omitempty"`
	Device   models.Device `json:"device"`
}

// ClassifyAlerts returns every alert the device currently raises. The kinds
// are independent; a device can raise all three at once. A device that has
// never reported always raises an offline alert.
func ClassifyAlerts(d models.Device, now time.Time) []Alert {
	var alerts []Alert
	if IsDefective(d) {
		alerts = append(alerts, Alert{
			Kind:     AlertDefective,
			DeviceID: d.ID,
			Message:  "defective bulbs detected, maintenance required",
			Device:   d,
		})
	}
	if d.Error != "" {
		alerts = append(alerts, Alert{
			Kind:     AlertError,
			DeviceID: d.ID,
			Message:  d.Error,
			Device:   d,
		})
	}
	if !IsOnline(d, now, AlertOfflineAfter) {
		alerts = append(alerts, Alert{
			Kind:     AlertOffline,
			DeviceID: d.ID,
			Message:  "device has not reported data recently and appears offline",
			Device:   d,
		})
	}
	return alerts
}
