// FilePath: internal/models/models.device.go
package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// DeviceStatus is the switch state reported by (and commanded to) a controller.
type DeviceStatus string

const (
	StatusOn  DeviceStatus = "on"
	StatusOff DeviceStatus = "off"
)

// Toggled returns the opposite switch state.
func (s DeviceStatus) Toggled() DeviceStatus {
	if s == StatusOn {
		return StatusOff
	}
	return StatusOn
}

// Reading is a telemetry value as delivered by the store. Controllers in the
// field occasionally publish readings as strings or garbage; anything that is
// not a finite number decodes to 0 instead of failing the whole snapshot.
type Reading float64

func (r *Reading) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*r = sanitize(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*r = sanitize(f)
			return nil
		}
	}
	*r = 0
	return nil
}

func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(r))
}

func sanitize(f float64) Reading {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Reading(f)
}

// Device represents one street-light controller as stored under devices/<id>.
// Configuration fields are written by operators through the hub; telemetry
// fields are written by the controller itself and are read-only here, which
// the writexs tags enforce on merge-updates.
type Device struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name" writexs:"operator,system"`
	Location string `json:"location" writexs:"operator,system"`

	TotalBulbs    int     `json:"totalBulbs" writexs:"operator,system"`
	WattPerDevice float64 `json:"wattPerDevice" writexs:"operator,system"`

	Status  DeviceStatus `json:"status" writexs:"device,system"`
	Command DeviceStatus `json:"command,omitempty" writexs:"operator,system"`
	Power   Reading      `json:"power" writexs:"device,system"`
	Voltage Reading      `json:"voltage" writexs:"device,system"`
	Current Reading      `json:"current" writexs:"device,system"`
	Energy  Reading      `json:"energy" writexs:"device,system"`

	// Epoch milliseconds; 0 means the device has never reported.
	LastSeen    int64 `json:"lastSeen,omitempty" writexs:"device,system"`
	LastUpdated int64 `json:"lastUpdated,omitempty" writexs:"operator,device,system"`

	Error string `json:"error,omitempty" writexs:"device,system"`
}

// ExpectedPower is the full-load draw of the device.
func (d *Device) ExpectedPower() float64 {
	return float64(d.TotalBulbs) * d.WattPerDevice
}
