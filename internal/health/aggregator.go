package health

import (
	"sort"
	"strings"
	"time"

	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
)

// Summary holds the dashboard headline counts. Online and offline partition
// Total exactly; Defective overlaps with both.
type Summary struct {
	Total     int `json:"total"`
	Online    int `json:"online"`
	Offline   int `json:"offline"`
	Defective int `json:"defective"`
}

// Summarize folds per-device classification into dashboard counts, using the
// summary staleness threshold.
func Summarize(devices []models.Device, now time.Time) Summary {
	s := Summary{Total: len(devices)}
	for _, d := range devices {
		if IsOnline(d, now, SummaryOfflineAfter) {
			s.Online++
		}
		if IsDefective(d) {
			s.Defective++
		}
	}
	s.Offline = s.Total - s.Online
	return s
}

// TotalPower sums the momentary power draw across all devices, in watts.
func TotalPower(devices []models.Device) float64 {
	var total float64
	for _, d := range devices {
		total += float64(d.Power)
	}
	return total
}

// TotalEnergy sums the cumulative energy across all devices, in kWh.
func TotalEnergy(devices []models.Device) float64 {
	var total float64
	for _, d := range devices {
		total += float64(d.Energy)
	}
	return total
}

// RecentDevices returns the n devices that reported most recently, newest
// first. Devices that never reported sort last. Ties keep input order.
func RecentDevices(devices []models.Device, n int) []models.Device {
	out := make([]models.Device, len(devices))
	copy(out, devices)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastSeen > out[j].LastSeen
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// Status filter values accepted by FilterDevices.
const (
	FilterAll       = "all"
	FilterOnline    = "online"
	FilterOffline   = "offline"
	FilterOn        = "on"
	FilterOff       = "off"
	FilterDefective = "defective"
)

// FilterDevices applies a free-text query and a status filter, combined with
// logical AND. The query matches case-insensitively against name, location
// or id; a device passes if any of the three matches. An empty query with
// the "all" filter returns the input unchanged.
func FilterDevices(devices []models.Device, query, status string, now time.Time) []models.Device {
	result := make([]models.Device, 0, len(devices))
	q := strings.ToLower(query)
	for _, d := range devices {
		if q != "" && !matchesQuery(d, q) {
			continue
		}
		if !matchesStatus(d, status, now) {
			continue
		}
		result = append(result, d)
	}
	return result
}

func matchesQuery(d models.Device, q string) bool {
	return strings.Contains(strings.ToLower(d.Name), q) ||
		strings.Contains(strings.ToLower(d.Location), q) ||
		strings.Contains(strings.ToLower(d.ID), q)
}

func matchesStatus(d models.Device, status string, now time.Time) bool {
	switch status {
	case "", FilterAll:
		return true
	case FilterOnline:
		return IsOnline(d, now, SummaryOfflineAfter)
	case FilterOffline:
		return !IsOnline(d, now, SummaryOfflineAfter)
	case FilterOn:
		return d.Status == models.StatusOn
	case FilterOff:
		return d.Status == models.StatusOff
	case FilterDefective:
		return IsDefective(d)
	default:
		return true
	}
}

// TimelineFilter narrows the flattened history timeline. Zero values mean
// "no filtering" for the respective dimension. Day selects one inclusive
// local calendar day, midnight to 23:59:59.999.
type TimelineFilter struct {
	Status   models.DeviceStatus
	DeviceID string
	Day      time.Time
}

// HistoryTimeline flattens all devices' history entries into one sequence
// sorted descending by timestamp, tagging each entry with its device id,
// then applies the filter.
func HistoryTimeline(historyByDevice map[string][]models.HistoryEntry, f TimelineFilter) []models.HistoryEntry {
	var dayStart, dayEnd int64
	if !f.Day.IsZero() {
		start := time.Date(f.Day.Year(), f.Day.Month(), f.Day.Day(), 0, 0, 0, 0, f.Day.Location())
		dayStart = start.UnixMilli()
		dayEnd = start.Add(24 * time.Hour).UnixMilli()
	}

	timeline := make([]models.HistoryEntry, 0)
	for deviceID, entries := range historyByDevice {
		if f.DeviceID != "" && deviceID != f.DeviceID {
			continue
		}
		for _, e := range entries {
			e.DeviceID = deviceID
			if f.Status != "" && e.Status != f.Status {
				continue
			}
			if dayEnd != 0 && (e.Timestamp < dayStart || e.Timestamp >= dayEnd) {
				continue
			}
			timeline = append(timeline, e)
		}
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Timestamp > timeline[j].Timestamp
	})
	return timeline
}
