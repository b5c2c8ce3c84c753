package lightservice

import (
	"sort"
	"time"

	"github.com/Rajveerk82/MCD-SmartLight/internal/health"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
)

// recentDeviceCount is how many recently-seen devices the overview carries.
const recentDeviceCount = 5

// Overview is the dashboard headline view.
type Overview struct {
	Summary     health.Summary  `json:"summary"`
	TotalPower  float64         `json:"totalPower"`
	TotalEnergy float64         `json:"totalEnergy"`
	Recent      []models.Device `json:"recentDevices"`
}

// Overview builds the dashboard summary from the mirrored device state.
func (s *LightService) Overview() Overview {
	devices := s.snapshotDevices()
	return Overview{
		Summary:     health.Summarize(devices, time.Now()),
		TotalPower:  health.TotalPower(devices),
		TotalEnergy: health.TotalEnergy(devices),
		Recent:      health.RecentDevices(devices, recentDeviceCount),
	}
}

// Alerts classifies every mirrored device and returns all currently raised
// alerts. The active-alert gauges are refreshed as a side effect, including
// kinds that dropped to zero.
func (s *LightService) Alerts() []health.Alert {
	devices := s.snapshotDevices()
	now := time.Now()

	counts := map[health.AlertKind]int{
		health.AlertDefective: 0,
		health.AlertError:     0,
		health.AlertOffline:   0,
	}
	var alerts []health.Alert
	for _, d := range devices {
		for _, a := range health.ClassifyAlerts(d, now) {
			counts[a.Kind]++
			alerts = append(alerts, a)
		}
	}
	for kind, n := range counts {
		s.monitoring.SetActiveAlerts(string(kind), n)
	}
	return alerts
}

// DefectiveDevice pairs a device with its estimated dead-bulb count.
type DefectiveDevice struct {
	Device         models.Device `json:"device"`
	DefectiveBulbs int           `json:"defectiveBulbs"`
}

// DefectiveDevices returns every device currently estimated to have at least
// one dead bulb, worst first.
func (s *LightService) DefectiveDevices() []DefectiveDevice {
	var out []DefectiveDevice
	for _, d := range s.Devices("", health.FilterDefective) {
		out = append(out, DefectiveDevice{
			Device:         d,
			DefectiveBulbs: health.DefectiveBulbCount(d),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DefectiveBulbs > out[j].DefectiveBulbs
	})
	return out
}

// Timeline flattens all devices' history into one filtered sequence, newest
// first.
func (s *LightService) Timeline(filter health.TimelineFilter) []models.HistoryEntry {
	return health.HistoryTimeline(s.snapshotHistory(), filter)
}
