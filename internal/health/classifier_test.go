package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
)

func lamp(status models.DeviceStatus, totalBulbs int, watt, power float64) models.Device {
	return models.Device{
		ID:            "dev-1",
		Name:          "Sector 12 Pole 4",
		Location:      "Sector 12",
		TotalBulbs:    totalBulbs,
		WattPerDevice: watt,
		Status:        status,
		Power:         models.Reading(power),
	}
}

func TestDefectiveBulbCountBoundary(t *testing.T) {
	// Deficit of exactly one bulb's wattage counts as one defective bulb.
	d := lamp(models.StatusOn, 10, 10, 90)
	assert.Equal(t, 1, DefectiveBulbCount(d))
	assert.True(t, IsDefective(d))

	// 0.9 bulbs missing floors to zero and is not defective.
	d = lamp(models.StatusOn, 10, 10, 91)
	assert.Equal(t, 0, DefectiveBulbCount(d))
	assert.False(t, IsDefective(d))
}

func TestDefectiveBulbCountNeverNegative(t *testing.T) {
	// Over-reporting power must not produce a negative count.
	d := lamp(models.StatusOn, 10, 10, 150)
	assert.Equal(t, 0, DefectiveBulbCount(d))
	assert.False(t, IsDefective(d))
}

func TestDefectiveRequiresStatusOn(t *testing.T) {
	d := lamp(models.StatusOff, 10, 10, 0)
	assert.Equal(t, 0, DefectiveBulbCount(d))
	assert.False(t, IsDefective(d))
}

func TestDefectiveRequiresConfiguration(t *testing.T) {
	assert.Equal(t, 0, DefectiveBulbCount(lamp(models.StatusOn, 0, 10, 0)))
	assert.Equal(t, 0, DefectiveBulbCount(lamp(models.StatusOn, 10, 0, 0)))
	assert.False(t, IsDefective(lamp(models.StatusOn, 0, 10, 0)))
	assert.False(t, IsDefective(lamp(models.StatusOn, 10, 0, 0)))
}

func TestDefectiveCountWithZeroPower(t *testing.T) {
	// A switched-on device drawing nothing has every bulb dead.
	d := lamp(models.StatusOn, 10, 10, 0)
	assert.Equal(t, 10, DefectiveBulbCount(d))
	assert.True(t, IsDefective(d))
}

func TestIsOnlineThresholds(t *testing.T) {
	now := time.Now()
	d := lamp(models.StatusOn, 10, 10, 100)

	d.LastSeen = now.Add(-1 * time.Minute).UnixMilli()
	assert.True(t, IsOnline(d, now, SummaryOfflineAfter))
	assert.False(t, IsOnline(d, now, AlertOfflineAfter))

	d.LastSeen = now.Add(-10 * time.Second).UnixMilli()
	assert.True(t, IsOnline(d, now, AlertOfflineAfter))

	d.LastSeen = now.Add(-6 * time.Minute).UnixMilli()
	assert.False(t, IsOnline(d, now, SummaryOfflineAfter))
}

func TestNeverSeenDeviceIsOffline(t *testing.T) {
	now := time.Now()
	d := lamp(models.StatusOn, 10, 10, 100)
	d.LastSeen = 0

	assert.False(t, IsOnline(d, now, SummaryOfflineAfter))

	// Under the alert rule a never-seen device must raise an offline alert
	// rather than being silently omitted.
	alerts := ClassifyAlerts(d, now)
	assert.Len(t, alerts, 1)
	assert.Equal(t, AlertOffline, alerts[0].Kind)
}

func TestClassifyAlertsIndependentKinds(t *testing.T) {
	now := time.Now()
	d := lamp(models.StatusOn, 10, 10, 50)
	d.Error = "relay stuck"
	d.LastSeen = 0

	alerts := ClassifyAlerts(d, now)
	assert.Len(t, alerts, 3)

	kinds := map[AlertKind]string{}
	for _, a := range alerts {
		kinds[a.Kind] = a.Message
	}
	assert.Contains(t, kinds, AlertDefective)
	assert.Contains(t, kinds, AlertOffline)
	// The error alert carries the device error string verbatim.
	assert.Equal(t, "relay stuck", kinds[AlertError])
}

func TestClassifyAlertsHealthyDevice(t *testing.T) {
	now := time.Now()
	d := lamp(models.StatusOn, 10, 10, 100)
	d.LastSeen = now.Add(-2 * time.Second).UnixMilli()
	assert.Empty(t, ClassifyAlerts(d, now))
}
