package lightservice

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/health"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
	"github.com/Rajveerk82/MCD-SmartLight/internal/monitoring"
	"github.com/Rajveerk82/MCD-SmartLight/internal/store"
	"github.com/Rajveerk82/MCD-SmartLight/internal/store/memory"
)

func newService(t *testing.T) (*LightService, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc := New(st, monitoring.NewService())
	require.NoError(t, svc.Mount(context.Background()))
	t.Cleanup(func() {
		svc.Unmount()
		st.Close()
	})
	return svc, st
}

// waitMirrored blocks until the live feed has caught up with cond.
func waitMirrored(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, "live feed did not catch up")
}

func seedDevice(t *testing.T, st store.Store, d models.Device) {
	t.Helper()
	require.NoError(t, st.Create(context.Background(), "devices/"+d.ID, d))
}

func TestFeedMirrorsDevices(t *testing.T) {
	svc, st := newService(t)

	seedDevice(t, st, models.Device{ID: "dev1", Name: "Gate North", Status: models.StatusOn})
	waitMirrored(t, func() bool { return len(svc.Devices("", "")) == 1 })

	d, err := svc.Device("dev1")
	require.NoError(t, err)
	assert.Equal(t, "Gate North", d.Name)

	_, err = svc.Device("missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestToggleDeviceWritesCommandAndHistory(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	seedDevice(t, st, models.Device{ID: "dev1", Name: "Gate", Status: models.StatusOff})

	toggled, err := svc.ToggleDevice(ctx, "dev1", SourceDashboard)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOn, toggled.Status)
	assert.Equal(t, models.StatusOn, toggled.Command)
	assert.NotZero(t, toggled.LastUpdated)

	raw, err := st.ReadOnce(ctx, "devices/dev1")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "on", doc["status"])
	assert.Equal(t, "on", doc["command"])
	// Untouched fields survive the merge write.
	assert.Equal(t, "Gate", doc["name"])

	waitMirrored(t, func() bool { return len(svc.DeviceHistory("dev1")) == 1 })
	entry := svc.DeviceHistory("dev1")[0]
	assert.Equal(t, models.StatusOn, entry.Status)
	assert.Equal(t, SourceDashboard, entry.Source)
}

func TestToggleDeviceUnknown(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.ToggleDevice(context.Background(), "nope", SourceDashboard)
	assert.True(t, errors.IsNotFound(err))
}

func TestToggleAllUsesSingleBatch(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	seedDevice(t, st, models.Device{ID: "a", Name: "A", Status: models.StatusOn})
	seedDevice(t, st, models.Device{ID: "b", Name: "B", Status: models.StatusOff})
	waitMirrored(t, func() bool { return len(svc.Devices("", "")) == 2 })

	// Mixed states switch everything on.
	target, n, err := svc.ToggleAll(ctx, SourceBulk)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOn, target)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, st.BatchWrites())

	for _, id := range []string{"a", "b"} {
		raw, err := st.ReadOnce(ctx, "devices/"+id)
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Equal(t, "on", doc["status"], "device %s", id)
	}

	waitMirrored(t, func() bool {
		for _, d := range svc.Devices("", "") {
			if d.Status != models.StatusOn {
				return false
			}
		}
		return true
	})

	// All on now, so the next bulk command switches everything off.
	target, _, err = svc.ToggleAll(ctx, SourceBulk)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOff, target)
	assert.Equal(t, 2, st.BatchWrites())

	waitMirrored(t, func() bool { return len(svc.DeviceHistory("a")) == 2 })
	assert.Equal(t, SourceBulk, svc.DeviceHistory("a")[0].Source)
}

func TestToggleAllWithoutDevices(t *testing.T) {
	svc, st := newService(t)
	_, n, err := svc.ToggleAll(context.Background(), SourceBulk)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, st.BatchWrites())
}

func TestCreateDevice(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	err := svc.CreateDevice(ctx, &models.Device{Name: "", TotalBulbs: 10, WattPerDevice: 50})
	assert.True(t, errors.IsValidation(err))

	d := &models.Device{
		Name: "Gate", Location: "North", TotalBulbs: 10, WattPerDevice: 50,
		Power: 400, LastSeen: time.Now().UnixMilli(),
	}
	require.NoError(t, svc.CreateDevice(ctx, d))
	assert.NotEmpty(t, d.ID)

	// Telemetry is controller-owned and starts at zero regardless of payload.
	raw, err := st.ReadOnce(ctx, "devices/"+d.ID)
	require.NoError(t, err)
	var stored models.Device
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Zero(t, stored.Power)
	assert.Zero(t, stored.LastSeen)
	assert.Equal(t, models.StatusOff, stored.Status)

	err = svc.CreateDevice(ctx, &models.Device{ID: d.ID, Name: "Dup", Location: "X", TotalBulbs: 1, WattPerDevice: 1})
	assert.True(t, errors.IsConflict(err))
}

func TestUpdateDeviceKeepsTelemetry(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	seedDevice(t, st, models.Device{
		ID: "dev1", Name: "Gate", Location: "North",
		TotalBulbs: 10, WattPerDevice: 50,
		Status: models.StatusOn, Power: 450, Voltage: 230,
		LastSeen: 1000,
	})

	incoming := &models.Device{
		ID: "dev1", Name: "Gate Renamed", Location: "North",
		TotalBulbs: 12, WattPerDevice: 50,
		// A stale payload must not be able to overwrite telemetry.
		Power: 0, Status: models.StatusOff, LastSeen: 0,
	}
	require.NoError(t, svc.UpdateDevice(ctx, incoming))

	raw, err := st.ReadOnce(ctx, "devices/dev1")
	require.NoError(t, err)
	var stored models.Device
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "Gate Renamed", stored.Name)
	assert.Equal(t, 12, stored.TotalBulbs)
	assert.EqualValues(t, 450, stored.Power)
	assert.Equal(t, models.StatusOn, stored.Status)
	assert.EqualValues(t, 1000, stored.LastSeen)
}

func TestDeleteDeviceCascades(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	seedDevice(t, st, models.Device{ID: "dev1", Name: "Gate"})
	_, err := svc.ToggleDevice(ctx, "dev1", SourceDashboard)
	require.NoError(t, err)
	require.NoError(t, svc.CreateSchedule(ctx, &models.Schedule{
		DeviceID: "dev1", Name: "Night", StartTime: "18:00", EndTime: "06:00",
		Days: models.ScheduleDays{Monday: true},
	}))
	waitMirrored(t, func() bool { return len(svc.Schedules("dev1")) == 1 })

	require.NoError(t, svc.DeleteDevice(ctx, "dev1"))

	_, err = st.ReadOnce(ctx, "devices/dev1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	waitMirrored(t, func() bool {
		return len(svc.Schedules("dev1")) == 0 && len(svc.DeviceHistory("dev1")) == 0
	})
}

func TestCreateScheduleRejectsEmptyDaysBeforeWriting(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	err := svc.CreateSchedule(ctx, &models.Schedule{
		ID: "sch1", DeviceID: "dev1", Name: "Never",
		StartTime: "18:00", EndTime: "06:00",
	})
	assert.True(t, errors.IsValidation(err))

	// Nothing reached the store.
	_, err = st.ReadOnce(ctx, "schedules/sch1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestToggleSchedule(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	sch := &models.Schedule{
		DeviceID: "dev1", Name: "Night", StartTime: "18:00", EndTime: "06:00",
		Days: models.ScheduleDays{Friday: true},
	}
	require.NoError(t, svc.CreateSchedule(ctx, sch))
	assert.True(t, sch.IsActive)

	toggled, err := svc.ToggleSchedule(ctx, sch.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	toggled, err = svc.ToggleSchedule(ctx, sch.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
}

func TestOverviewAndAlerts(t *testing.T) {
	svc, st := newService(t)
	now := time.Now().UnixMilli()

	// Online and fully lit.
	seedDevice(t, st, models.Device{
		ID: "ok", Name: "OK", TotalBulbs: 10, WattPerDevice: 50,
		Status: models.StatusOn, Power: 500, Energy: 2, LastSeen: now,
	})
	// Online with two dead bulbs and a reported fault.
	seedDevice(t, st, models.Device{
		ID: "bad", Name: "Bad", TotalBulbs: 10, WattPerDevice: 50,
		Status: models.StatusOn, Power: 390, Energy: 1, LastSeen: now,
		Error: "relay stuck",
	})
	// Never reported.
	seedDevice(t, st, models.Device{ID: "ghost", Name: "Ghost", TotalBulbs: 5, WattPerDevice: 50})
	waitMirrored(t, func() bool { return len(svc.Devices("", "")) == 3 })

	ov := svc.Overview()
	assert.Equal(t, 3, ov.Summary.Total)
	assert.Equal(t, 2, ov.Summary.Online)
	assert.Equal(t, 1, ov.Summary.Offline)
	assert.Equal(t, 1, ov.Summary.Defective)
	assert.InDelta(t, 890, ov.TotalPower, 0.001)
	assert.InDelta(t, 3, ov.TotalEnergy, 0.001)

	alerts := svc.Alerts()
	kinds := make(map[health.AlertKind]int)
	for _, a := range alerts {
		kinds[a.Kind]++
	}
	assert.Equal(t, 1, kinds[health.AlertDefective])
	assert.Equal(t, 1, kinds[health.AlertError])
	assert.Equal(t, 1, kinds[health.AlertOffline])

	defective := svc.DefectiveDevices()
	require.Len(t, defective, 1)
	assert.Equal(t, "bad", defective[0].Device.ID)
	assert.Equal(t, 2, defective[0].DefectiveBulbs)
}

func TestGetSettingsMergesPartialRecord(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	// Never saved: defaults.
	settings, err := svc.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)

	// Partial record from an older dashboard version.
	require.NoError(t, st.Create(ctx, "settings/u1", map[string]any{
		"darkMode":      true,
		"notifications": map[string]any{"deviceOffline": false},
	}))

	settings, err = svc.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, settings.DarkMode)
	assert.False(t, settings.Notifications.DeviceOffline)
	// Flags absent from the record keep their defaults.
	assert.True(t, settings.Notifications.DefectiveBulbs)
	assert.Equal(t, "60", settings.RefreshInterval)
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	want := models.DefaultSettings()
	want.DarkMode = true
	want.TimeFormat = "12h"
	require.NoError(t, svc.SaveSettings(ctx, "u1", want))

	got, err := svc.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTimelineThroughFeed(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	seedDevice(t, st, models.Device{ID: "a", Name: "A", Status: models.StatusOff})
	seedDevice(t, st, models.Device{ID: "b", Name: "B", Status: models.StatusOff})
	_, err := svc.ToggleDevice(ctx, "a", SourceDashboard)
	require.NoError(t, err)
	_, err = svc.ToggleDevice(ctx, "b", SourceDashboard)
	require.NoError(t, err)

	waitMirrored(t, func() bool { return len(svc.Timeline(health.TimelineFilter{})) == 2 })

	only := svc.Timeline(health.TimelineFilter{DeviceID: "a"})
	require.Len(t, only, 1)
	assert.Equal(t, "a", only[0].DeviceID)
}
