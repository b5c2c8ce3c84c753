package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingCoercesGarbageToZero(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want float64
	}{
		{"number", `{"power": 42.5}`, 42.5},
		{"numeric string", `{"power": "17.25"}`, 17.25},
		{"word", `{"power": "offline"}`, 0},
		{"null", `{"power": null}`, 0},
		{"object", `{"power": {"w": 3}}`, 0},
		{"missing", `{}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var d Device
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &d))
			assert.EqualValues(t, tc.want, d.Power)
		})
	}
}

func TestDeviceStatusToggled(t *testing.T) {
	assert.Equal(t, StatusOff, StatusOn.Toggled())
	assert.Equal(t, StatusOn, StatusOff.Toggled())
	// Unknown states toggle to on, matching a safe default for lighting.
	assert.Equal(t, StatusOn, DeviceStatus("").Toggled())
}

func TestExpectedPower(t *testing.T) {
	d := Device{TotalBulbs: 10, WattPerDevice: 50}
	assert.EqualValues(t, 500, d.ExpectedPower())
}

func TestScheduleDaysAny(t *testing.T) {
	assert.False(t, ScheduleDays{}.Any())
	assert.True(t, ScheduleDays{Wednesday: true}.Any())
}

func TestSettingsPatchMerged(t *testing.T) {
	defaults := DefaultSettings()

	var nilPatch *SettingsPatch
	assert.Equal(t, defaults, nilPatch.Merged(defaults))

	dark := true
	off := false
	patch := &SettingsPatch{
		DarkMode:      &dark,
		Notifications: &NotificationSettingsPatch{SystemUpdates: &off},
	}
	merged := patch.Merged(defaults)
	assert.True(t, merged.DarkMode)
	assert.False(t, merged.Notifications.SystemUpdates)
	// Untouched nested flags keep their defaults.
	assert.True(t, merged.Notifications.DeviceOffline)
	assert.Equal(t, "celsius", merged.TemperatureUnit)
}

func TestUserPublicStripsHash(t *testing.T) {
	u := User{UID: "u1", Email: "x@y.zz", PasswordHash: "secret"}
	assert.Empty(t, u.Public().PasswordHash)
	// Public returns a copy; the source value keeps its hash.
	assert.Equal(t, "secret", u.PasswordHash)
}
