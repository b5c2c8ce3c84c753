package models

// NotificationSettings enables or disables the individual alert categories.
type NotificationSettings struct {
	DeviceOffline   bool `json:"deviceOffline"`
	DefectiveBulbs  bool `json:"defectiveBulbs"`
	ScheduledEvents bool `json:"scheduledEvents"`
	SystemUpdates   bool `json:"systemUpdates"`
}

// Settings is the per-user dashboard configuration stored at settings/<uid>.
type Settings struct {
	DarkMode        bool                 `json:"darkMode"`
	Notifications   NotificationSettings `json:"notifications"`
	RefreshInterval string               `json:"refreshInterval"`
	TemperatureUnit string               `json:"temperatureUnit"`
	TimeFormat      string               `json:"timeFormat"`
}

// DefaultSettings returns the settings applied when a user has never saved any.
func DefaultSettings() Settings {
	return Settings{
		DarkMode: false,
		Notifications: NotificationSettings{
			DeviceOffline:   true,
			DefectiveBulbs:  true,
			ScheduledEvents: true,
			SystemUpdates:   true,
		},
		RefreshInterval: "60",
		TemperatureUnit: "celsius",
		TimeFormat:      "24h",
	}
}

// SettingsPatch is a partial settings payload as it may arrive from the store.
// Fields absent from the stored record stay nil and keep their defaults, so a
// record written by an older dashboard version cannot silently drop newer
// nested defaults.
type SettingsPatch struct {
	DarkMode        *bool                      `json:"darkMode,omitempty"`
	Notifications   *NotificationSettingsPatch `json:"notifications,omitempty"`
	RefreshInterval *string                    `json:"refreshInterval,omitempty"`
	TemperatureUnit *string                    `json:"temperatureUnit,omitempty"`
	TimeFormat      *string                    `json:"timeFormat,omitempty"`
}

type NotificationSettingsPatch struct {
	DeviceOffline   *bool `json:"deviceOffline,omitempty"`
	DefectiveBulbs  *bool `json:"defectiveBulbs,omitempty"`
	ScheduledEvents *bool `json:"scheduledEvents,omitempty"`
	SystemUpdates   *bool `json:"systemUpdates,omitempty"`
}

// Merged applies the patch field by field on top of base and returns the result.
func (p *SettingsPatch) Merged(base Settings) Settings {
	if p == nil {
		return base
	}
	out := base
	if p.DarkMode != nil {
		out.DarkMode = *p.DarkMode
	}
	if p.RefreshInterval != nil {
		out.RefreshInterval = *p.RefreshInterval
	}
	if p.TemperatureUnit != nil {
		out.TemperatureUnit = *p.TemperatureUnit
	}
	if p.TimeFormat != nil {
		out.TimeFormat = *p.TimeFormat
	}
	if n := p.Notifications; n != nil {
		if n.DeviceOffline != nil {
			out.Notifications.DeviceOffline = *n.DeviceOffline
		}
		if n.DefectiveBulbs != nil {
			out.Notifications.DefectiveBulbs = *n.DefectiveBulbs
		}
		if n.ScheduledEvents != nil {
			out.Notifications.ScheduledEvents = *n.ScheduledEvents
		}
		if n.SystemUpdates != nil {
			out.Notifications.SystemUpdates = *n.SystemUpdates
		}
	}
	return out
}
