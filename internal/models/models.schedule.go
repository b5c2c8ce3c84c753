package models

// ScheduleDays holds the weekday flags of a schedule. At least one day must
// be selected for a schedule to be valid.
type ScheduleDays struct {
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

// Any reports whether at least one weekday is selected.
func (d ScheduleDays) Any() bool {
	return d.Monday || d.Tuesday || d.Wednesday || d.Thursday ||
		d.Friday || d.Saturday || d.Sunday
}

// Schedule is a stored on/off rule for one device. The hub only manages these
// records; an external agent polls the collection and performs the switching.
type Schedule struct {
	ID        string       `json:"id,omitempty"`
	DeviceID  string       `json:"deviceId"`
	Name      string       `json:"name"`
	StartTime string       `json:"startTime"`
	EndTime   string       `json:"endTime"`
	Days      ScheduleDays `json:"days"`
	Status    DeviceStatus `json:"status"`
	IsActive  bool         `json:"isActive"`
	CreatedAt int64        `json:"createdAt,omitempty"`
	UpdatedAt int64        `json:"updatedAt,omitempty"`
}
