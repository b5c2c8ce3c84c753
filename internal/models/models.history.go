package models

// HistoryEntry is an append-only record of a status change, pushed under
// deviceHistory/<deviceId>. Entries are never mutated or deleted by the hub.
type HistoryEntry struct {
	ID       string       `json:"id,omitempty"`
	DeviceID string       `json:"deviceId,omitempty"`
	Status   DeviceStatus `json:"status"`
	// Epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
	// Origin tag, e.g. "user", "dashboard", "dashboard-bulk".
	Source string `json:"source"`
}
