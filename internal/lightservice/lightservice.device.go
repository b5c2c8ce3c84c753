package lightservice

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"
	"time"

	"github.com/itsatony/struccy"
	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/health"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
	"github.com/Rajveerk82/MCD-SmartLight/internal/store"
)

// Command origin tags recorded in the status history.
const (
	SourceDashboard = "dashboard"
	SourceBulk      = "dashboard-bulk"
)

// CreateDevice registers a new street-light controller.
func (s *LightService) CreateDevice(ctx context.Context, device *models.Device) error {
	if device.Name == "" {
		return errors.NewValidationError("device name is required", nil)
	}
	if device.Location == "" {
		return errors.NewValidationError("device location is required", nil)
	}
	if device.TotalBulbs <= 0 {
		return errors.NewValidationError("totalBulbs must be positive", nil)
	}
	if device.WattPerDevice <= 0 {
		return errors.NewValidationError("wattPerDevice must be positive", nil)
	}

	if device.ID == "" {
		device.ID = nuts.NID("dev", 12)
	}

	if _, err := s.store.ReadOnce(ctx, "devices/"+device.ID); err == nil {
		return errors.NewConflictError("a device with this id already exists", nil)
	} else if !stderrors.Is(err, store.ErrNotFound) {
		return errors.NewStoreError("failed to check device id", err)
	}

	// Telemetry starts at zero; LastSeen stays 0 until the controller first
	// reports, which the health views treat as offline.
	if device.Status == "" {
		device.Status = models.StatusOff
	}
	device.Power, device.Voltage, device.Current, device.Energy = 0, 0, 0, 0
	device.LastSeen = 0
	device.LastUpdated = time.Now().UnixMilli()

	nuts.L.Infof("[LightService] Creating new device: %s (%s)", device.Name, device.ID)
	if err := s.store.Create(ctx, "devices/"+device.ID, device); err != nil {
		return errors.NewStoreError("failed to create device", err)
	}
	s.monitoring.RecordEvent("device.created", map[string]string{"id": device.ID})
	return nil
}

// UpdateDevice updates a device's configuration with role-based field access.
// Telemetry fields are controller-owned and never touched here, whatever the
// incoming payload carries.
func (s *LightService) UpdateDevice(ctx context.Context, device *models.Device) error {
	existing, err := s.loadDevice(ctx, device.ID)
	if err != nil {
		return err
	}

	roles := GetUserRoles(ctx)

	updatedFields, _, err := struccy.UpdateStructFields(existing, device, roles, true, true)
	if err != nil {
		return errors.NewAuthorizationError("unauthorized field update", err)
	}

	existing.LastUpdated = time.Now().UnixMilli()

	fields := map[string]any{
		"name":          existing.Name,
		"location":      existing.Location,
		"totalBulbs":    existing.TotalBulbs,
		"wattPerDevice": existing.WattPerDevice,
		"lastUpdated":   existing.LastUpdated,
	}
	if existing.Command != "" {
		fields["command"] = existing.Command
	}

	nuts.L.Infof("[LightService] Updating device %s, fields changed: %v", device.ID, updatedFields)
	if err := s.store.Write(ctx, "devices/"+device.ID, fields); err != nil {
		return errors.NewStoreError("failed to update device", err)
	}
	*device = *existing
	return nil
}

// ToggleDevice flips one device's switch state. The new state is written as
// both status and command so the controller picks it up on its next poll, and
// a history entry records who flipped it. History bookkeeping is best-effort;
// a failed append never fails the command.
func (s *LightService) ToggleDevice(ctx context.Context, id, source string) (*models.Device, error) {
	device, err := s.loadDevice(ctx, id)
	if err != nil {
		s.monitoring.RecordCommand("toggle", "error")
		return nil, err
	}

	target := device.Status.Toggled()
	now := time.Now().UnixMilli()

	err = s.store.Write(ctx, "devices/"+id, map[string]any{
		"status":      target,
		"command":     target,
		"lastUpdated": now,
	})
	if err != nil {
		s.monitoring.RecordCommand("toggle", "error")
		return nil, errors.NewStoreError("failed to toggle device", err)
	}
	s.monitoring.RecordCommand("toggle", "ok")

	s.appendHistory(ctx, id, models.HistoryEntry{Status: target, Timestamp: now, Source: source})

	device.Status = target
	device.Command = target
	device.LastUpdated = now
	nuts.L.Infof("[LightService] Toggled device %s to %s (source %s)", id, target, source)
	return device, nil
}

// ToggleAll switches every known device in one atomic batch. If every device
// is already on, all are switched off; otherwise all are switched on. Returns
// the commanded state and the number of devices addressed.
func (s *LightService) ToggleAll(ctx context.Context, source string) (models.DeviceStatus, int, error) {
	devices := s.snapshotDevices()
	if len(devices) == 0 {
		return models.StatusOff, 0, nil
	}

	allOn := true
	for _, d := range devices {
		if d.Status != models.StatusOn {
			allOn = false
			break
		}
	}
	target := models.StatusOn
	if allOn {
		target = models.StatusOff
	}

	now := time.Now().UnixMilli()
	updates := make(map[string]any, 2*len(devices))
	for _, d := range devices {
		updates[d.ID+"/status"] = target
		updates[d.ID+"/command"] = target
		updates[d.ID+"/lastUpdated"] = now
	}

	if err := s.store.WriteBatch(ctx, collectionDevices, updates); err != nil {
		s.monitoring.RecordCommand("toggle_all", "error")
		return target, 0, errors.NewStoreError("failed to toggle all devices", err)
	}
	s.monitoring.RecordCommand("toggle_all", "ok")

	for _, d := range devices {
		s.appendHistory(ctx, d.ID, models.HistoryEntry{Status: target, Timestamp: now, Source: source})
	}

	nuts.L.Infof("[LightService] Toggled all %d devices to %s", len(devices), target)
	return target, len(devices), nil
}

// DeleteDevice removes a device together with its history and schedules.
func (s *LightService) DeleteDevice(ctx context.Context, id string) error {
	if _, err := s.loadDevice(ctx, id); err != nil {
		return err
	}

	var scheduleIDs []string
	for _, sch := range s.snapshotSchedules() {
		if sch.DeviceID == id {
			scheduleIDs = append(scheduleIDs, sch.ID)
		}
	}

	if err := s.Cleanup.DeleteDevice(ctx, id, scheduleIDs); err != nil {
		return errors.NewStoreError("failed to delete device", err)
	}
	s.monitoring.RecordEvent("device.deleted", map[string]string{"id": id})
	return nil
}

// Devices returns the mirrored device list, filtered and sorted by name.
func (s *LightService) Devices(query, status string) []models.Device {
	devices := health.FilterDevices(s.snapshotDevices(), query, status, time.Now())
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Name != devices[j].Name {
			return devices[i].Name < devices[j].Name
		}
		return devices[i].ID < devices[j].ID
	})
	return devices
}

// Device returns one mirrored device.
func (s *LightService) Device(id string) (*models.Device, error) {
	s.mu.RLock()
	d, ok := s.devices[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError("device not found", nil)
	}
	return &d, nil
}

// DeviceHistory returns one device's status history, newest first.
func (s *LightService) DeviceHistory(id string) []models.HistoryEntry {
	s.mu.RLock()
	entries := append([]models.HistoryEntry(nil), s.history[id]...)
	s.mu.RUnlock()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries
}

// loadDevice reads the authoritative device record from the store. Commands
// go through here rather than the mirror so a hub with a stale feed cannot
// toggle based on outdated state.
func (s *LightService) loadDevice(ctx context.Context, id string) (*models.Device, error) {
	if id == "" {
		return nil, errors.NewValidationError("device id is required", nil)
	}
	raw, err := s.store.ReadOnce(ctx, "devices/"+id)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NewNotFoundError("device not found", err)
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to load device", err)
	}
	device := &models.Device{}
	if err := json.Unmarshal(raw, device); err != nil {
		return nil, errors.NewInternalError("failed to decode device record", err)
	}
	device.ID = id
	return device, nil
}

func (s *LightService) appendHistory(ctx context.Context, deviceID string, entry models.HistoryEntry) {
	if _, err := s.store.Append(ctx, "deviceHistory/"+deviceID, entry); err != nil {
		nuts.L.Warnf("[LightService] History append for %s failed: %v", deviceID, err)
	}
}
