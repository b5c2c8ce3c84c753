package lightservice

import (
	"context"
	"encoding/json"
	"strings"

	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
	"github.com/Rajveerk82/MCD-SmartLight/internal/store"
)

// The collections mirrored by the live feed.
const (
	collectionDevices   = "devices"
	collectionHistory   = "deviceHistory"
	collectionSchedules = "schedules"
)

// Mount opens the live feed: one subscription per mirrored collection. Each
// delivered snapshot fully replaces the previous in-memory state, so a hub
// that missed intermediate updates still converges. Mounting twice is a no-op.
func (s *LightService) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return nil
	}
	s.mounted = true
	s.mu.Unlock()

	var subs []store.Subscription
	for _, collection := range []string{collectionDevices, collectionHistory, collectionSchedules} {
		sub, err := s.store.Subscribe(ctx, collection)
		if err != nil {
			for _, opened := range subs {
				opened.Close()
			}
			s.mu.Lock()
			s.mounted = false
			s.mu.Unlock()
			s.wg.Wait()
			return errors.NewStoreError("failed to subscribe to "+collection, err)
		}
		subs = append(subs, sub)
		s.wg.Add(1)
		go s.consume(collection, sub)
	}

	s.mu.Lock()
	s.subs = subs
	s.mu.Unlock()

	nuts.L.Infof("[LightService] Live feed mounted (%d collections)", len(subs))
	return nil
}

// Unmount closes all live subscriptions and waits for the consumers to drain.
// The last mirrored state stays readable.
func (s *LightService) Unmount() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mounted = false
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	s.wg.Wait()
}

func (s *LightService) consume(collection string, sub store.Subscription) {
	defer s.wg.Done()
	for snap := range sub.Updates() {
		s.apply(collection, snap)
		s.monitoring.RecordSnapshot(collection)
	}
}

func (s *LightService) apply(collection string, snap store.Snapshot) {
	switch collection {
	case collectionDevices:
		devices := make(map[string]models.Device, len(snap))
		for id, raw := range snap {
			var d models.Device
			if err := json.Unmarshal(raw, &d); err != nil {
				nuts.L.Warnf("[LightService] Skipping unreadable device record %s: %v", id, err)
				continue
			}
			d.ID = id
			devices[id] = d
		}
		s.mu.Lock()
		s.devices = devices
		s.mu.Unlock()

	case collectionHistory:
		history := make(map[string][]models.HistoryEntry)
		for key, raw := range snap {
			deviceID, entryID, ok := strings.Cut(key, "/")
			if ok {
				var e models.HistoryEntry
				if err := json.Unmarshal(raw, &e); err != nil {
					nuts.L.Warnf("[LightService] Skipping unreadable history entry %s: %v", key, err)
					continue
				}
				e.ID = entryID
				e.DeviceID = deviceID
				history[deviceID] = append(history[deviceID], e)
				continue
			}
			// Whole-device record written as a nested map of entries.
			var entries map[string]models.HistoryEntry
			if err := json.Unmarshal(raw, &entries); err != nil {
				nuts.L.Warnf("[LightService] Skipping unreadable history record %s: %v", key, err)
				continue
			}
			for entryID, e := range entries {
				e.ID = entryID
				e.DeviceID = key
				history[key] = append(history[key], e)
			}
		}
		s.mu.Lock()
		s.history = history
		s.mu.Unlock()

	case collectionSchedules:
		schedules := make(map[string]models.Schedule, len(snap))
		for id, raw := range snap {
			var sch models.Schedule
			if err := json.Unmarshal(raw, &sch); err != nil {
				nuts.L.Warnf("[LightService] Skipping unreadable schedule record %s: %v", id, err)
				continue
			}
			sch.ID = id
			schedules[id] = sch
		}
		s.mu.Lock()
		s.schedules = schedules
		s.mu.Unlock()
	}
}

// snapshotDevices returns a copy of the mirrored device state.
func (s *LightService) snapshotDevices() []models.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d)
	}
	return out
}

func (s *LightService) snapshotHistory() map[string][]models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]models.HistoryEntry, len(s.history))
	for id, entries := range s.history {
		out[id] = append([]models.HistoryEntry(nil), entries...)
	}
	return out
}

func (s *LightService) snapshotSchedules() []models.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Schedule, 0, len(s.schedules))
	for _, sch := range s.schedules {
		out = append(out, sch)
	}
	return out
}
