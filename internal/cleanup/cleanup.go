package cleanup

import (
	"context"
	"fmt"

	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/internal/store"
)

// CleanupService coordinates deletion of hierarchical data. Removing a device
// must also remove its status history and any schedules targeting it, or the
// dashboard keeps showing ghosts of the deleted controller.
type CleanupService struct {
	store  store.Store
	events *nuts.EventEmitter
}

// New creates a new CleanupService
func New(st store.Store) *CleanupService {
	return &CleanupService{
		store:  st,
		events: nuts.NewEventEmitter(),
	}
}

// DeleteDevice deletes a device and all its associated data. The caller
// supplies the ids of the schedules currently targeting the device; the store
// has no server-side query for them.
func (s *CleanupService) DeleteDevice(ctx context.Context, deviceID string, scheduleIDs []string) error {
	for _, scheduleID := range scheduleIDs {
		if err := s.store.Delete(ctx, "schedules/"+scheduleID); err != nil {
			return fmt.Errorf("failed to delete schedule: %w", err)
		}
		s.events.Emit("schedule.deleted", scheduleID)
	}

	if err := s.store.Delete(ctx, "deviceHistory/"+deviceID); err != nil {
		return fmt.Errorf("failed to delete device history: %w", err)
	}
	s.events.Emit("history.deleted", deviceID)

	if err := s.store.Delete(ctx, "devices/"+deviceID); err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	// Emit event after successful deletion
	s.events.Emit("device.deleted", deviceID)
	return nil
}

// DeleteSchedule deletes a single schedule record.
func (s *CleanupService) DeleteSchedule(ctx context.Context, scheduleID string) error {
	if err := s.store.Delete(ctx, "schedules/"+scheduleID); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	s.events.Emit("schedule.deleted", scheduleID)
	return nil
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	s.events.On(event, "cleanup_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}
