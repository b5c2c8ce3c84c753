package lightservice

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
	"github.com/Rajveerk82/MCD-SmartLight/internal/store"
)

// CreateSchedule stores a new switching rule. Validation happens before any
// store access: a schedule with no weekday selected would never fire and is
// rejected outright.
func (s *LightService) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	if err := validateSchedule(schedule); err != nil {
		return err
	}

	if schedule.ID == "" {
		schedule.ID = nuts.NID("sch", 12)
	}
	if schedule.Status == "" {
		schedule.Status = models.StatusOn
	}
	schedule.IsActive = true
	now := time.Now().UnixMilli()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	nuts.L.Infof("[LightService] Creating schedule %s for device %s", schedule.ID, schedule.DeviceID)
	if err := s.store.Create(ctx, "schedules/"+schedule.ID, schedule); err != nil {
		return errors.NewStoreError("failed to create schedule", err)
	}
	s.monitoring.RecordEvent("schedule.created", map[string]string{"id": schedule.ID})
	return nil
}

// UpdateSchedule replaces an existing schedule, keeping its creation time.
func (s *LightService) UpdateSchedule(ctx context.Context, schedule *models.Schedule) error {
	if err := validateSchedule(schedule); err != nil {
		return err
	}

	existing, err := s.loadSchedule(ctx, schedule.ID)
	if err != nil {
		return err
	}
	schedule.CreatedAt = existing.CreatedAt
	schedule.UpdatedAt = time.Now().UnixMilli()

	if err := s.store.Create(ctx, "schedules/"+schedule.ID, schedule); err != nil {
		return errors.NewStoreError("failed to update schedule", err)
	}
	return nil
}

// ToggleSchedule flips a schedule between active and paused.
func (s *LightService) ToggleSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.loadSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	schedule.IsActive = !schedule.IsActive
	schedule.UpdatedAt = time.Now().UnixMilli()
	err = s.store.Write(ctx, "schedules/"+id, map[string]any{
		"isActive":  schedule.IsActive,
		"updatedAt": schedule.UpdatedAt,
	})
	if err != nil {
		return nil, errors.NewStoreError("failed to toggle schedule", err)
	}
	return schedule, nil
}

// DeleteSchedule removes a schedule.
func (s *LightService) DeleteSchedule(ctx context.Context, id string) error {
	if _, err := s.loadSchedule(ctx, id); err != nil {
		return err
	}
	if err := s.Cleanup.DeleteSchedule(ctx, id); err != nil {
		return errors.NewStoreError("failed to delete schedule", err)
	}
	return nil
}

// Schedules returns the mirrored schedule list, optionally narrowed to one
// device, newest first.
func (s *LightService) Schedules(deviceID string) []models.Schedule {
	all := s.snapshotSchedules()
	out := make([]models.Schedule, 0, len(all))
	for _, sch := range all {
		if deviceID != "" && sch.DeviceID != deviceID {
			continue
		}
		out = append(out, sch)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func validateSchedule(schedule *models.Schedule) error {
	if schedule.DeviceID == "" {
		return errors.NewValidationError("schedule deviceId is required", nil)
	}
	if schedule.Name == "" {
		return errors.NewValidationError("schedule name is required", nil)
	}
	if schedule.StartTime == "" || schedule.EndTime == "" {
		return errors.NewValidationError("schedule start and end times are required", nil)
	}
	if !schedule.Days.Any() {
		return errors.NewValidationError("schedule must select at least one day", nil)
	}
	return nil
}

func (s *LightService) loadSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	if id == "" {
		return nil, errors.NewValidationError("schedule id is required", nil)
	}
	raw, err := s.store.ReadOnce(ctx, "schedules/"+id)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NewNotFoundError("schedule not found", err)
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to load schedule", err)
	}
	schedule := &models.Schedule{}
	if err := json.Unmarshal(raw, schedule); err != nil {
		return nil, errors.NewInternalError("failed to decode schedule record", err)
	}
	schedule.ID = id
	return schedule, nil
}
