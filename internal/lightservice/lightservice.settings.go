package lightservice

import (
	"context"
	"encoding/json"
	stderrors "errors"

	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
	"github.com/Rajveerk82/MCD-SmartLight/internal/store"
)

// GetSettings loads a user's dashboard settings. A user who never saved any
// gets the defaults; a partial record written by an older dashboard version is
// merged over the defaults field by field, so missing nested flags stay on.
func (s *LightService) GetSettings(ctx context.Context, uid string) (models.Settings, error) {
	defaults := models.DefaultSettings()

	raw, err := s.store.ReadOnce(ctx, "settings/"+uid)
	if stderrors.Is(err, store.ErrNotFound) {
		return defaults, nil
	}
	if err != nil {
		return defaults, errors.NewStoreError("failed to load settings", err)
	}

	var patch models.SettingsPatch
	if err := json.Unmarshal(raw, &patch); err != nil {
		nuts.L.Warnf("[LightService] Unreadable settings record for %s, serving defaults: %v", uid, err)
		return defaults, nil
	}
	return patch.Merged(defaults), nil
}

// SaveSettings replaces a user's dashboard settings with the full record.
func (s *LightService) SaveSettings(ctx context.Context, uid string, settings models.Settings) error {
	if uid == "" {
		return errors.NewValidationError("user id is required", nil)
	}
	if err := s.store.Create(ctx, "settings/"+uid, settings); err != nil {
		return errors.NewStoreError("failed to save settings", err)
	}
	return nil
}
