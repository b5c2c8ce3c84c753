// Package lightservice contains the business logic of the hub: it mirrors the
// store's collections into memory via live subscriptions, derives health views
// from the mirrored state, and issues device commands back into the store.
package lightservice

import (
	"context"
	"sync"

	"github.com/Rajveerk82/MCD-SmartLight/internal/cleanup"
	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
	"github.com/Rajveerk82/MCD-SmartLight/internal/monitoring"
	"github.com/Rajveerk82/MCD-SmartLight/internal/store"
)

// LightService contains the store connection and service-wide dependencies
type LightService struct {
	store      store.Store
	monitoring *monitoring.Service
	Cleanup    *cleanup.CleanupService

	mu        sync.RWMutex
	devices   map[string]models.Device
	history   map[string][]models.HistoryEntry
	schedules map[string]models.Schedule
	mounted   bool

	subs []store.Subscription
	wg   sync.WaitGroup
}

// New creates a new LightService instance
func New(st store.Store, mon *monitoring.Service) *LightService {
	svc := &LightService{
		store:      st,
		monitoring: mon,
		devices:    make(map[string]models.Device),
		history:    make(map[string][]models.HistoryEntry),
		schedules:  make(map[string]models.Schedule),
	}
	svc.Cleanup = cleanup.New(st)
	return svc
}

// Validate checks if all required dependencies are initialized
func (s *LightService) Validate() error {
	if s.store == nil {
		return errors.NewInternalError("missing store connection", nil)
	}
	if s.monitoring == nil {
		return errors.NewInternalError("missing monitoring service", nil)
	}
	return nil
}

type contextKey string

const rolesContextKey contextKey = "roles"

// WithRoles stores the caller's write roles in the context.
func WithRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, rolesContextKey, roles)
}

// GetUserRoles returns the caller's write roles. Requests through the API are
// always operator sessions, so that is the default.
func GetUserRoles(ctx context.Context) []string {
	if roles, ok := ctx.Value(rolesContextKey).([]string); ok && len(roles) > 0 {
		return roles
	}
	return []string{"operator"}
}
