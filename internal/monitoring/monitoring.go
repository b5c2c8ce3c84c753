package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	nuts "github.com/vaudience/go-nuts"
)

const metricPrefix = "mcdlight_"

// Service provides monitoring functionality
type Service struct {
	registry *prometheus.Registry

	commands  *prometheus.CounterVec
	snapshots *prometheus.CounterVec
	events    *prometheus.CounterVec
	alerts    *prometheus.GaugeVec
}

// NewService creates a new monitoring service with its own registry.
func NewService() *Service {
	s := &Service{registry: prometheus.NewRegistry()}

	s.commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "commands_total",
			Help: "Device commands issued through the hub by kind and result",
		},
		[]string{"kind", "result"},
	)
	s.snapshots = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "snapshots_total",
			Help: "Live-feed snapshots delivered per collection",
		},
		[]string{"collection"},
	)
	s.events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "events_total",
			Help: "Service events by name",
		},
		[]string{"event"},
	)
	s.alerts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: metricPrefix + "alerts_active",
			Help: "Currently raised alerts by kind",
		},
		[]string{"kind"},
	)

	s.registry.MustRegister(s.commands, s.snapshots, s.events, s.alerts)
	return s
}

// Handler exposes the registry for the /metrics endpoint.
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// RecordCommand counts one issued device command.
func (s *Service) RecordCommand(kind, result string) {
	s.commands.WithLabelValues(kind, result).Inc()
}

// RecordSnapshot counts one delivered live-feed snapshot.
func (s *Service) RecordSnapshot(collection string) {
	s.snapshots.WithLabelValues(collection).Inc()
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	s.events.WithLabelValues(eventName).Inc()
	nuts.L.Infof("[Monitoring] Event %s recorded with labels: %v", eventName, labels)
}

// SetActiveAlerts publishes the current alert count for one kind.
func (s *Service) SetActiveAlerts(kind string, n int) {
	s.alerts.WithLabelValues(kind).Set(float64(n))
}
