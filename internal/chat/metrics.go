package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chatrelay_connected_sessions",
		Help: "Number of currently logged-in sessions",
	})

	ConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_connections_total",
		Help: "Lifetime accepted connections",
	})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatrelay_commands_total",
		Help: "Commands dispatched by verb",
	}, []string{"verb"})

	DisconnectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatrelay_disconnects_total",
		Help: "Connection teardowns by cause",
	}, []string{"cause"})

	IdleEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_idle_evictions_total",
		Help: "Sessions evicted by the idle sweep",
	})

	DroppedWritesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatrelay_dropped_writes_total",
		Help: "Outbound lines dropped because a client buffer was full",
	})

	EventProcessingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chatrelay_event_processing_seconds",
		Help:    "Time to process each event type",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(ConnectedSessions)
	prometheus.MustRegister(ConnectionsTotal)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(DisconnectsTotal)
	prometheus.MustRegister(IdleEvictionsTotal)
	prometheus.MustRegister(DroppedWritesTotal)
	prometheus.MustRegister(EventProcessingDuration)
}
