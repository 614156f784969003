package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_clients",
		Help: "Number of currently connected clients",
	})

	RoomsCreated = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_rooms_created",
		Help: "Number of rooms created so far (rooms are never removed)",
	})

	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total protocol lines dispatched by kind",
	}, []string{"kind"})

	ProtocolErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_protocol_errors_total",
		Help: "Lines answered with ERROR, by reason",
	}, []string{"reason"})

	LinesSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_lines_sent_total",
		Help: "Server-to-client lines queued for delivery",
	})

	OutboundOverflowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_outbound_overflows_total",
		Help: "Sessions dropped because their outbound queue overflowed",
	})

	DisconnectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_disconnects_total",
		Help: "Session teardowns by cause",
	}, []string{"cause"})

	EventProcessingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_event_processing_seconds",
		Help:    "Time to process each event type",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(RoomsCreated)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(ProtocolErrorsTotal)
	prometheus.MustRegister(LinesSentTotal)
	prometheus.MustRegister(OutboundOverflowsTotal)
	prometheus.MustRegister(DisconnectsTotal)
	prometheus.MustRegister(EventProcessingDuration)
}
