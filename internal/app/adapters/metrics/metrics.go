package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LinesReceived - number of raw protocol lines read from the transport.
	LinesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tmi_lines_received_total",
		Help: "Total number of protocol lines read from the transport",
	})

	// LinesSent - number of lines written to the transport.
	LinesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tmi_lines_sent_total",
		Help: "Total number of protocol lines written to the transport",
	})

	// MalformedLines - inbound lines the codec rejected.
	MalformedLines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tmi_malformed_lines_total",
		Help: "Total number of inbound lines dropped as unparseable",
	})

	// EventsDelivered - classified events handed to the subscriber.
	EventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmi_events_delivered_total",
			Help: "Total number of events delivered to the subscriber per type",
		},
		[]string{"type"},
	)

	// Reconnects - reconnect attempts, by what triggered them.
	Reconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmi_reconnects_total",
			Help: "Total number of reconnect attempts per trigger",
		},
		[]string{"trigger"},
	)

	// ConnectionState - current connection phase as a numeric gauge.
	ConnectionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tmi_connection_state",
		Help: "Current connection phase (0 disconnected .. 6 closed)",
	})

	// QueueDepth - pending outgoing requests per rate class.
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tmi_outgoing_queue_depth",
			Help: "Current number of pending outgoing requests per rate class",
		},
		[]string{"class"},
	)

	// QueueRejected - enqueue calls refused because the class queue was full.
	QueueRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmi_outgoing_queue_rejected_total",
			Help: "Total number of enqueue calls rejected per rate class",
		},
		[]string{"class"},
	)

	// MessagesSent - chat messages that reached the transport per rate class.
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmi_messages_sent_total",
			Help: "Total number of chat messages sent per rate class",
		},
		[]string{"class"},
	)
)
