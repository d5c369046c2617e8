package metrics

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ignajaliff/sheen-schedule-clean/internal/events"
)

const namespace = "sheen"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"method", "route", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	appointmentEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_events_total",
			Help:      "Appointment lifecycle events by type.",
		},
		[]string{"event"},
	)

	bookingRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rejections_total",
			Help:      "Bookings refused by reason.",
		},
		[]string{"reason"},
	)
)

// Register registers the collectors with the default registry. Safe to call
// multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, appointmentEvents, bookingRejections)
	})
}

func ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncBookingRejected counts a refused booking; reason is a short fixed label
// such as "slot_full" or "slot_busy".
func IncBookingRejected(reason string) {
	bookingRejections.WithLabelValues(reason).Inc()
}

// Subscribe counts appointment events published on bus.
func Subscribe(bus *events.Bus) {
	for _, t := range []string{events.AppointmentBooked, events.AppointmentCompleted, events.AppointmentCancelled} {
		bus.Subscribe(t, func(ctx context.Context, event *events.Event) error {
			appointmentEvents.WithLabelValues(event.Type).Inc()
			return nil
		})
	}
}
