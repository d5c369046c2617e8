package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ignajaliff/sheen-schedule-clean/internal/events"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
	assert.NotPanics(t, func() {
		ObserveHTTP("GET", "/api/v1/appointments", 200, 15*time.Millisecond)
		IncBookingRejected("slot_full")
	})
}

func TestSubscribe_CountsAppointmentEvents(t *testing.T) {
	bus := events.NewBus(nil)
	Subscribe(bus)

	before := testutil.ToFloat64(appointmentEvents.WithLabelValues(events.AppointmentBooked))
	bus.Publish(context.Background(), &events.Event{Type: events.AppointmentBooked})
	bus.Publish(context.Background(), &events.Event{Type: events.ServicePriceChanged})
	after := testutil.ToFloat64(appointmentEvents.WithLabelValues(events.AppointmentBooked))

	assert.Equal(t, before+1, after)
}
