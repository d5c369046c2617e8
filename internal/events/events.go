package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	AppointmentBooked    = "appointment.booked"
	AppointmentCompleted = "appointment.completed"
	AppointmentCancelled = "appointment.cancelled"
	ServicePriceChanged  = "service.price_changed"
)

// AppointmentPayload is the appointment snapshot carried by appointment.* events.
type AppointmentPayload struct {
	ID            string  `json:"id"`
	ClientName    string  `json:"clientName"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	ServiceType   string  `json:"serviceType"`
	Status        string  `json:"status"`
	IsHomeService bool    `json:"isHomeService"`
	Price         *string `json:"price,omitempty"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
}

// Event is a domain event with a JSON payload. Key groups events of the same
// aggregate.
type Event struct {
	ID        string
	Type      string
	Key       string
	Payload   []byte
	CreatedAt time.Time
}

type Handler func(ctx context.Context, event *Event) error

// Bus is an in-process pub/sub. Handlers run synchronously on the publisher's
// goroutine; a failing handler is logged and does not stop the others.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	wildcard    []Handler
	logger      *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[string][]Handler),
		logger:      logger.With(slog.String("component", "events")),
	}
}

func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, handler)
}

func (b *Bus) Publish(ctx context.Context, event *Event) {
	if b == nil || event == nil {
		return
	}
	if event.ID == "" {
		event.ID = newEventID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subscribers[event.Type])+len(b.wildcard))
	handlers = append(handlers, b.subscribers[event.Type]...)
	handlers = append(handlers, b.wildcard...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Warn("event handler failed",
				slog.String("event_type", event.Type),
				slog.String("event_id", event.ID),
				slog.Any("err", err),
			)
		}
	}
}

// PublishJSON serializes payload and publishes it under eventType.
func (b *Bus) PublishJSON(ctx context.Context, eventType, key string, payload any) error {
	if b == nil {
		return nil
	}
	event, err := NewJSONEvent(eventType, key, payload)
	if err != nil {
		return err
	}
	b.Publish(ctx, &event)
	return nil
}

func NewJSONEvent(eventType, key string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:        newEventID(),
		Type:      eventType,
		Key:       key,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
