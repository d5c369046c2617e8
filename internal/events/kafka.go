package events

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// MessageWriter is the part of *kafka.Writer the forwarder needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ForwarderConfig struct {
	Brokers      string
	Topic        string
	BufferSize   int
	WriteTimeout time.Duration
}

// Forwarder copies bus events to a Kafka topic. Handle only enqueues; Run
// drains the queue so a slow broker never delays a booking.
type Forwarder struct {
	writer       MessageWriter
	topic        string
	queue        chan queued
	writeTimeout time.Duration
	logger       *slog.Logger
}

// NewKafkaWriter builds a writer for the configured brokers, or returns nil
// when none are configured.
func NewKafkaWriter(brokers string) *kafka.Writer {
	addrs := SplitBrokers(brokers)
	if len(addrs) == 0 {
		return nil
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewForwarder(writer MessageWriter, cfg ForwarderConfig, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Forwarder{
		writer:       writer,
		topic:        cfg.Topic,
		queue:        make(chan queued, cfg.BufferSize),
		writeTimeout: cfg.WriteTimeout,
		logger:       logger.With(slog.String("component", "kafka_forwarder")),
	}
}

type queued struct {
	event Event
	trace []kafka.Header
}

// Handle is a bus handler. Events are dropped with a warning when the queue is full.
func (f *Forwarder) Handle(ctx context.Context, event *Event) error {
	ev := *event
	select {
	case f.queue <- queued{event: ev, trace: injectTraceHeaders(ctx, nil)}:
	default:
		f.logger.Warn("event queue full, dropping event",
			slog.String("event_type", ev.Type),
			slog.String("event_id", ev.ID),
		)
	}
	return nil
}

// Run writes queued events until ctx is done, then flushes what is left and
// closes the writer.
func (f *Forwarder) Run(ctx context.Context) {
	defer func() {
		if err := f.writer.Close(); err != nil {
			f.logger.Warn("kafka writer close failed", slog.Any("err", err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			f.drain()
			return
		case q := <-f.queue:
			f.write(context.Background(), q)
		}
	}
}

func (f *Forwarder) drain() {
	for {
		select {
		case q := <-f.queue:
			f.write(context.Background(), q)
		default:
			return
		}
	}
}

func (f *Forwarder) write(ctx context.Context, q queued) {
	ctx, cancel := context.WithTimeout(ctx, f.writeTimeout)
	defer cancel()

	ev := q.event
	msg := Message(f.topic, ev)
	msg.Headers = append(msg.Headers, q.trace...)
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		f.logger.Error("kafka publish failed",
			slog.String("event_type", ev.Type),
			slog.String("event_id", ev.ID),
			slog.Any("err", err),
		)
	}
}

// Message converts an event to a Kafka message carrying event_id and event_type headers.
func Message(topic string, ev Event) kafka.Message {
	key := ev.Key
	if key == "" {
		key = ev.ID
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: ev.Payload,
		Time:  ev.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.ID)},
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
}

func HeaderValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	return HeaderValue(c.headers, key)
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)
