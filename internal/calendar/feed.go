package calendar

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/events"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

type appointmentLister interface {
	List(ctx context.Context, filter store.ListFilter) ([]domain.Appointment, error)
}

// DefaultFeedMaxAge bounds how long a cached list is served without a
// reload. Writes made through another server process never reach this
// process's bus, so only the max age brings them in.
const DefaultFeedMaxAge = 5 * time.Second

// Feed caches the appointment list the calendar renders from. Any mutation
// invalidates the whole list; the next read reloads it. A list older than the
// max age is reloaded too. Every load carries a generation token and only the
// load started last may install its result, so a slow, older fetch never
// overwrites newer state.
type Feed struct {
	source appointmentLister
	logger *slog.Logger
	maxAge time.Duration
	now    func() time.Time

	mu         sync.Mutex
	generation uint64
	fresh      bool
	loadedAt   time.Time
	appts      []domain.Appointment
}

type FeedOption func(*Feed)

// WithMaxAge sets how long a loaded list stays fresh. Zero reloads on every
// read.
func WithMaxAge(d time.Duration) FeedOption {
	return func(f *Feed) {
		if d >= 0 {
			f.maxAge = d
		}
	}
}

func withClock(now func() time.Time) FeedOption {
	return func(f *Feed) {
		f.now = now
	}
}

func NewFeed(source appointmentLister, logger *slog.Logger, opts ...FeedOption) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Feed{
		source: source,
		logger: logger.With(slog.String("component", "calendar_feed")),
		maxAge: DefaultFeedMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Invalidate marks the cached list stale and supersedes any load in flight.
func (f *Feed) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.fresh = false
}

// Appointments returns the cached list, reloading it first when stale. The
// returned slice is owned by the caller.
func (f *Feed) Appointments(ctx context.Context) ([]domain.Appointment, error) {
	f.mu.Lock()
	if f.fresh && f.now().Sub(f.loadedAt) < f.maxAge {
		out := append([]domain.Appointment(nil), f.appts...)
		f.mu.Unlock()
		return out, nil
	}
	f.generation++
	gen := f.generation
	started := f.now()
	f.mu.Unlock()

	appts, err := f.source.List(ctx, store.ListFilter{})
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if gen == f.generation {
		f.appts = appts
		f.fresh = true
		f.loadedAt = started
	} else {
		f.logger.Debug("discarding stale appointment load", slog.Uint64("generation", gen))
	}
	f.mu.Unlock()

	return append([]domain.Appointment(nil), appts...), nil
}

// Subscribe invalidates the feed whenever an appointment changes.
func (f *Feed) Subscribe(bus *events.Bus) {
	for _, t := range []string{events.AppointmentBooked, events.AppointmentCompleted, events.AppointmentCancelled} {
		bus.Subscribe(t, func(ctx context.Context, event *events.Event) error {
			f.Invalidate()
			return nil
		})
	}
}
