package appointments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/events"
	"github.com/ignajaliff/sheen-schedule-clean/internal/metrics"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

var (
	ErrSlotFull         = errors.New("slot is full")
	ErrSlotBusy         = errors.New("slot is being booked by another request")
	ErrAlreadyFinalized = errors.New("appointment already completed or cancelled")
)

type priceLookup interface {
	LookupPrice(ctx context.Context, serviceName string) (*decimal.Decimal, error)
}

type publisher interface {
	PublishJSON(ctx context.Context, eventType, key string, payload any) error
}

type Service struct {
	repo    store.AppointmentRepository
	checker *Checker
	catalog priceLookup
	guard   SlotGuard
	events  publisher
	logger  *slog.Logger
}

type Option func(*Service)

func WithSlotGuard(g SlotGuard) Option {
	return func(s *Service) {
		if g != nil {
			s.guard = g
		}
	}
}

func WithPublisher(p publisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(repo store.AppointmentRepository, catalog priceLookup, maxPerSlot int, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		checker: NewChecker(repo, maxPerSlot),
		catalog: catalog,
		guard:   NoGuard{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "appointments"))
	return s
}

func (s *Service) Checker() *Checker {
	return s.checker
}

type BookInput struct {
	ClientName    string
	Date          string
	Time          string
	ServiceType   string
	Location      string
	IsHomeService bool
}

// Book validates the request, checks slot capacity and stores a pending
// appointment priced from the service catalog. A catalog miss leaves the
// price empty.
func (s *Service) Book(ctx context.Context, in BookInput) (domain.Appointment, error) {
	clientName := strings.TrimSpace(in.ClientName)
	if clientName == "" {
		return domain.Appointment{}, validationError("client name is required")
	}
	serviceType := strings.TrimSpace(in.ServiceType)
	if serviceType == "" {
		return domain.Appointment{}, validationError("service type is required")
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return domain.Appointment{}, err
	}
	t := strings.TrimSpace(in.Time)
	if !domain.ValidTime(t) {
		return domain.Appointment{}, validationError("time must be a half-hour slot between 09:00 and 17:30")
	}
	location := domain.WorkshopLocation
	if in.IsHomeService {
		location = strings.TrimSpace(in.Location)
		if location == "" {
			return domain.Appointment{}, validationError("address is required for home service")
		}
	}

	slot := domain.Slot{Date: date, Time: t}
	release, err := s.guard.Acquire(ctx, slot)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.IncBookingRejected("slot_busy")
			return domain.Appointment{}, ErrSlotBusy
		}
		return domain.Appointment{}, fmt.Errorf("slot guard: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("slot guard release failed", slog.String("slot", slot.Key()), slog.Any("err", err))
		}
	}()

	ok, err := s.checker.CanBook(ctx, date, t)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("availability check: %w", err)
	}
	if !ok {
		metrics.IncBookingRejected("slot_full")
		return domain.Appointment{}, ErrSlotFull
	}

	price, err := s.catalog.LookupPrice(ctx, serviceType)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("price lookup: %w", err)
	}

	appt := domain.Appointment{
		ClientName:    clientName,
		Date:          date,
		Time:          t,
		ServiceType:   serviceType,
		Location:      location,
		IsHomeService: in.IsHomeService,
		Status:        domain.StatusPending,
		Price:         price,
	}
	if err := appt.CheckInvariants(); err != nil {
		return domain.Appointment{}, err
	}

	created, err := s.repo.Insert(ctx, appt)
	if err != nil {
		return domain.Appointment{}, err
	}
	s.publish(ctx, events.AppointmentBooked, created)
	return created, nil
}

type UpdateStatusInput struct {
	ID            uuid.UUID
	Status        string
	PaymentMethod string
}

// UpdateStatus finalizes a pending appointment. Completion requires a payment
// method; cancellation must not carry one. Appointments that are already
// completed or cancelled are rejected with ErrAlreadyFinalized.
func (s *Service) UpdateStatus(ctx context.Context, in UpdateStatusInput) (domain.Appointment, error) {
	if in.ID == uuid.Nil {
		return domain.Appointment{}, validationError("appointment id is required")
	}
	status, err := domain.ParseStatus(in.Status)
	if err != nil || !status.IsTerminal() {
		return domain.Appointment{}, validationError("status must be completed or cancelled")
	}

	var payment *domain.PaymentMethod
	raw := strings.TrimSpace(in.PaymentMethod)
	switch status {
	case domain.StatusCompleted:
		if raw == "" {
			return domain.Appointment{}, validationError("payment method is required to complete an appointment")
		}
		pm, err := domain.ParsePaymentMethod(raw)
		if err != nil {
			return domain.Appointment{}, validationError("payment method must be Efectivo or Mercado Pago")
		}
		payment = &pm
	case domain.StatusCancelled:
		if raw != "" {
			return domain.Appointment{}, validationError("payment method is only accepted when completing")
		}
	}

	current, err := s.repo.Get(ctx, in.ID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if current.Status.IsTerminal() {
		return domain.Appointment{}, ErrAlreadyFinalized
	}

	updated, err := s.repo.UpdateStatus(ctx, in.ID, status, payment)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.Appointment{}, ErrAlreadyFinalized
		}
		return domain.Appointment{}, err
	}

	eventType := events.AppointmentCompleted
	if status == domain.StatusCancelled {
		eventType = events.AppointmentCancelled
	}
	s.publish(ctx, eventType, updated)
	return updated, nil
}

type ListInput struct {
	Status string
	From   string
	To     string
}

func (s *Service) List(ctx context.Context, in ListInput) ([]domain.Appointment, error) {
	var filter store.ListFilter
	if raw := strings.TrimSpace(in.Status); raw != "" {
		st, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, validationError("status must be pending, completed or cancelled")
		}
		filter.Status = &st
	}
	if strings.TrimSpace(in.From) != "" {
		d, err := parseDate(in.From)
		if err != nil {
			return nil, err
		}
		filter.From = &d
	}
	if strings.TrimSpace(in.To) != "" {
		d, err := parseDate(in.To)
		if err != nil {
			return nil, err
		}
		filter.To = &d
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, validationError("to must not be before from")
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, validationError("appointment id is required")
	}
	return s.repo.Get(ctx, id)
}

type SlotAvailability struct {
	Date      domain.Date
	Time      string
	Active    int
	Remaining int
	Available bool
}

// CheckSlot reports the occupancy of a single slot.
func (s *Service) CheckSlot(ctx context.Context, rawDate, rawTime string) (SlotAvailability, error) {
	date, err := parseDate(rawDate)
	if err != nil {
		return SlotAvailability{}, err
	}
	t := strings.TrimSpace(rawTime)
	if !domain.ValidTime(t) {
		return SlotAvailability{}, validationError("time must be a half-hour slot between 09:00 and 17:30")
	}
	n, err := s.checker.CountActive(ctx, date, t)
	if err != nil {
		return SlotAvailability{}, err
	}
	return s.slotAvailability(date, t, n), nil
}

// Availability reports the occupancy of every slot of a day, in slot order.
func (s *Service) Availability(ctx context.Context, rawDate string) ([]SlotAvailability, error) {
	date, err := parseDate(rawDate)
	if err != nil {
		return nil, err
	}
	day, err := s.repo.List(ctx, store.ListFilter{From: &date, To: &date})
	if err != nil {
		return nil, err
	}

	active := make(map[string]int, len(domain.TimeSlots))
	for _, a := range day {
		if a.Status != domain.StatusCancelled {
			active[a.Time]++
		}
	}

	out := make([]SlotAvailability, 0, len(domain.TimeSlots))
	for _, t := range domain.TimeSlots {
		out = append(out, s.slotAvailability(date, t, active[t]))
	}
	return out, nil
}

func (s *Service) slotAvailability(date domain.Date, t string, active int) SlotAvailability {
	remaining := s.checker.MaxPerSlot() - active
	if remaining < 0 {
		remaining = 0
	}
	return SlotAvailability{
		Date:      date,
		Time:      t,
		Active:    active,
		Remaining: remaining,
		Available: remaining > 0,
	}
}

func (s *Service) publish(ctx context.Context, eventType string, a domain.Appointment) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(ctx, eventType, a.ID.String(), EventPayload(a)); err != nil {
		s.logger.Warn("publish event failed", slog.String("event_type", eventType), slog.Any("err", err))
	}
}

// EventPayload converts an appointment into its event representation.
func EventPayload(a domain.Appointment) events.AppointmentPayload {
	p := events.AppointmentPayload{
		ID:            a.ID.String(),
		ClientName:    a.ClientName,
		Date:          a.Date.ISO(),
		Time:          a.Time,
		ServiceType:   a.ServiceType,
		Status:        string(a.Status),
		IsHomeService: a.IsHomeService,
	}
	if a.Price != nil {
		v := a.Price.String()
		p.Price = &v
	}
	if a.PaymentMethod != nil {
		v := string(*a.PaymentMethod)
		p.PaymentMethod = &v
	}
	return p
}

func parseDate(raw string) (domain.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Date{}, validationError("date is required")
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, validationError("date must be DD/MM/YYYY or YYYY-MM-DD")
	}
	return d, nil
}
