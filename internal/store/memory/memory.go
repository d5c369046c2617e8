// Package memory keeps appointments, the service catalog and clients in process
// memory. Records are returned in insertion order.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

type Store struct {
	mu           sync.RWMutex
	appointments []domain.Appointment
	services     []domain.Service
	clients      []domain.Client
	now          func() time.Time
}

func New() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) List(ctx context.Context, filter store.ListFilter) ([]domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		if filter.Match(a) {
			out = append(out, cloneAppointment(a))
		}
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOfAppointment(id)
	if i < 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return cloneAppointment(s.appointments[i]), nil
}

func (s *Store) Insert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if appt.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Appointment{}, err
		}
		appt.ID = id
	} else if s.indexOfAppointment(appt.ID) >= 0 {
		return domain.Appointment{}, store.ErrConflict
	}
	now := s.now()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now

	s.appointments = append(s.appointments, cloneAppointment(appt))
	return cloneAppointment(appt), nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, payment *domain.PaymentMethod) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfAppointment(id)
	if i < 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	a := s.appointments[i]
	if !a.Status.CanTransitionTo(status) {
		return domain.Appointment{}, store.ErrConflict
	}

	a.Status = status
	a.PaymentMethod = nil
	if status == domain.StatusCompleted && payment != nil {
		pm := *payment
		a.PaymentMethod = &pm
	}
	a.UpdatedAt = s.now()
	s.appointments[i] = a
	return cloneAppointment(a), nil
}

func (s *Store) CountForSlot(ctx context.Context, slot domain.Slot) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, a := range s.appointments {
		if a.Date == slot.Date && a.Time == slot.Time && a.Status != domain.StatusCancelled {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListServices(ctx context.Context) ([]domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]domain.Service(nil), s.services...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) LookupPrice(ctx context.Context, serviceName string) (*decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, svc := range s.services {
		if svc.Name == serviceName {
			p := svc.Price
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateService(ctx context.Context, svc domain.Service) (domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.services {
		if existing.Name == svc.Name {
			return domain.Service{}, store.ErrConflict
		}
	}
	if svc.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Service{}, err
		}
		svc.ID = id
	}
	now := s.now()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	s.services = append(s.services, svc)
	return svc, nil
}

func (s *Store) UpdateServicePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.services {
		if s.services[i].ID == id {
			s.services[i].Price = price
			s.services[i].UpdatedAt = s.now()
			return s.services[i], nil
		}
	}
	return domain.Service{}, store.ErrNotFound
}

func (s *Store) ListClients(ctx context.Context) ([]domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, cloneClient(c))
	}
	return out, nil
}

func (s *Store) SearchClients(ctx context.Context, name string) ([]domain.Client, error) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return s.ListClients(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Client
	for _, c := range s.clients {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, cloneClient(c))
		}
	}
	return out, nil
}

func (s *Store) GetClient(ctx context.Context, id uuid.UUID) (domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOfClient(id)
	if i < 0 {
		return domain.Client{}, store.ErrNotFound
	}
	return cloneClient(s.clients[i]), nil
}

func (s *Store) CreateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Client{}, err
		}
		c.ID = id
	}
	for i := range c.Vehicles {
		if c.Vehicles[i].ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return domain.Client{}, err
			}
			c.Vehicles[i].ID = id
		}
	}
	s.clients = append(s.clients, cloneClient(c))
	return cloneClient(c), nil
}

func (s *Store) AddVehicle(ctx context.Context, clientID uuid.UUID, v domain.Vehicle) (domain.Client, error) {
	return s.mutateClient(clientID, func(c *domain.Client) error {
		if v.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			v.ID = id
		}
		c.Vehicles = append(c.Vehicles, v)
		return nil
	})
}

func (s *Store) AddLoyaltyPoints(ctx context.Context, clientID uuid.UUID, points int) (domain.Client, error) {
	return s.mutateClient(clientID, func(c *domain.Client) error {
		c.LoyaltyPoints += points
		return nil
	})
}

func (s *Store) SetLastServiceDate(ctx context.Context, clientID uuid.UUID, date domain.Date) (domain.Client, error) {
	return s.mutateClient(clientID, func(c *domain.Client) error {
		d := date
		c.LastServiceDate = &d
		return nil
	})
}

func (s *Store) mutateClient(id uuid.UUID, fn func(c *domain.Client) error) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfClient(id)
	if i < 0 {
		return domain.Client{}, store.ErrNotFound
	}
	c := cloneClient(s.clients[i])
	if err := fn(&c); err != nil {
		return domain.Client{}, err
	}
	s.clients[i] = c
	return cloneClient(c), nil
}

func (s *Store) indexOfAppointment(id uuid.UUID) int {
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfClient(id uuid.UUID) int {
	for i := range s.clients {
		if s.clients[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAppointment(a domain.Appointment) domain.Appointment {
	if a.Price != nil {
		p := *a.Price
		a.Price = &p
	}
	if a.PaymentMethod != nil {
		pm := *a.PaymentMethod
		a.PaymentMethod = &pm
	}
	return a
}

func cloneClient(c domain.Client) domain.Client {
	c.Vehicles = append([]domain.Vehicle(nil), c.Vehicles...)
	if c.LastServiceDate != nil {
		d := *c.LastServiceDate
		c.LastServiceDate = &d
	}
	return c
}

var (
	_ store.AppointmentRepository = (*Store)(nil)
	_ store.ServiceCatalog        = (*Store)(nil)
	_ store.ClientRepository      = (*Store)(nil)
)
