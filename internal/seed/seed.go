package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/appointments"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

// File is the YAML seed document: the service catalog plus optional sample
// clients and appointments.
type File struct {
	Services     []ServiceEntry     `yaml:"services"`
	Clients      []ClientEntry      `yaml:"clients"`
	Appointments []AppointmentEntry `yaml:"appointments"`
}

type ServiceEntry struct {
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

type VehicleEntry struct {
	Make         string `yaml:"make"`
	Model        string `yaml:"model"`
	Year         string `yaml:"year"`
	LicensePlate string `yaml:"licensePlate"`
	Type         string `yaml:"type"`
	Color        string `yaml:"color"`
}

type ClientEntry struct {
	Name                   string         `yaml:"name"`
	Email                  string         `yaml:"email"`
	Phone                  string         `yaml:"phone"`
	PreferredContactMethod string         `yaml:"preferredContactMethod"`
	Notes                  string         `yaml:"notes"`
	LoyaltyPoints          int            `yaml:"loyaltyPoints"`
	LastServiceDate        string         `yaml:"lastServiceDate"`
	Vehicles               []VehicleEntry `yaml:"vehicles"`
}

type AppointmentEntry struct {
	ClientName    string `yaml:"clientName"`
	Date          string `yaml:"date"`
	Time          string `yaml:"time"`
	ServiceType   string `yaml:"serviceType"`
	Location      string `yaml:"location"`
	IsHomeService bool   `yaml:"isHomeService"`
	Status        string `yaml:"status"`
	PaymentMethod string `yaml:"paymentMethod"`
}

func Load(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return File{}, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

type Targets struct {
	Catalog      store.ServiceCatalog
	Clients      store.ClientRepository
	Appointments store.AppointmentRepository
	// MaxPerSlot caps seeded bookings per slot like live ones; below 1 means
	// the default.
	MaxPerSlot int
}

// Apply loads the seed into empty stores. Services already present by name
// are kept as they are; clients and appointments are only written when their
// store holds none yet, so restarting against a live database is harmless.
func Apply(ctx context.Context, f File, t Targets, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "seed"))

	created := 0
	for _, e := range f.Services {
		price, err := decimal.NewFromString(strings.TrimSpace(e.Price))
		if err != nil || !price.IsPositive() {
			return fmt.Errorf("service %q: price %q must be a positive number", e.Name, e.Price)
		}
		_, err = t.Catalog.CreateService(ctx, domain.Service{Name: strings.TrimSpace(e.Name), Price: price})
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("service %q: %w", e.Name, err)
		}
		created++
	}
	logger.Info("services seeded", slog.Int("created", created), slog.Int("listed", len(f.Services)))

	if len(f.Clients) > 0 {
		existing, err := t.Clients.ListClients(ctx)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			for _, e := range f.Clients {
				c, err := clientFromEntry(e)
				if err != nil {
					return err
				}
				if _, err := t.Clients.CreateClient(ctx, c); err != nil {
					return fmt.Errorf("client %q: %w", e.Name, err)
				}
			}
			logger.Info("clients seeded", slog.Int("created", len(f.Clients)))
		}
	}

	if len(f.Appointments) > 0 {
		existing, err := t.Appointments.List(ctx, store.ListFilter{})
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			checker := appointments.NewChecker(t.Appointments, t.MaxPerSlot)
			for i, e := range f.Appointments {
				a, err := appointmentFromEntry(ctx, e, t.Catalog)
				if err != nil {
					return fmt.Errorf("appointment %d: %w", i, err)
				}
				if a.Status != domain.StatusCancelled {
					ok, err := checker.CanBook(ctx, a.Date, a.Time)
					if err != nil {
						return fmt.Errorf("appointment %d: %w", i, err)
					}
					if !ok {
						return fmt.Errorf("appointment %d: slot %s %s already holds %d bookings",
							i, a.Date.Display(), a.Time, checker.MaxPerSlot())
					}
				}
				if _, err := t.Appointments.Insert(ctx, a); err != nil {
					return fmt.Errorf("appointment %d: %w", i, err)
				}
			}
			logger.Info("appointments seeded", slog.Int("created", len(f.Appointments)))
		}
	}
	return nil
}

func clientFromEntry(e ClientEntry) (domain.Client, error) {
	c := domain.Client{
		Name:          strings.TrimSpace(e.Name),
		Email:         e.Email,
		Phone:         e.Phone,
		Notes:         e.Notes,
		LoyaltyPoints: e.LoyaltyPoints,
	}
	if c.Name == "" {
		return domain.Client{}, fmt.Errorf("client name is required")
	}
	if e.PreferredContactMethod != "" {
		m, err := domain.ParseContactMethod(e.PreferredContactMethod)
		if err != nil {
			return domain.Client{}, fmt.Errorf("client %q: %w", c.Name, err)
		}
		c.PreferredContactMethod = m
	}
	if e.LastServiceDate != "" {
		d, err := domain.ParseDate(e.LastServiceDate)
		if err != nil {
			return domain.Client{}, fmt.Errorf("client %q: %w", c.Name, err)
		}
		c.LastServiceDate = &d
	}
	for _, v := range e.Vehicles {
		vt := domain.VehicleType("")
		if v.Type != "" {
			parsed, err := domain.ParseVehicleType(v.Type)
			if err != nil {
				return domain.Client{}, fmt.Errorf("client %q: %w", c.Name, err)
			}
			vt = parsed
		}
		c.Vehicles = append(c.Vehicles, domain.Vehicle{
			Make:         v.Make,
			Model:        v.Model,
			Year:         v.Year,
			LicensePlate: v.LicensePlate,
			Type:         vt,
			Color:        v.Color,
		})
	}
	return c, nil
}

func appointmentFromEntry(ctx context.Context, e AppointmentEntry, catalog store.ServiceCatalog) (domain.Appointment, error) {
	date, err := domain.ParseDate(e.Date)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !domain.ValidTime(e.Time) {
		return domain.Appointment{}, fmt.Errorf("time %q is not a bookable slot", e.Time)
	}
	status := domain.StatusPending
	if e.Status != "" {
		if status, err = domain.ParseStatus(e.Status); err != nil {
			return domain.Appointment{}, err
		}
	}

	a := domain.Appointment{
		ClientName:    e.ClientName,
		Date:          date,
		Time:          e.Time,
		ServiceType:   e.ServiceType,
		Location:      domain.WorkshopLocation,
		IsHomeService: e.IsHomeService,
		Status:        status,
	}
	if e.IsHomeService {
		a.Location = strings.TrimSpace(e.Location)
		if a.Location == "" {
			return domain.Appointment{}, fmt.Errorf("home service for %q needs an address", e.ClientName)
		}
	}
	if status == domain.StatusCompleted {
		pm, err := domain.ParsePaymentMethod(e.PaymentMethod)
		if err != nil {
			return domain.Appointment{}, err
		}
		a.PaymentMethod = &pm
	}
	if a.Price, err = catalog.LookupPrice(ctx, e.ServiceType); err != nil {
		return domain.Appointment{}, err
	}
	if err := a.CheckInvariants(); err != nil {
		return domain.Appointment{}, err
	}
	return a, nil
}
