package clients

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
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

type Service struct {
	repo store.ClientRepository
}

func NewService(repo store.ClientRepository) *Service {
	return &Service{repo: repo}
}

// List returns every client, or those whose name contains query
// (case-insensitive) when query is not blank.
func (s *Service) List(ctx context.Context, query string) ([]domain.Client, error) {
	if strings.TrimSpace(query) == "" {
		return s.repo.ListClients(ctx)
	}
	return s.repo.SearchClients(ctx, query)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Client, error) {
	if id == uuid.Nil {
		return domain.Client{}, validationError("client id is required")
	}
	return s.repo.GetClient(ctx, id)
}

type VehicleInput struct {
	Make         string
	Model        string
	Year         string
	LicensePlate string
	Type         string
	Color        string
}

type CreateInput struct {
	Name                   string
	Email                  string
	Phone                  string
	PreferredContactMethod string
	Notes                  string
	Vehicles               []VehicleInput
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Client{}, validationError("client name is required")
	}
	c := domain.Client{
		Name:  name,
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
		Notes: strings.TrimSpace(in.Notes),
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return domain.Client{}, validationError("email is not valid")
	}

	method := strings.TrimSpace(in.PreferredContactMethod)
	switch {
	case method != "":
		m, err := domain.ParseContactMethod(method)
		if err != nil {
			return domain.Client{}, validationError("preferred contact method must be email, phone or whatsapp")
		}
		c.PreferredContactMethod = m
	case c.Phone != "":
		c.PreferredContactMethod = domain.ContactPhone
	case c.Email != "":
		c.PreferredContactMethod = domain.ContactEmail
	}

	for _, vi := range in.Vehicles {
		v, err := vehicleFromInput(vi)
		if err != nil {
			return domain.Client{}, err
		}
		c.Vehicles = append(c.Vehicles, v)
	}
	return s.repo.CreateClient(ctx, c)
}

func (s *Service) AddVehicle(ctx context.Context, clientID uuid.UUID, in VehicleInput) (domain.Client, error) {
	if clientID == uuid.Nil {
		return domain.Client{}, validationError("client id is required")
	}
	v, err := vehicleFromInput(in)
	if err != nil {
		return domain.Client{}, err
	}
	return s.repo.AddVehicle(ctx, clientID, v)
}

func (s *Service) AddLoyaltyPoints(ctx context.Context, clientID uuid.UUID, points int) (domain.Client, error) {
	if clientID == uuid.Nil {
		return domain.Client{}, validationError("client id is required")
	}
	if points <= 0 {
		return domain.Client{}, validationError("points must be positive")
	}
	return s.repo.AddLoyaltyPoints(ctx, clientID, points)
}

func (s *Service) SetLastServiceDate(ctx context.Context, clientID uuid.UUID, rawDate string) (domain.Client, error) {
	if clientID == uuid.Nil {
		return domain.Client{}, validationError("client id is required")
	}
	d, err := domain.ParseDate(strings.TrimSpace(rawDate))
	if err != nil {
		return domain.Client{}, validationError("date must be DD/MM/YYYY or YYYY-MM-DD")
	}
	return s.repo.SetLastServiceDate(ctx, clientID, d)
}

func vehicleFromInput(in VehicleInput) (domain.Vehicle, error) {
	v := domain.Vehicle{
		Make:         strings.TrimSpace(in.Make),
		Model:        strings.TrimSpace(in.Model),
		Year:         strings.TrimSpace(in.Year),
		LicensePlate: strings.ToUpper(strings.TrimSpace(in.LicensePlate)),
		Color:        strings.TrimSpace(in.Color),
	}
	if v.Make == "" || v.Model == "" {
		return domain.Vehicle{}, validationError("vehicle make and model are required")
	}
	if strings.TrimSpace(in.Type) != "" {
		t, err := domain.ParseVehicleType(in.Type)
		if err != nil {
			return domain.Vehicle{}, validationError("vehicle type must be small, medium, large, suv or truck")
		}
		v.Type = t
	}
	return v, nil
}
