package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is an entry of the service catalog.
type Service struct {
	ID        uuid.UUID
	Name      string
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ContactMethod string

const (
	ContactEmail    ContactMethod = "email"
	ContactPhone    ContactMethod = "phone"
	ContactWhatsApp ContactMethod = "whatsapp"
)

func ParseContactMethod(s string) (ContactMethod, error) {
	m := ContactMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ContactEmail, ContactPhone, ContactWhatsApp:
		return m, nil
	}
	return "", fmt.Errorf("invalid contact method %q", s)
}

type VehicleType string

const (
	VehicleSmall  VehicleType = "small"
	VehicleMedium VehicleType = "medium"
	VehicleLarge  VehicleType = "large"
	VehicleSUV    VehicleType = "suv"
	VehicleTruck  VehicleType = "truck"
)

func ParseVehicleType(s string) (VehicleType, error) {
	t := VehicleType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case VehicleSmall, VehicleMedium, VehicleLarge, VehicleSUV, VehicleTruck:
		return t, nil
	}
	return "", fmt.Errorf("invalid vehicle type %q", s)
}

type Vehicle struct {
	ID           uuid.UUID
	Make         string
	Model        string
	Year         string
	LicensePlate string
	Type         VehicleType
	Color        string
}

type Client struct {
	ID                     uuid.UUID
	Name                   string
	Email                  string
	Phone                  string
	PreferredContactMethod ContactMethod
	Vehicles               []Vehicle
	Notes                  string
	LoyaltyPoints          int
	LastServiceDate        *Date
}
