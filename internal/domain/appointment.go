package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkshopLocation is stored as the location of every service performed at the shop.
const WorkshopLocation = "Taller principal"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether s may move to next. Only pending appointments
// move, and only to a terminal status.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next.IsTerminal()
}

type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "Efectivo"
	PaymentMercadoPago PaymentMethod = "Mercado Pago"
)

var PaymentMethods = []PaymentMethod{PaymentCash, PaymentMercadoPago}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "efectivo", "cash":
		return PaymentCash, nil
	case "mercado pago", "mercadopago", "mercado_pago", "electronic", "electronic-payment":
		return PaymentMercadoPago, nil
	}
	return "", fmt.Errorf("invalid payment method %q", s)
}

type Appointment struct {
	ID            uuid.UUID
	ClientName    string
	Date          Date
	Time          string
	ServiceType   string
	Location      string
	IsHomeService bool
	Status        Status
	Price         *decimal.Decimal
	PaymentMethod *PaymentMethod
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (a Appointment) Slot() Slot {
	return Slot{Date: a.Date, Time: a.Time}
}

// CheckInvariants verifies the cross-field rules every stored appointment obeys.
func (a Appointment) CheckInvariants() error {
	if !a.Status.Valid() {
		return fmt.Errorf("invalid status %q", a.Status)
	}
	if (a.Status == StatusCompleted) != (a.PaymentMethod != nil) {
		return fmt.Errorf("payment method must be set exactly when status is %s", StatusCompleted)
	}
	if !a.IsHomeService && a.Location != WorkshopLocation {
		return fmt.Errorf("workshop appointments must use location %q", WorkshopLocation)
	}
	return nil
}
