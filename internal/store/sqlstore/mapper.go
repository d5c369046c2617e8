package sqlstore

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
)

// Rows carry snake_case columns and ISO dates; domain values carry civil dates.
// Every conversion between the two goes through the functions below.

func appointmentFromRow(r appointmentRow) (domain.Appointment, error) {
	date, err := dateFromColumn(r.Date)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("appointment %s: %w", r.ID, err)
	}
	status, err := domain.ParseStatus(r.Status)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("appointment %s: %w", r.ID, err)
	}

	a := domain.Appointment{
		ID:            r.ID,
		ClientName:    r.ClientName,
		Date:          date,
		Time:          r.Time,
		ServiceType:   r.ServiceType,
		Location:      r.Location,
		IsHomeService: r.IsHomeService,
		Status:        status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Price.Valid {
		p := r.Price.Decimal
		a.Price = &p
	}
	if r.PaymentMethod != nil && status == domain.StatusCompleted {
		pm, err := domain.ParsePaymentMethod(*r.PaymentMethod)
		if err != nil {
			return domain.Appointment{}, fmt.Errorf("appointment %s: %w", r.ID, err)
		}
		a.PaymentMethod = &pm
	}
	return a, nil
}

func appointmentToRow(a domain.Appointment) appointmentRow {
	r := appointmentRow{
		ID:            a.ID,
		ClientName:    a.ClientName,
		Date:          a.Date.ISO(),
		Time:          a.Time,
		ServiceType:   a.ServiceType,
		Location:      a.Location,
		IsHomeService: a.IsHomeService,
		Status:        string(a.Status),
		PaymentMethod: paymentColumn(a.Status, a.PaymentMethod),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if a.Price != nil {
		r.Price = decimal.NewNullDecimal(*a.Price)
	}
	return r
}

// paymentColumn keeps payment_method NULL for anything but completed rows.
func paymentColumn(status domain.Status, pm *domain.PaymentMethod) *string {
	if status != domain.StatusCompleted || pm == nil {
		return nil
	}
	s := string(*pm)
	return &s
}

func serviceFromRow(r serviceRow) domain.Service {
	return domain.Service{
		ID:        r.ID,
		Name:      r.Name,
		Price:     r.Price,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func serviceToRow(s domain.Service) serviceRow {
	return serviceRow{
		ID:        s.ID,
		Name:      s.Name,
		Price:     s.Price,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func clientFromRow(r clientRow) (domain.Client, error) {
	c := domain.Client{
		ID:                     r.ID,
		Name:                   r.Name,
		Email:                  r.Email,
		Phone:                  r.Phone,
		PreferredContactMethod: domain.ContactMethod(r.PreferredContactMethod),
		Notes:                  r.Notes,
		LoyaltyPoints:          r.LoyaltyPoints,
	}
	if r.LastServiceDate != nil && *r.LastServiceDate != "" {
		d, err := dateFromColumn(*r.LastServiceDate)
		if err != nil {
			return domain.Client{}, fmt.Errorf("client %s: %w", r.ID, err)
		}
		c.LastServiceDate = &d
	}
	for _, v := range r.Vehicles {
		c.Vehicles = append(c.Vehicles, vehicleFromRow(v))
	}
	return c, nil
}

func clientToRow(c domain.Client) clientRow {
	r := clientRow{
		ID:                     c.ID,
		Name:                   c.Name,
		Email:                  c.Email,
		Phone:                  c.Phone,
		PreferredContactMethod: string(c.PreferredContactMethod),
		Notes:                  c.Notes,
		LoyaltyPoints:          c.LoyaltyPoints,
	}
	if c.LastServiceDate != nil {
		s := c.LastServiceDate.ISO()
		r.LastServiceDate = &s
	}
	for _, v := range c.Vehicles {
		r.Vehicles = append(r.Vehicles, vehicleToRow(c.ID, v))
	}
	return r
}

func vehicleFromRow(r vehicleRow) domain.Vehicle {
	return domain.Vehicle{
		ID:           r.ID,
		Make:         r.Make,
		Model:        r.Model,
		Year:         r.Year,
		LicensePlate: r.LicensePlate,
		Type:         domain.VehicleType(r.Type),
		Color:        r.Color,
	}
}

func vehicleToRow(clientID uuid.UUID, v domain.Vehicle) vehicleRow {
	return vehicleRow{
		ID:           v.ID,
		ClientID:     clientID,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		LicensePlate: v.LicensePlate,
		Type:         string(v.Type),
		Color:        v.Color,
	}
}

// dateFromColumn accepts the date either as ISO text or as a timestamp
// rendering of midnight, which is what some drivers hand back for DATE columns.
func dateFromColumn(s string) (domain.Date, error) {
	if len(s) > len(domain.ISODateLayout) {
		s = s[:len(domain.ISODateLayout)]
	}
	return domain.ParseISODate(s)
}
