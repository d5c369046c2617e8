package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type appointmentRow struct {
	bun.BaseModel `bun:"table:appointments"`

	ID            uuid.UUID           `bun:"id,pk,type:uuid"`
	ClientName    string              `bun:"client_name,notnull"`
	Date          string              `bun:"date,notnull,type:date"`
	Time          string              `bun:"time,notnull"`
	ServiceType   string              `bun:"service_type,notnull"`
	Location      string              `bun:"location,notnull"`
	IsHomeService bool                `bun:"is_home_service,notnull"`
	Status        string              `bun:"status,notnull"`
	Price         decimal.NullDecimal `bun:"price,type:numeric(12,2)"`
	PaymentMethod *string             `bun:"payment_method"`
	CreatedAt     time.Time           `bun:"created_at,notnull"`
	UpdatedAt     time.Time           `bun:"updated_at,notnull"`
}

func (a *appointmentRow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

type serviceRow struct {
	bun.BaseModel `bun:"table:services"`

	ID        uuid.UUID       `bun:"id,pk,type:uuid"`
	Name      string          `bun:"name,notnull,unique"`
	Price     decimal.Decimal `bun:"price,notnull,type:numeric(12,2)"`
	CreatedAt time.Time       `bun:"created_at,notnull"`
	UpdatedAt time.Time       `bun:"updated_at,notnull"`
}

func (s *serviceRow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			s.ID = id
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}

type clientRow struct {
	bun.BaseModel `bun:"table:clients"`

	ID                     uuid.UUID    `bun:"id,pk,type:uuid"`
	Name                   string       `bun:"name,notnull"`
	Email                  string       `bun:"email"`
	Phone                  string       `bun:"phone"`
	PreferredContactMethod string       `bun:"preferred_contact_method"`
	Notes                  string       `bun:"notes"`
	LoyaltyPoints          int          `bun:"loyalty_points,notnull"`
	LastServiceDate        *string      `bun:"last_service_date,type:date"`
	Vehicles               []vehicleRow `bun:"rel:has-many,join:id=client_id"`
}

func (c *clientRow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && c.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		c.ID = id
	}
	return nil
}

type vehicleRow struct {
	bun.BaseModel `bun:"table:vehicles"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	ClientID     uuid.UUID `bun:"client_id,notnull,type:uuid"`
	Make         string    `bun:"make"`
	Model        string    `bun:"model"`
	Year         string    `bun:"year"`
	LicensePlate string    `bun:"license_plate"`
	Type         string    `bun:"type"`
	Color        string    `bun:"color"`
}

func (v *vehicleRow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && v.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		v.ID = id
	}
	return nil
}
