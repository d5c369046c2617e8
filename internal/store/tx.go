package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
)

// AppointmentTx is the subset of appointment operations available inside a
// single store transaction.
type AppointmentTx interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	SetAppointmentStatus(ctx context.Context, id uuid.UUID, status domain.Status, payment *domain.PaymentMethod) (domain.Appointment, error)
}
