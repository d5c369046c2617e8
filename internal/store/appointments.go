package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
)

// ListFilter narrows List results. Nil fields do not filter. From and To are inclusive.
type ListFilter struct {
	Status *domain.Status
	From   *domain.Date
	To     *domain.Date
}

// Match reports whether a passes the filter.
func (f ListFilter) Match(a domain.Appointment) bool {
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.From != nil && a.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && a.Date.After(*f.To) {
		return false
	}
	return true
}

// AppointmentRepository is the boundary to wherever appointments live. List
// returns appointments in the backend's source order, which callers keep.
type AppointmentRepository interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	Insert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	// UpdateStatus moves a pending appointment to a terminal status. It returns
	// ErrConflict when the appointment is already terminal. The payment method is
	// persisted only for completed appointments.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, payment *domain.PaymentMethod) (domain.Appointment, error)
	// CountForSlot counts the appointments of slot that are not cancelled.
	CountForSlot(ctx context.Context, slot domain.Slot) (int, error)
}
