package appointments

import (
	"context"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
)

// SlotGuard serializes the check-then-insert sequence for one slot. Acquire
// returns a release func; an error means the booking must not proceed.
type SlotGuard interface {
	Acquire(ctx context.Context, slot domain.Slot) (func(context.Context) error, error)
}

// NoGuard leaves concurrent bookings of one slot unsynchronized. Two requests
// that pass the capacity check at the same moment can both insert.
type NoGuard struct{}

func (NoGuard) Acquire(ctx context.Context, slot domain.Slot) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
