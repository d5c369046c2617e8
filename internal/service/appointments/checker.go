package appointments

import (
	"context"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
)

// DefaultMaxPerSlot models the two service bays.
const DefaultMaxPerSlot = 2

type slotCounter interface {
	CountForSlot(ctx context.Context, slot domain.Slot) (int, error)
}

// Checker decides whether a slot still accepts bookings. Store failures are
// returned to the caller and never read as an empty slot.
type Checker struct {
	counter    slotCounter
	maxPerSlot int
}

func NewChecker(counter slotCounter, maxPerSlot int) *Checker {
	if maxPerSlot < 1 {
		maxPerSlot = DefaultMaxPerSlot
	}
	return &Checker{counter: counter, maxPerSlot: maxPerSlot}
}

func (c *Checker) MaxPerSlot() int {
	return c.maxPerSlot
}

// CountActive returns the number of non-cancelled appointments in the slot.
func (c *Checker) CountActive(ctx context.Context, date domain.Date, t string) (int, error) {
	return c.counter.CountForSlot(ctx, domain.Slot{Date: date, Time: t})
}

func (c *Checker) CanBook(ctx context.Context, date domain.Date, t string) (bool, error) {
	n, err := c.CountActive(ctx, date, t)
	if err != nil {
		return false, err
	}
	return n < c.maxPerSlot, nil
}
