package calendar

import (
	"fmt"
	"strconv"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
)

// StackStyle describes how appointments sharing an hour cell are layered.
type StackStyle struct {
	CardHeightPx int
	OverlapPx    int
	IndentPx     int
}

func DefaultStackStyle() StackStyle {
	return StackStyle{CardHeightPx: 56, OverlapPx: 4, IndentPx: 8}
}

// Validate keeps every stacked card partly uncovered so it stays clickable.
func (s StackStyle) Validate() error {
	if s.CardHeightPx <= 0 {
		return fmt.Errorf("card height must be positive, got %d", s.CardHeightPx)
	}
	if s.OverlapPx < 0 || s.OverlapPx >= s.CardHeightPx {
		return fmt.Errorf("overlap must be in [0, %d), got %d", s.CardHeightPx, s.OverlapPx)
	}
	if s.IndentPx < 0 {
		return fmt.Errorf("indent must not be negative, got %d", s.IndentPx)
	}
	return nil
}

type Placement struct {
	Appointment domain.Appointment
	ZIndex      int
	// OffsetPx is pulled up into the previous card; IndentPx shifts right.
	OffsetPx int
	IndentPx int
	Shared   bool
	Marker   string
}

// Stack lays out one hour bucket. The first entry sits at z-index 1 with no
// offset; each later entry is raised one level, overlaps the card above by
// OverlapPx and carries a "+i" marker.
func (s StackStyle) Stack(bucket []domain.Appointment) []Placement {
	out := make([]Placement, 0, len(bucket))
	shared := len(bucket) > 1
	for i, a := range bucket {
		p := Placement{
			Appointment: a,
			ZIndex:      i + 1,
			Shared:      shared,
		}
		if i > 0 {
			p.OffsetPx = s.OverlapPx
			p.IndentPx = s.IndentPx
			p.Marker = "+" + strconv.Itoa(i)
		}
		out = append(out, p)
	}
	return out
}
