package calendar

import (
	"fmt"
	"strings"
)

type WidthClass string

const (
	VeryNarrow WidthClass = "very-narrow"
	Narrow     WidthClass = "narrow"
	Medium     WidthClass = "medium"
	Wide       WidthClass = "wide"
)

func ParseWidthClass(s string) (WidthClass, error) {
	c := WidthClass(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case VeryNarrow, Narrow, Medium, Wide:
		return c, nil
	}
	return "", fmt.Errorf("invalid width class %q", s)
}

// Breakpoints maps viewport widths (CSS px, inclusive upper bounds) to width
// classes and width classes to the number of days a week view shows. Wide
// viewports always show the full week.
type Breakpoints struct {
	VeryNarrowMaxPx int
	NarrowMaxPx     int
	MediumMaxPx     int

	VeryNarrowDays int
	NarrowDays     int
	MediumDays     int
}

func DefaultBreakpoints() Breakpoints {
	return Breakpoints{
		VeryNarrowMaxPx: 430,
		NarrowMaxPx:     639,
		MediumMaxPx:     767,
		VeryNarrowDays:  2,
		NarrowDays:      3,
		MediumDays:      4,
	}
}

func (b Breakpoints) Validate() error {
	if b.VeryNarrowMaxPx <= 0 || b.NarrowMaxPx <= b.VeryNarrowMaxPx || b.MediumMaxPx <= b.NarrowMaxPx {
		return fmt.Errorf("breakpoint widths must be positive and increasing: %d, %d, %d",
			b.VeryNarrowMaxPx, b.NarrowMaxPx, b.MediumMaxPx)
	}
	days := []int{b.VeryNarrowDays, b.NarrowDays, b.MediumDays, daysPerWeek}
	for i, d := range days {
		if d < 1 || d > daysPerWeek {
			return fmt.Errorf("breakpoint day counts must be between 1 and %d, got %d", daysPerWeek, d)
		}
		if i > 0 && d < days[i-1] {
			return fmt.Errorf("breakpoint day counts must not shrink as the viewport grows: %v", days)
		}
	}
	return nil
}

// Classify maps a viewport width to its class. Unknown widths (<= 0) are
// treated as wide.
func (b Breakpoints) Classify(widthPx int) WidthClass {
	switch {
	case widthPx <= 0:
		return Wide
	case widthPx <= b.VeryNarrowMaxPx:
		return VeryNarrow
	case widthPx <= b.NarrowMaxPx:
		return Narrow
	case widthPx <= b.MediumMaxPx:
		return Medium
	}
	return Wide
}

func (b Breakpoints) DaysToShow(c WidthClass) int {
	switch c {
	case VeryNarrow:
		return b.VeryNarrowDays
	case Narrow:
		return b.NarrowDays
	case Medium:
		return b.MediumDays
	}
	return daysPerWeek
}
