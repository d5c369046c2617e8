package calendar

import (
	"fmt"
	"strings"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
)

const daysPerWeek = 7

type Mode string

const (
	ModeDay      Mode = "day"
	ModeWeek     Mode = "week"
	ModeFullWeek Mode = "fullWeek"
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day":
		return ModeDay, nil
	case "week":
		return ModeWeek, nil
	case "fullweek", "full-week", "full_week":
		return ModeFullWeek, nil
	}
	return "", fmt.Errorf("invalid view mode %q", s)
}

// Span is the number of days the view shows and the step of Next/Previous.
func (b Breakpoints) Span(mode Mode, class WidthClass) int {
	switch mode {
	case ModeDay:
		return 1
	case ModeWeek:
		return b.DaysToShow(class)
	}
	return daysPerWeek
}

func (b Breakpoints) truncated(mode Mode, class WidthClass) bool {
	return mode == ModeWeek && b.DaysToShow(class) < daysPerWeek
}

// VisibleDays lists the dates a view anchored at selected renders. Full-week
// views start on the Monday of selected's week. Truncated week views start at
// selected itself, which Snap and Next/Previous keep on the window grid.
func (b Breakpoints) VisibleDays(selected domain.Date, mode Mode, class WidthClass) []domain.Date {
	if selected.IsZero() {
		return nil
	}
	n := b.Span(mode, class)
	start := selected
	if mode != ModeDay && !b.truncated(mode, class) {
		start = selected.Monday()
	}

	days := make([]domain.Date, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, start.AddDays(i))
	}
	return days
}

// Snap returns the anchor of the window containing date when a view is
// entered: the date itself for day views, its Monday for full weeks and, for
// truncated weeks, the window of the Monday-aligned tiling that holds it.
func (b Breakpoints) Snap(date domain.Date, mode Mode, class WidthClass) domain.Date {
	switch {
	case mode == ModeDay:
		return date
	case b.truncated(mode, class):
		n := b.DaysToShow(class)
		monday := date.Monday()
		offset := date.DaysSince(monday)
		return monday.AddDays((offset / n) * n)
	}
	return date.Monday()
}

// Next advances the anchor by one window. Truncated windows keep tiling
// across the week boundary, so the following week is entered at whatever
// offset the tiling reaches.
func (b Breakpoints) Next(anchor domain.Date, mode Mode, class WidthClass) domain.Date {
	return anchor.AddDays(b.Span(mode, class))
}

func (b Breakpoints) Previous(anchor domain.Date, mode Mode, class WidthClass) domain.Date {
	return anchor.AddDays(-b.Span(mode, class))
}
