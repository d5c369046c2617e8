package calendar

import (
	"fmt"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
)

type Model struct {
	breakpoints Breakpoints
	style       StackStyle
}

func NewModel(b Breakpoints, s StackStyle) (*Model, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("calendar breakpoints: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("calendar stack style: %w", err)
	}
	return &Model{breakpoints: b, style: s}, nil
}

func (m *Model) Breakpoints() Breakpoints {
	return m.breakpoints
}

type Grid struct {
	Mode     Mode
	Class    WidthClass
	Anchor   domain.Date
	Previous domain.Date
	Next     domain.Date
	Days     []DayColumn
}

type DayColumn struct {
	Date  domain.Date
	Hours []HourRow
}

type HourRow struct {
	Hour    int
	Entries []Placement
}

// Build renders the view anchored at anchor. A nil appointment list renders
// the empty grid.
func (m *Model) Build(appts []domain.Appointment, anchor domain.Date, mode Mode, class WidthClass) Grid {
	b := m.breakpoints
	g := Grid{
		Mode:     mode,
		Class:    class,
		Anchor:   anchor,
		Previous: b.Previous(anchor, mode, class),
		Next:     b.Next(anchor, mode, class),
	}

	days := b.VisibleDays(anchor, mode, class)
	for _, day := range BucketByDay(appts, days) {
		col := DayColumn{Date: day.Date}
		for _, hour := range BucketByHour(day.Appointments) {
			col.Hours = append(col.Hours, HourRow{
				Hour:    hour.Hour,
				Entries: m.style.Stack(hour.Appointments),
			})
		}
		g.Days = append(g.Days, col)
	}
	return g
}
