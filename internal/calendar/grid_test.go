package calendar

import (
	"testing"
	"time"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
)

func TestModelBuild(t *testing.T) {
	m, err := NewModel(DefaultBreakpoints(), DefaultStackStyle())
	if err != nil {
		t.Fatalf("NewModel error: %v", err)
	}
	mon := domain.NewDate(2025, time.May, 5)
	appts := []domain.Appointment{
		appt(1, mon, "10:00"),
		appt(2, mon, "10:00"),
		appt(3, mon.AddDays(1), "15:30"),
		appt(4, mon.AddDays(9), "09:00"),
	}

	g := m.Build(appts, mon, ModeWeek, Wide)
	if len(g.Days) != 7 {
		t.Fatalf("len(days) = %d, want 7", len(g.Days))
	}
	if g.Previous != mon.AddDays(-7) || g.Next != mon.AddDays(7) {
		t.Fatalf("previous/next = %v/%v", g.Previous, g.Next)
	}
	if len(g.Days[0].Hours) != 1 || g.Days[0].Hours[0].Hour != 10 || len(g.Days[0].Hours[0].Entries) != 2 {
		t.Fatalf("monday = %+v", g.Days[0])
	}
	if g.Days[0].Hours[0].Entries[1].Marker != "+1" {
		t.Fatalf("second entry marker = %q", g.Days[0].Hours[0].Entries[1].Marker)
	}
	if len(g.Days[1].Hours) != 1 || g.Days[1].Hours[0].Hour != 15 {
		t.Fatalf("tuesday = %+v", g.Days[1])
	}

	narrow := m.Build(appts, mon.AddDays(1), ModeWeek, VeryNarrow)
	if len(narrow.Days) != 2 || narrow.Days[0].Date != mon.AddDays(1) {
		t.Fatalf("narrow days = %+v", narrow.Days)
	}

	empty := m.Build(nil, mon, ModeDay, Wide)
	if len(empty.Days) != 1 || len(empty.Days[0].Hours) != 0 {
		t.Fatalf("empty = %+v", empty)
	}
}

func TestNewModel_RejectsBadConfig(t *testing.T) {
	b := DefaultBreakpoints()
	b.MediumMaxPx = 10
	if _, err := NewModel(b, DefaultStackStyle()); err == nil {
		t.Fatalf("expected breakpoint error")
	}
	if _, err := NewModel(DefaultBreakpoints(), StackStyle{CardHeightPx: 10, OverlapPx: 12}); err == nil {
		t.Fatalf("expected style error")
	}
}
