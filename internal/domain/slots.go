package domain

import (
	"strconv"
	"strings"
)

// TimeSlots lists the bookable slot labels of a working day.
var TimeSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"12:00", "12:30", "13:00", "13:30", "14:00", "14:30",
	"15:00", "15:30", "16:00", "16:30", "17:00", "17:30",
}

func ValidTime(t string) bool {
	for _, s := range TimeSlots {
		if s == t {
			return true
		}
	}
	return false
}

// HourOf parses the hour from the leading component of an "HH:MM" label.
func HourOf(t string) (int, bool) {
	head, _, _ := strings.Cut(strings.TrimSpace(t), ":")
	if head == "" {
		return 0, false
	}
	h, err := strconv.Atoi(head)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

// Slot identifies a bookable window. Two appointments share a slot when both
// the date and the exact time label match.
type Slot struct {
	Date Date
	Time string
}

func (s Slot) Key() string {
	return s.Date.ISO() + "T" + s.Time
}
