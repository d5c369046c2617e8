package calendar

import (
	"sort"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
)

// UnknownHour keys appointments whose time label has no parsable hour.
const UnknownHour = -1

type DayBucket struct {
	Date         domain.Date
	Appointments []domain.Appointment
}

type HourBucket struct {
	Hour         int
	Appointments []domain.Appointment
}

// BucketByDay returns one bucket per day, in the order given. Each
// appointment lands in the bucket of its calendar date; appointments outside
// days are dropped. Source order is kept within a bucket.
func BucketByDay(appts []domain.Appointment, days []domain.Date) []DayBucket {
	out := make([]DayBucket, 0, len(days))
	index := make(map[domain.Date]int, len(days))
	for _, d := range days {
		if _, dup := index[d]; dup {
			continue
		}
		index[d] = len(out)
		out = append(out, DayBucket{Date: d})
	}
	for _, a := range appts {
		i, ok := index[a.Date]
		if !ok {
			continue
		}
		out[i].Appointments = append(out[i].Appointments, a)
	}
	return out
}

// BucketByHour groups a day's appointments by the hour of their time label.
// Buckets are ordered by hour with UnknownHour last; entries keep source
// order and are not re-sorted by minute.
func BucketByHour(appts []domain.Appointment) []HourBucket {
	var out []HourBucket
	index := make(map[int]int)
	for _, a := range appts {
		h, ok := domain.HourOf(a.Time)
		if !ok {
			h = UnknownHour
		}
		i, seen := index[h]
		if !seen {
			i = len(out)
			index[h] = i
			out = append(out, HourBucket{Hour: h})
		}
		out[i].Appointments = append(out[i].Appointments, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		hi, hj := out[i].Hour, out[j].Hour
		if hi == UnknownHour || hj == UnknownHour {
			return hj == UnknownHour && hi != UnknownHour
		}
		return hi < hj
	})
	return out
}
