package accounting

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

type ServiceCount struct {
	ServiceType string
	Count       int
}

type Stats struct {
	Total     int
	Completed int
	Cancelled int
	Pending   int
	// CompletionRate is a percentage in [0, 100].
	CompletionRate   float64
	HomeServices     int
	WorkshopServices int
	ServiceTypes     []ServiceCount
}

type PaymentTotals struct {
	Cash        decimal.Decimal
	MercadoPago decimal.Decimal
}

type MonthRevenue struct {
	Year    int
	Month   int
	Revenue decimal.Decimal
}

// Key renders the month as MM/YYYY.
func (m MonthRevenue) Key() string {
	return fmt.Sprintf("%02d/%04d", m.Month, m.Year)
}

type Summary struct {
	Stats          Stats
	Payments       PaymentTotals
	RevenueByMonth []MonthRevenue
	TotalRevenue   decimal.Decimal
	Completed      []domain.Appointment
}

func ComputeStats(appts []domain.Appointment) Stats {
	s := Stats{Total: len(appts)}
	counts := map[string]int{}
	for _, a := range appts {
		switch a.Status {
		case domain.StatusCompleted:
			s.Completed++
		case domain.StatusCancelled:
			s.Cancelled++
		case domain.StatusPending:
			s.Pending++
		}
		if a.IsHomeService {
			s.HomeServices++
		} else {
			s.WorkshopServices++
		}
		counts[a.ServiceType]++
	}
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total) * 100
	}

	for name, n := range counts {
		s.ServiceTypes = append(s.ServiceTypes, ServiceCount{ServiceType: name, Count: n})
	}
	sort.Slice(s.ServiceTypes, func(i, j int) bool {
		if s.ServiceTypes[i].Count != s.ServiceTypes[j].Count {
			return s.ServiceTypes[i].Count > s.ServiceTypes[j].Count
		}
		return s.ServiceTypes[i].ServiceType < s.ServiceTypes[j].ServiceType
	})
	return s
}

// Completed keeps the completed appointments in source order.
func Completed(appts []domain.Appointment) []domain.Appointment {
	var out []domain.Appointment
	for _, a := range appts {
		if a.Status == domain.StatusCompleted {
			out = append(out, a)
		}
	}
	return out
}

func price(a domain.Appointment) decimal.Decimal {
	if a.Price == nil {
		return decimal.Zero
	}
	return *a.Price
}

// ComputePaymentTotals sums completed revenue per payment method.
func ComputePaymentTotals(appts []domain.Appointment) PaymentTotals {
	t := PaymentTotals{Cash: decimal.Zero, MercadoPago: decimal.Zero}
	for _, a := range Completed(appts) {
		if a.PaymentMethod == nil {
			continue
		}
		switch *a.PaymentMethod {
		case domain.PaymentCash:
			t.Cash = t.Cash.Add(price(a))
		case domain.PaymentMercadoPago:
			t.MercadoPago = t.MercadoPago.Add(price(a))
		}
	}
	return t
}

// ComputeRevenueByMonth sums completed revenue per calendar month, oldest first.
// Unpriced appointments count as zero.
func ComputeRevenueByMonth(appts []domain.Appointment) []MonthRevenue {
	type key struct{ year, month int }
	sums := map[key]decimal.Decimal{}
	for _, a := range Completed(appts) {
		k := key{year: a.Date.Year, month: int(a.Date.Month)}
		cur, ok := sums[k]
		if !ok {
			cur = decimal.Zero
		}
		sums[k] = cur.Add(price(a))
	}

	out := make([]MonthRevenue, 0, len(sums))
	for k, v := range sums {
		out = append(out, MonthRevenue{Year: k.year, Month: k.month, Revenue: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

func ComputeTotalRevenue(appts []domain.Appointment) decimal.Decimal {
	total := decimal.Zero
	for _, a := range Completed(appts) {
		total = total.Add(price(a))
	}
	return total
}

type Service struct {
	repo store.AppointmentRepository
}

func NewService(repo store.AppointmentRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	appts, err := s.repo.List(ctx, store.ListFilter{})
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Stats:          ComputeStats(appts),
		Payments:       ComputePaymentTotals(appts),
		RevenueByMonth: ComputeRevenueByMonth(appts),
		TotalRevenue:   ComputeTotalRevenue(appts),
		Completed:      Completed(appts),
	}, nil
}
