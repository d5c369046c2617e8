package httpapi

import (
	"github.com/ignajaliff/sheen-schedule-clean/internal/calendar"
	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/accounting"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/appointments"
)

// Wire shapes use camelCase keys and DD/MM/YYYY dates.

type appointmentDTO struct {
	ID            string  `json:"id"`
	ClientName    string  `json:"clientName"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	ServiceType   string  `json:"serviceType"`
	Location      string  `json:"location"`
	IsHomeService bool    `json:"isHomeService"`
	Status        string  `json:"status"`
	Price         *string `json:"price"`
	PaymentMethod *string `json:"paymentMethod"`
	CreatedAt     string  `json:"createdAt"`
}

func toAppointmentDTO(a domain.Appointment) appointmentDTO {
	out := appointmentDTO{
		ID:            a.ID.String(),
		ClientName:    a.ClientName,
		Date:          a.Date.Display(),
		Time:          a.Time,
		ServiceType:   a.ServiceType,
		Location:      a.Location,
		IsHomeService: a.IsHomeService,
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if a.Price != nil {
		v := a.Price.String()
		out.Price = &v
	}
	if a.PaymentMethod != nil {
		v := string(*a.PaymentMethod)
		out.PaymentMethod = &v
	}
	return out
}

func toAppointmentDTOs(appts []domain.Appointment) []appointmentDTO {
	out := make([]appointmentDTO, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentDTO(a))
	}
	return out
}

type bookRequest struct {
	ClientName    string `json:"clientName"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	ServiceType   string `json:"serviceType"`
	Location      string `json:"location"`
	IsHomeService bool   `json:"isHomeService"`
}

type statusRequest struct {
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod"`
}

type slotDTO struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Active    int    `json:"active"`
	Remaining int    `json:"remaining"`
	Available bool   `json:"available"`
}

func toSlotDTO(s appointments.SlotAvailability) slotDTO {
	return slotDTO{
		Date:      s.Date.Display(),
		Time:      s.Time,
		Active:    s.Active,
		Remaining: s.Remaining,
		Available: s.Available,
	}
}

type serviceDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

func toServiceDTO(s domain.Service) serviceDTO {
	return serviceDTO{ID: s.ID.String(), Name: s.Name, Price: s.Price.String()}
}

type createServiceRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type priceRequest struct {
	Price string `json:"price"`
}

type vehicleDTO struct {
	ID           string `json:"id,omitempty"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         string `json:"year"`
	LicensePlate string `json:"licensePlate"`
	Type         string `json:"type"`
	Color        string `json:"color"`
}

type clientDTO struct {
	ID                     string       `json:"id"`
	Name                   string       `json:"name"`
	Email                  string       `json:"email"`
	Phone                  string       `json:"phone"`
	PreferredContactMethod string       `json:"preferredContactMethod"`
	Vehicles               []vehicleDTO `json:"vehicles"`
	Notes                  string       `json:"notes"`
	LoyaltyPoints          int          `json:"loyaltyPoints"`
	LastServiceDate        *string      `json:"lastServiceDate"`
}

func toClientDTO(c domain.Client) clientDTO {
	out := clientDTO{
		ID:                     c.ID.String(),
		Name:                   c.Name,
		Email:                  c.Email,
		Phone:                  c.Phone,
		PreferredContactMethod: string(c.PreferredContactMethod),
		Vehicles:               make([]vehicleDTO, 0, len(c.Vehicles)),
		Notes:                  c.Notes,
		LoyaltyPoints:          c.LoyaltyPoints,
	}
	for _, v := range c.Vehicles {
		out.Vehicles = append(out.Vehicles, vehicleDTO{
			ID:           v.ID.String(),
			Make:         v.Make,
			Model:        v.Model,
			Year:         v.Year,
			LicensePlate: v.LicensePlate,
			Type:         string(v.Type),
			Color:        v.Color,
		})
	}
	if c.LastServiceDate != nil {
		d := c.LastServiceDate.Display()
		out.LastServiceDate = &d
	}
	return out
}

type createClientRequest struct {
	Name                   string       `json:"name"`
	Email                  string       `json:"email"`
	Phone                  string       `json:"phone"`
	PreferredContactMethod string       `json:"preferredContactMethod"`
	Notes                  string       `json:"notes"`
	Vehicles               []vehicleDTO `json:"vehicles"`
}

type loyaltyRequest struct {
	Points int `json:"points"`
}

type lastServiceRequest struct {
	Date string `json:"date"`
}

type placementDTO struct {
	Appointment appointmentDTO `json:"appointment"`
	ZIndex      int            `json:"zIndex"`
	OffsetPx    int            `json:"offsetPx"`
	IndentPx    int            `json:"indentPx"`
	Shared      bool           `json:"shared"`
	Marker      string         `json:"marker,omitempty"`
}

type hourDTO struct {
	// Hour is -1 for appointments whose time label could not be read.
	Hour    int            `json:"hour"`
	Entries []placementDTO `json:"entries"`
}

type dayDTO struct {
	Date    string    `json:"date"`
	Weekday string    `json:"weekday"`
	Hours   []hourDTO `json:"hours"`
}

type calendarDTO struct {
	View     string   `json:"view"`
	Width    string   `json:"width"`
	Anchor   string   `json:"anchor"`
	Previous string   `json:"previous"`
	Next     string   `json:"next"`
	Days     []dayDTO `json:"days"`
}

func toCalendarDTO(g calendar.Grid) calendarDTO {
	out := calendarDTO{
		View:     string(g.Mode),
		Width:    string(g.Class),
		Anchor:   g.Anchor.Display(),
		Previous: g.Previous.Display(),
		Next:     g.Next.Display(),
		Days:     make([]dayDTO, 0, len(g.Days)),
	}
	for _, d := range g.Days {
		day := dayDTO{Date: d.Date.Display(), Weekday: d.Date.Weekday().String(), Hours: make([]hourDTO, 0, len(d.Hours))}
		for _, h := range d.Hours {
			hour := hourDTO{Hour: h.Hour, Entries: make([]placementDTO, 0, len(h.Entries))}
			for _, p := range h.Entries {
				hour.Entries = append(hour.Entries, placementDTO{
					Appointment: toAppointmentDTO(p.Appointment),
					ZIndex:      p.ZIndex,
					OffsetPx:    p.OffsetPx,
					IndentPx:    p.IndentPx,
					Shared:      p.Shared,
					Marker:      p.Marker,
				})
			}
			day.Hours = append(day.Hours, hour)
		}
		out.Days = append(out.Days, day)
	}
	return out
}

type serviceCountDTO struct {
	ServiceType string `json:"serviceType"`
	Count       int    `json:"count"`
}

type monthRevenueDTO struct {
	Month   string `json:"month"`
	Revenue string `json:"revenue"`
}

type summaryDTO struct {
	Total            int               `json:"total"`
	Completed        int               `json:"completed"`
	Cancelled        int               `json:"cancelled"`
	Pending          int               `json:"pending"`
	CompletionRate   float64           `json:"completionRate"`
	HomeServices     int               `json:"homeServices"`
	WorkshopServices int               `json:"workshopServices"`
	ServiceTypes     []serviceCountDTO `json:"serviceTypes"`
	CashTotal        string            `json:"cashTotal"`
	MercadoPagoTotal string            `json:"mercadoPagoTotal"`
	RevenueByMonth   []monthRevenueDTO `json:"revenueByMonth"`
	TotalRevenue     string            `json:"totalRevenue"`
	CompletedList    []appointmentDTO  `json:"completedAppointments"`
}

func toSummaryDTO(s accounting.Summary) summaryDTO {
	out := summaryDTO{
		Total:            s.Stats.Total,
		Completed:        s.Stats.Completed,
		Cancelled:        s.Stats.Cancelled,
		Pending:          s.Stats.Pending,
		CompletionRate:   s.Stats.CompletionRate,
		HomeServices:     s.Stats.HomeServices,
		WorkshopServices: s.Stats.WorkshopServices,
		ServiceTypes:     make([]serviceCountDTO, 0, len(s.Stats.ServiceTypes)),
		CashTotal:        s.Payments.Cash.String(),
		MercadoPagoTotal: s.Payments.MercadoPago.String(),
		RevenueByMonth:   make([]monthRevenueDTO, 0, len(s.RevenueByMonth)),
		TotalRevenue:     s.TotalRevenue.String(),
		CompletedList:    toAppointmentDTOs(s.Completed),
	}
	for _, sc := range s.Stats.ServiceTypes {
		out.ServiceTypes = append(out.ServiceTypes, serviceCountDTO{ServiceType: sc.ServiceType, Count: sc.Count})
	}
	for _, m := range s.RevenueByMonth {
		out.RevenueByMonth = append(out.RevenueByMonth, monthRevenueDTO{Month: m.Key(), Revenue: m.Revenue.String()})
	}
	return out
}
