package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignajaliff/sheen-schedule-clean/internal/service/appointments"
)

func (s *Server) parseID(c *gin.Context, op string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		s.badRequest(c, op, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) listAppointments(c *gin.Context) {
	appts, err := s.deps.Appointments.List(c.Request.Context(), appointments.ListInput{
		Status: c.Query("status"),
		From:   c.Query("from"),
		To:     c.Query("to"),
	})
	if err != nil {
		s.fail(c, "ListAppointments", err)
		return
	}
	s.log.Debug("appointments listed", slog.Int("count", len(appts)))
	c.JSON(http.StatusOK, gin.H{"appointments": toAppointmentDTOs(appts)})
}

func (s *Server) bookAppointment(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "BookAppointment", "invalid JSON body")
		return
	}

	appt, err := s.deps.Appointments.Book(c.Request.Context(), appointments.BookInput{
		ClientName:    req.ClientName,
		Date:          req.Date,
		Time:          req.Time,
		ServiceType:   req.ServiceType,
		Location:      req.Location,
		IsHomeService: req.IsHomeService,
	})
	if err != nil {
		s.fail(c, "BookAppointment", err, slog.String("date", req.Date), slog.String("time", req.Time))
		return
	}

	s.log.Info(
		"appointment booked",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("date", appt.Date.ISO()),
		slog.String("time", appt.Time),
	)
	c.JSON(http.StatusCreated, toAppointmentDTO(appt))
}

func (s *Server) getAppointment(c *gin.Context) {
	id, ok := s.parseID(c, "GetAppointment")
	if !ok {
		return
	}
	appt, err := s.deps.Appointments.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "GetAppointment", err, slog.String("appointment_id", id.String()))
		return
	}
	c.JSON(http.StatusOK, toAppointmentDTO(appt))
}

func (s *Server) updateAppointmentStatus(c *gin.Context) {
	id, ok := s.parseID(c, "UpdateAppointmentStatus")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "UpdateAppointmentStatus", "invalid JSON body")
		return
	}

	appt, err := s.deps.Appointments.UpdateStatus(c.Request.Context(), appointments.UpdateStatusInput{
		ID:            id,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		s.fail(c, "UpdateAppointmentStatus", err, slog.String("appointment_id", id.String()))
		return
	}

	s.log.Info(
		"appointment status updated",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("status", string(appt.Status)),
	)
	c.JSON(http.StatusOK, toAppointmentDTO(appt))
}

func (s *Server) checkSlot(c *gin.Context) {
	slot, err := s.deps.Appointments.CheckSlot(c.Request.Context(), c.Query("date"), c.Query("time"))
	if err != nil {
		s.fail(c, "CheckSlot", err)
		return
	}
	c.JSON(http.StatusOK, toSlotDTO(slot))
}

// dayAvailability takes the date as a path segment, so only the ISO form
// (YYYY-MM-DD) fits there; the service still accepts both forms.
func (s *Server) dayAvailability(c *gin.Context) {
	slots, err := s.deps.Appointments.Availability(c.Request.Context(), c.Param("date"))
	if err != nil {
		s.fail(c, "DayAvailability", err)
		return
	}
	out := make([]slotDTO, 0, len(slots))
	for _, sl := range slots {
		out = append(out, toSlotDTO(sl))
	}
	c.JSON(http.StatusOK, gin.H{"slots": out})
}
