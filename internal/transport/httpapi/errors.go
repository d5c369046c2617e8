package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignajaliff/sheen-schedule-clean/internal/service/appointments"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/catalog"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/clients"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

// statusFor maps service and store errors to a status code and the message
// shown to the caller. Unknown errors become a generic 500.
func statusFor(err error) (int, string) {
	var (
		apptErr    *appointments.ValidationError
		catalogErr *catalog.ValidationError
		clientErr  *clients.ValidationError
	)
	switch {
	case errors.As(err, &apptErr):
		return http.StatusBadRequest, apptErr.Error()
	case errors.As(err, &catalogErr):
		return http.StatusBadRequest, catalogErr.Error()
	case errors.As(err, &clientErr):
		return http.StatusBadRequest, clientErr.Error()
	case errors.Is(err, appointments.ErrSlotFull):
		return http.StatusConflict, "That slot is full. Pick a different time."
	case errors.Is(err, appointments.ErrSlotBusy):
		return http.StatusConflict, "That slot is being booked right now. Try again."
	case errors.Is(err, appointments.ErrAlreadyFinalized):
		return http.StatusConflict, "The appointment is already completed or cancelled."
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	}
	return http.StatusInternalServerError, "internal error"
}

func (s *Server) fail(c *gin.Context, op string, err error, attrs ...slog.Attr) {
	code, msg := statusFor(err)
	attrs = append(attrs, slog.String("op", op), slog.Int("status", code), slog.Any("err", err))
	switch {
	case code >= http.StatusInternalServerError:
		s.log.LogAttrs(c.Request.Context(), slog.LevelError, "request failed", attrs...)
	case code == http.StatusBadRequest:
		s.log.LogAttrs(c.Request.Context(), slog.LevelWarn, "invalid request", attrs...)
	default:
		s.log.LogAttrs(c.Request.Context(), slog.LevelInfo, "request rejected", attrs...)
	}
	c.JSON(code, errorBody(msg))
}

func (s *Server) badRequest(c *gin.Context, op, msg string) {
	s.log.Warn("invalid request", slog.String("op", op), slog.String("reason", msg))
	c.JSON(http.StatusBadRequest, errorBody(msg))
}
