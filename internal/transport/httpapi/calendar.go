package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignajaliff/sheen-schedule-clean/internal/calendar"
	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
)

// calendarView renders the grid for the requested view. A `date` is snapped
// to the start of its view; an `anchor` (as returned in previous/next) is
// used as given so paging tiles without gaps.
func (s *Server) calendarView(c *gin.Context) {
	const op = "CalendarView"

	mode := calendar.ModeWeek
	if raw := strings.TrimSpace(c.Query("view")); raw != "" {
		m, err := calendar.ParseMode(raw)
		if err != nil {
			s.badRequest(c, op, "view must be day, week or fullWeek")
			return
		}
		mode = m
	}

	b := s.deps.Calendar.Breakpoints()
	class := calendar.Wide
	if raw := strings.TrimSpace(c.Query("width")); raw != "" {
		if px, err := strconv.Atoi(raw); err == nil {
			class = b.Classify(px)
		} else if wc, err := calendar.ParseWidthClass(raw); err == nil {
			class = wc
		} else {
			s.badRequest(c, op, "width must be a pixel count or a width class")
			return
		}
	}

	var anchor domain.Date
	if raw := strings.TrimSpace(c.Query("anchor")); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			s.badRequest(c, op, "anchor must be DD/MM/YYYY or YYYY-MM-DD")
			return
		}
		anchor = d
	} else {
		selected := s.opts.Today()
		if raw := strings.TrimSpace(c.Query("date")); raw != "" {
			d, err := domain.ParseDate(raw)
			if err != nil {
				s.badRequest(c, op, "date must be DD/MM/YYYY or YYYY-MM-DD")
				return
			}
			selected = d
		}
		anchor = b.Snap(selected, mode, class)
	}

	appts, err := s.deps.Feed.Appointments(c.Request.Context())
	if err != nil {
		s.fail(c, op, err)
		return
	}

	grid := s.deps.Calendar.Build(appts, anchor, mode, class)
	s.log.Debug(
		"calendar rendered",
		slog.String("view", string(mode)),
		slog.String("width", string(class)),
		slog.String("anchor", anchor.ISO()),
		slog.Int("days", len(grid.Days)),
	)
	c.JSON(http.StatusOK, toCalendarDTO(grid))
}
