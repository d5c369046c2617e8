package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ignajaliff/sheen-schedule-clean/internal/calendar"
	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/accounting"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/appointments"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/clients"
)

type appointmentsService interface {
	Book(ctx context.Context, in appointments.BookInput) (domain.Appointment, error)
	UpdateStatus(ctx context.Context, in appointments.UpdateStatusInput) (domain.Appointment, error)
	List(ctx context.Context, in appointments.ListInput) ([]domain.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	CheckSlot(ctx context.Context, rawDate, rawTime string) (appointments.SlotAvailability, error)
	Availability(ctx context.Context, rawDate string) ([]appointments.SlotAvailability, error)
}

type catalogService interface {
	List(ctx context.Context) ([]domain.Service, error)
	Create(ctx context.Context, name, rawPrice string) (domain.Service, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, rawPrice string) (domain.Service, error)
}

type clientsService interface {
	List(ctx context.Context, query string) ([]domain.Client, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Client, error)
	Create(ctx context.Context, in clients.CreateInput) (domain.Client, error)
	AddVehicle(ctx context.Context, clientID uuid.UUID, in clients.VehicleInput) (domain.Client, error)
	AddLoyaltyPoints(ctx context.Context, clientID uuid.UUID, points int) (domain.Client, error)
	SetLastServiceDate(ctx context.Context, clientID uuid.UUID, rawDate string) (domain.Client, error)
}

type accountingService interface {
	Summary(ctx context.Context) (accounting.Summary, error)
	ExportCompleted(ctx context.Context, w io.Writer) error
}

type appointmentFeed interface {
	Appointments(ctx context.Context) ([]domain.Appointment, error)
}

type Deps struct {
	Appointments appointmentsService
	Catalog      catalogService
	Clients      clientsService
	Accounting   accountingService
	Feed         appointmentFeed
	Calendar     *calendar.Model
	// Health reports backend readiness for /healthz. Nil means always ready.
	Health func(ctx context.Context) error
}

type Options struct {
	RequestTimeout time.Duration
	StaticDir      string
	RateLimitRPS   float64
	RateLimitBurst int
	// Today returns the current civil date for calendar requests without one.
	Today func() domain.Date
}

type Server struct {
	deps   Deps
	opts   Options
	log    *slog.Logger
	engine *gin.Engine
}

func NewServer(deps Deps, opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if opts.Today == nil {
		opts.Today = func() domain.Date { return domain.DateOf(time.Now()) }
	}
	s := &Server{
		deps: deps,
		opts: opts,
		log:  log.With(slog.String("component", "http")),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	if opts.RateLimitRPS > 0 {
		r.Use(newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).middleware())
	}
	if opts.RequestTimeout > 0 {
		r.Use(requestTimeout(opts.RequestTimeout))
	}

	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.GET("/appointments", s.listAppointments)
		api.POST("/appointments", s.bookAppointment)
		api.GET("/appointments/:id", s.getAppointment)
		api.PATCH("/appointments/:id/status", s.updateAppointmentStatus)

		api.GET("/availability", s.checkSlot)
		api.GET("/availability/:date", s.dayAvailability)
		api.GET("/calendar", s.calendarView)

		api.GET("/services", s.listServices)
		api.POST("/services", s.createService)
		api.PATCH("/services/:id/price", s.updateServicePrice)

		api.GET("/clients", s.listClients)
		api.POST("/clients", s.createClient)
		api.GET("/clients/:id", s.getClient)
		api.POST("/clients/:id/vehicles", s.addVehicle)
		api.POST("/clients/:id/loyalty", s.addLoyaltyPoints)
		api.PUT("/clients/:id/last-service", s.setLastServiceDate)

		api.GET("/accounting/summary", s.accountingSummary)
		api.GET("/accounting/export.xlsx", s.accountingExport)
	}

	r.NoRoute(s.spaFallback)
	s.engine = r
	return s
}

// Handler returns the engine wrapped with OpenTelemetry server spans.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, "sheen-http")
}

func (s *Server) healthz(c *gin.Context) {
	if s.deps.Health != nil {
		if err := s.deps.Health(c.Request.Context()); err != nil {
			s.log.Warn("health check failed", slog.Any("err", err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
