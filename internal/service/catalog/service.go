package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/events"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type publisher interface {
	PublishJSON(ctx context.Context, eventType, key string, payload any) error
}

type PriceChangedPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type Service struct {
	repo   store.ServiceCatalog
	events publisher
	logger *slog.Logger
}

func NewService(repo store.ServiceCatalog, pub publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, events: pub, logger: logger.With(slog.String("component", "catalog"))}
}

func (s *Service) List(ctx context.Context) ([]domain.Service, error) {
	return s.repo.ListServices(ctx)
}

func (s *Service) Create(ctx context.Context, name, rawPrice string) (domain.Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Service{}, validationError("service name is required")
	}
	price, err := parsePrice(rawPrice)
	if err != nil {
		return domain.Service{}, err
	}
	return s.repo.CreateService(ctx, domain.Service{Name: name, Price: price})
}

// UpdatePrice sets a new catalog price. Existing appointments keep the price
// they were booked with.
func (s *Service) UpdatePrice(ctx context.Context, id uuid.UUID, rawPrice string) (domain.Service, error) {
	if id == uuid.Nil {
		return domain.Service{}, validationError("service id is required")
	}
	price, err := parsePrice(rawPrice)
	if err != nil {
		return domain.Service{}, err
	}

	updated, err := s.repo.UpdateServicePrice(ctx, id, price)
	if err != nil {
		return domain.Service{}, err
	}

	if s.events != nil {
		payload := PriceChangedPayload{ID: updated.ID.String(), Name: updated.Name, Price: updated.Price.String()}
		if err := s.events.PublishJSON(ctx, events.ServicePriceChanged, payload.ID, payload); err != nil {
			s.logger.Warn("publish event failed", slog.String("event_type", events.ServicePriceChanged), slog.Any("err", err))
		}
	}
	return updated, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, validationError("price is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, validationError("price must be a number")
	}
	if !price.IsPositive() {
		return decimal.Decimal{}, validationError("price must be greater than zero")
	}
	return price, nil
}
