package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
)

type ServiceCatalog interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	// LookupPrice returns nil, nil when no service has that name.
	LookupPrice(ctx context.Context, serviceName string) (*decimal.Decimal, error)
	CreateService(ctx context.Context, svc domain.Service) (domain.Service, error)
	UpdateServicePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (domain.Service, error)
}

type ClientRepository interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	SearchClients(ctx context.Context, name string) ([]domain.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (domain.Client, error)
	CreateClient(ctx context.Context, c domain.Client) (domain.Client, error)
	AddVehicle(ctx context.Context, clientID uuid.UUID, v domain.Vehicle) (domain.Client, error)
	AddLoyaltyPoints(ctx context.Context, clientID uuid.UUID, points int) (domain.Client, error)
	SetLastServiceDate(ctx context.Context, clientID uuid.UUID, date domain.Date) (domain.Client, error)
}
