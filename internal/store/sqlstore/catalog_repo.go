package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

type CatalogRepo struct {
	db *bun.DB
}

func NewCatalogRepo(db *bun.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) ListServices(ctx context.Context) ([]domain.Service, error) {
	var rows []serviceRow
	if err := r.db.NewSelect().Model(&rows).Order("name ASC").Scan(ctx); err != nil {
		return nil, classify(err)
	}
	out := make([]domain.Service, 0, len(rows))
	for _, row := range rows {
		out = append(out, serviceFromRow(row))
	}
	return out, nil
}

// LookupPrice returns nil, nil when no service carries that name.
func (r *CatalogRepo) LookupPrice(ctx context.Context, name string) (*decimal.Decimal, error) {
	var row serviceRow
	err := r.db.NewSelect().
		Model(&row).
		Column("price").
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		err = classify(err)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	p := row.Price
	return &p, nil
}

func (r *CatalogRepo) CreateService(ctx context.Context, svc domain.Service) (domain.Service, error) {
	row := serviceToRow(svc)
	if _, err := r.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Service{}, classify(err)
	}
	return serviceFromRow(row), nil
}

func (r *CatalogRepo) UpdateServicePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (domain.Service, error) {
	res, err := r.db.NewUpdate().
		Model((*serviceRow)(nil)).
		Set("price = ?", price).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return domain.Service{}, classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Service{}, store.ErrNotFound
	}

	var row serviceRow
	if err := r.db.NewSelect().Model(&row).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return domain.Service{}, classify(err)
	}
	return serviceFromRow(row), nil
}

var _ store.ServiceCatalog = (*CatalogRepo)(nil)
