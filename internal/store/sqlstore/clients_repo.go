package sqlstore

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

type ClientRepo struct {
	db *bun.DB
}

func NewClientRepo(db *bun.DB) *ClientRepo {
	return &ClientRepo{db: db}
}

func (r *ClientRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	return r.selectClients(ctx, "")
}

func (r *ClientRepo) SearchClients(ctx context.Context, name string) ([]domain.Client, error) {
	return r.selectClients(ctx, strings.TrimSpace(name))
}

func (r *ClientRepo) selectClients(ctx context.Context, name string) ([]domain.Client, error) {
	var rows []clientRow
	q := r.db.NewSelect().
		Model(&rows).
		Relation("Vehicles", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("license_plate ASC")
		})
	if name != "" {
		q = q.Where("LOWER(client_row.name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if err := q.Order("client_row.name ASC").Scan(ctx); err != nil {
		return nil, classify(err)
	}

	out := make([]domain.Client, 0, len(rows))
	for _, row := range rows {
		c, err := clientFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *ClientRepo) GetClient(ctx context.Context, id uuid.UUID) (domain.Client, error) {
	return getClient(ctx, r.db, id)
}

func (r *ClientRepo) CreateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	row := clientToRow(c)
	vehicles := row.Vehicles
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return err
		}
		for i := range vehicles {
			vehicles[i].ClientID = row.ID
			if _, err := tx.NewInsert().Model(&vehicles[i]).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Client{}, classify(err)
	}
	return getClient(ctx, r.db, row.ID)
}

func (r *ClientRepo) AddVehicle(ctx context.Context, clientID uuid.UUID, v domain.Vehicle) (domain.Client, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := clientExists(ctx, tx, clientID); err != nil {
			return err
		}
		row := vehicleToRow(clientID, v)
		_, err := tx.NewInsert().Model(&row).Exec(ctx)
		return err
	})
	if err != nil {
		return domain.Client{}, classify(err)
	}
	return getClient(ctx, r.db, clientID)
}

func (r *ClientRepo) AddLoyaltyPoints(ctx context.Context, clientID uuid.UUID, points int) (domain.Client, error) {
	res, err := r.db.NewUpdate().
		Model((*clientRow)(nil)).
		Set("loyalty_points = loyalty_points + ?", points).
		Where("id = ?", clientID).
		Exec(ctx)
	if err := affectedOne(res, err); err != nil {
		return domain.Client{}, err
	}
	return getClient(ctx, r.db, clientID)
}

func (r *ClientRepo) SetLastServiceDate(ctx context.Context, clientID uuid.UUID, date domain.Date) (domain.Client, error) {
	res, err := r.db.NewUpdate().
		Model((*clientRow)(nil)).
		Set("last_service_date = ?", date.ISO()).
		Where("id = ?", clientID).
		Exec(ctx)
	if err := affectedOne(res, err); err != nil {
		return domain.Client{}, err
	}
	return getClient(ctx, r.db, clientID)
}

func getClient(ctx context.Context, db bun.IDB, id uuid.UUID) (domain.Client, error) {
	var row clientRow
	err := db.NewSelect().
		Model(&row).
		Relation("Vehicles", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("license_plate ASC")
		}).
		Where("client_row.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Client{}, classify(err)
	}
	return clientFromRow(row)
}

func clientExists(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	ok, err := db.NewSelect().Model((*clientRow)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound
	}
	return nil
}

func affectedOne(res interface{ RowsAffected() (int64, error) }, err error) error {
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.ClientRepository = (*ClientRepo)(nil)
