package sqlstore

import (
	"context"

	"github.com/uptrace/bun"
)

// CreateSchema creates the tables used by the repositories when they are
// missing. Postgres deployments normally run migrations/ instead; this keeps
// SQLite databases and tests self-contained.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*appointmentRow)(nil),
		(*serviceRow)(nil),
		(*clientRow)(nil),
		(*vehicleRow)(nil),
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, m := range models {
			if _, err := tx.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}
		_, err := tx.NewCreateIndex().
			Model((*appointmentRow)(nil)).
			Index("appointments_slot_idx").
			Column("date", "time").
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewCreateIndex().
			Model((*vehicleRow)(nil)).
			Index("vehicles_client_idx").
			Column("client_id").
			IfNotExists().
			Exec(ctx)
		return err
	})
}
