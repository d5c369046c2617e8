package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type appointmentTx struct {
	tx bun.Tx
}

func (r *AppointmentRepo) List(ctx context.Context, filter store.ListFilter) ([]domain.Appointment, error) {
	var rows []appointmentRow
	q := r.db.NewSelect().Model(&rows)
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.From != nil {
		q = q.Where(`"date" >= ?`, filter.From.ISO())
	}
	if filter.To != nil {
		q = q.Where(`"date" <= ?`, filter.To.ISO())
	}
	err := q.OrderExpr(`"date" ASC, "time" ASC, "created_at" ASC`).Scan(ctx)
	if err != nil {
		return nil, classify(err)
	}

	out := make([]domain.Appointment, 0, len(rows))
	for _, row := range rows {
		a, err := appointmentFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *AppointmentRepo) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	return getAppointment(ctx, r.db, id)
}

func (r *AppointmentRepo) Insert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	row := appointmentToRow(appt)
	if _, err := r.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Appointment{}, classify(err)
	}
	return appointmentFromRow(row)
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, payment *domain.PaymentMethod) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.InTransaction(ctx, func(ctx context.Context, tx store.AppointmentTx) error {
		current, err := tx.GetAppointment(ctx, id)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(status) {
			return store.ErrConflict
		}
		a, err := tx.SetAppointmentStatus(ctx, id, status, payment)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *AppointmentRepo) CountForSlot(ctx context.Context, slot domain.Slot) (int, error) {
	n, err := r.db.NewSelect().
		Model((*appointmentRow)(nil)).
		Where(`"date" = ?`, slot.Date.ISO()).
		Where(`"time" = ?`, slot.Time).
		Where("status <> ?", string(domain.StatusCancelled)).
		Count(ctx)
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func (r *AppointmentRepo) InTransaction(ctx context.Context, fn func(ctx context.Context, tx store.AppointmentTx) error) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, appointmentTx{tx: tx})
	})
	return classify(err)
}

func (t appointmentTx) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	return getAppointment(ctx, t.tx, id)
}

// SetAppointmentStatus only touches rows that are still pending, so two
// concurrent transitions cannot both succeed.
func (t appointmentTx) SetAppointmentStatus(ctx context.Context, id uuid.UUID, status domain.Status, payment *domain.PaymentMethod) (domain.Appointment, error) {
	res, err := t.tx.NewUpdate().
		Model((*appointmentRow)(nil)).
		Set("status = ?", string(status)).
		Set("payment_method = ?", paymentColumn(status, payment)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status = ?", string(domain.StatusPending)).
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, classify(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrConflict
	}
	return getAppointment(ctx, t.tx, id)
}

func getAppointment(ctx context.Context, db bun.IDB, id uuid.UUID) (domain.Appointment, error) {
	var row appointmentRow
	err := db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Appointment{}, classify(err)
	}
	return appointmentFromRow(row)
}

var _ store.AppointmentRepository = (*AppointmentRepo)(nil)
