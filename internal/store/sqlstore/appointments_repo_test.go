package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
)

var testDBSeq int

func openSQLite(t *testing.T) *bun.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:sheen_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := Open(DriverSQLite, dsn, PoolConfig{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, CreateSchema(ctx, db))
	return db
}

func newAppt(client string, date domain.Date, hhmm string) domain.Appointment {
	return domain.Appointment{
		ClientName:  client,
		Date:        date,
		Time:        hhmm,
		ServiceType: "Lavado completo",
		Location:    domain.WorkshopLocation,
		Status:      domain.StatusPending,
	}
}

func TestAppointmentRepo_InsertGetList(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo(openSQLite(t))

	day := domain.NewDate(2025, time.June, 10)
	price := decimal.NewFromInt(15000)

	late := newAppt("Ana", day, "11:00")
	early := newAppt("Bruno", day, "09:30")
	early.Price = &price
	next := newAppt("Carla", day.AddDays(1), "09:00")

	var ids []uuid.UUID
	for _, a := range []domain.Appointment{late, early, next} {
		got, err := repo.Insert(ctx, a)
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, got.ID)
		ids = append(ids, got.ID)
	}

	got, err := repo.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "Bruno", got.ClientName)
	assert.Equal(t, day, got.Date)
	require.NotNil(t, got.Price)
	assert.True(t, got.Price.Equal(price))
	assert.Nil(t, got.PaymentMethod)

	all, err := repo.List(ctx, store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Bruno", "Ana", "Carla"}, []string{all[0].ClientName, all[1].ClientName, all[2].ClientName})

	from := day.AddDays(1)
	later, err := repo.List(ctx, store.ListFilter{From: &from})
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Equal(t, "Carla", later[0].ClientName)

	_, err = repo.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestAppointmentRepo_CountForSlotIgnoresCancelled(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo(openSQLite(t))
	day := domain.NewDate(2025, time.June, 10)
	slot := domain.Slot{Date: day, Time: "10:00"}

	a, err := repo.Insert(ctx, newAppt("Ana", day, "10:00"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, newAppt("Bruno", day, "10:00"))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, newAppt("Carla", day, "10:30"))
	require.NoError(t, err)

	n, err := repo.CountForSlot(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.UpdateStatus(ctx, a.ID, domain.StatusCancelled, nil)
	require.NoError(t, err)

	n, err = repo.CountForSlot(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAppointmentRepo_UpdateStatusIsOneWay(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo(openSQLite(t))
	day := domain.NewDate(2025, time.June, 10)

	a, err := repo.Insert(ctx, newAppt("Ana", day, "10:00"))
	require.NoError(t, err)

	cash := domain.PaymentCash
	done, err := repo.UpdateStatus(ctx, a.ID, domain.StatusCompleted, &cash)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, done.Status)
	require.NotNil(t, done.PaymentMethod)
	assert.Equal(t, domain.PaymentCash, *done.PaymentMethod)

	_, err = repo.UpdateStatus(ctx, a.ID, domain.StatusCancelled, nil)
	assert.True(t, errors.Is(err, store.ErrConflict), "err = %v", err)

	again, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, again.Status)

	_, err = repo.UpdateStatus(ctx, uuid.New(), domain.StatusCancelled, nil)
	assert.True(t, errors.Is(err, store.ErrNotFound), "err = %v", err)
}

func TestAppointmentRepo_CancelDropsPayment(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo(openSQLite(t))

	a, err := repo.Insert(ctx, newAppt("Ana", domain.NewDate(2025, time.June, 10), "10:00"))
	require.NoError(t, err)

	mp := domain.PaymentMercadoPago
	got, err := repo.UpdateStatus(ctx, a.ID, domain.StatusCancelled, &mp)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Nil(t, got.PaymentMethod)
}

func TestCatalogRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepo(openSQLite(t))

	wash, err := repo.CreateService(ctx, domain.Service{Name: "Lavado completo", Price: decimal.NewFromInt(15000)})
	require.NoError(t, err)
	_, err = repo.CreateService(ctx, domain.Service{Name: "Encerado", Price: decimal.NewFromInt(9000)})
	require.NoError(t, err)

	_, err = repo.CreateService(ctx, domain.Service{Name: "Lavado completo", Price: decimal.NewFromInt(1)})
	assert.True(t, errors.Is(err, store.ErrConflict), "err = %v", err)

	list, err := repo.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Encerado", list[0].Name)

	price, err := repo.LookupPrice(ctx, "Lavado completo")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.True(t, price.Equal(decimal.NewFromInt(15000)))

	missing, err := repo.LookupPrice(ctx, "Pulido")
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated, err := repo.UpdateServicePrice(ctx, wash.ID, decimal.NewFromInt(17000))
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(17000)))

	_, err = repo.UpdateServicePrice(ctx, uuid.New(), decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestClientRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepo(openSQLite(t))

	ana, err := repo.CreateClient(ctx, domain.Client{
		Name:                   "Ana Pérez",
		Phone:                  "+54 11 5555 0000",
		PreferredContactMethod: domain.ContactWhatsApp,
		Vehicles: []domain.Vehicle{
			{Make: "Fiat", Model: "Cronos", LicensePlate: "AB123CD", Type: domain.VehicleMedium},
		},
	})
	require.NoError(t, err)
	require.Len(t, ana.Vehicles, 1)

	_, err = repo.CreateClient(ctx, domain.Client{Name: "Bruno Díaz"})
	require.NoError(t, err)

	found, err := repo.SearchClients(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ana.ID, found[0].ID)

	withTruck, err := repo.AddVehicle(ctx, ana.ID, domain.Vehicle{Make: "Ford", Model: "Ranger", LicensePlate: "ZZ999AA", Type: domain.VehicleTruck})
	require.NoError(t, err)
	assert.Len(t, withTruck.Vehicles, 2)

	pts, err := repo.AddLoyaltyPoints(ctx, ana.ID, 10)
	require.NoError(t, err)
	pts, err = repo.AddLoyaltyPoints(ctx, ana.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 15, pts.LoyaltyPoints)

	last := domain.NewDate(2025, time.June, 10)
	dated, err := repo.SetLastServiceDate(ctx, ana.ID, last)
	require.NoError(t, err)
	require.NotNil(t, dated.LastServiceDate)
	assert.Equal(t, last, *dated.LastServiceDate)

	all, err := repo.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = repo.AddVehicle(ctx, uuid.New(), domain.Vehicle{Make: "x"})
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = repo.GetClient(ctx, uuid.New())
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
