package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignajaliff/sheen-schedule-clean/internal/events"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store/memory"
)

type fakePublisher struct {
	types []string
}

func (f *fakePublisher) PublishJSON(ctx context.Context, eventType, key string, payload any) error {
	f.types = append(f.types, eventType)
	return nil
}

func TestServiceUpdatePrice(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	pub := &fakePublisher{}
	svc := NewService(mem, pub, nil)

	wash, err := svc.Create(ctx, "Lavado completo", "15000")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := svc.UpdatePrice(ctx, wash.ID, "17500.50")
	if err != nil {
		t.Fatalf("UpdatePrice error: %v", err)
	}
	if !updated.Price.Equal(decimal.RequireFromString("17500.50")) {
		t.Fatalf("price = %s, want 17500.50", updated.Price)
	}
	if len(pub.types) != 1 || pub.types[0] != events.ServicePriceChanged {
		t.Fatalf("events = %v", pub.types)
	}

	price, err := mem.LookupPrice(ctx, "Lavado completo")
	if err != nil || price == nil || !price.Equal(updated.Price) {
		t.Fatalf("LookupPrice = %v, %v", price, err)
	}

	if _, err := svc.UpdatePrice(ctx, uuid.New(), "10"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
	}
}

func TestServiceUpdatePrice_Validation(t *testing.T) {
	svc := NewService(memory.New(), nil, nil)
	id := uuid.New()

	for raw, want := range map[string]string{
		"":     "price is required",
		"abc":  "price must be a number",
		"0":    "price must be greater than zero",
		"-100": "price must be greater than zero",
	} {
		_, err := svc.UpdatePrice(context.Background(), id, raw)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("UpdatePrice(%q) error type = %T, want *ValidationError", raw, err)
		}
		if vErr.Error() != want {
			t.Fatalf("UpdatePrice(%q) = %q, want %q", raw, vErr.Error(), want)
		}
	}
}

func TestServiceCreate_DuplicateName(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New(), nil, nil)
	if _, err := svc.Create(ctx, "Encerado", "9000"); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(ctx, "Encerado", "9500"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrConflict)
	}
}
