package domain

import "testing"

func TestStatus_TransitionsAreOneWay(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCompleted, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Fatalf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParsePaymentMethod(t *testing.T) {
	tests := map[string]PaymentMethod{
		"Efectivo":     PaymentCash,
		"cash":         PaymentCash,
		"Mercado Pago": PaymentMercadoPago,
		"electronic":   PaymentMercadoPago,
	}
	for in, want := range tests {
		got, err := ParsePaymentMethod(in)
		if err != nil {
			t.Fatalf("ParsePaymentMethod(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParsePaymentMethod(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParsePaymentMethod("cheque"); err == nil {
		t.Fatalf("expected error for unknown method")
	}
}

func TestAppointment_CheckInvariants(t *testing.T) {
	cash := PaymentCash
	base := Appointment{
		ClientName:  "Carlos",
		Date:        NewDate(2025, 5, 5),
		Time:        "10:00",
		ServiceType: "Lavado completo",
		Location:    WorkshopLocation,
		Status:      StatusPending,
	}
	if err := base.CheckInvariants(); err != nil {
		t.Fatalf("pending workshop appointment: %v", err)
	}

	completed := base
	completed.Status = StatusCompleted
	if err := completed.CheckInvariants(); err == nil {
		t.Fatalf("completed without payment method should fail")
	}
	completed.PaymentMethod = &cash
	if err := completed.CheckInvariants(); err != nil {
		t.Fatalf("completed with payment method: %v", err)
	}

	cancelled := base
	cancelled.Status = StatusCancelled
	cancelled.PaymentMethod = &cash
	if err := cancelled.CheckInvariants(); err == nil {
		t.Fatalf("cancelled with payment method should fail")
	}

	home := base
	home.Location = "Av. Libertad 1250"
	if err := home.CheckInvariants(); err == nil {
		t.Fatalf("workshop appointment with an address should fail")
	}
	home.IsHomeService = true
	if err := home.CheckInvariants(); err != nil {
		t.Fatalf("home appointment: %v", err)
	}
}
