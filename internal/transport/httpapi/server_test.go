package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignajaliff/sheen-schedule-clean/internal/calendar"
	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/accounting"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/appointments"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/catalog"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/clients"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAppointmentsService struct {
	bookFn         func(ctx context.Context, in appointments.BookInput) (domain.Appointment, error)
	updateStatusFn func(ctx context.Context, in appointments.UpdateStatusInput) (domain.Appointment, error)
	listFn         func(ctx context.Context, in appointments.ListInput) ([]domain.Appointment, error)
	getFn          func(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
}

func (f *fakeAppointmentsService) Book(ctx context.Context, in appointments.BookInput) (domain.Appointment, error) {
	if f.bookFn == nil {
		panic("Book not configured")
	}
	return f.bookFn(ctx, in)
}

func (f *fakeAppointmentsService) UpdateStatus(ctx context.Context, in appointments.UpdateStatusInput) (domain.Appointment, error) {
	if f.updateStatusFn == nil {
		panic("UpdateStatus not configured")
	}
	return f.updateStatusFn(ctx, in)
}

func (f *fakeAppointmentsService) List(ctx context.Context, in appointments.ListInput) ([]domain.Appointment, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx, in)
}

func (f *fakeAppointmentsService) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if f.getFn == nil {
		panic("Get not configured")
	}
	return f.getFn(ctx, id)
}

func (f *fakeAppointmentsService) CheckSlot(ctx context.Context, rawDate, rawTime string) (appointments.SlotAvailability, error) {
	panic("CheckSlot not configured")
}

func (f *fakeAppointmentsService) Availability(ctx context.Context, rawDate string) ([]appointments.SlotAvailability, error) {
	panic("Availability not configured")
}

type fakeFeed struct {
	appts []domain.Appointment
	err   error
}

func (f *fakeFeed) Appointments(ctx context.Context) ([]domain.Appointment, error) {
	return f.appts, f.err
}

func testModel(t *testing.T) *calendar.Model {
	t.Helper()
	m, err := calendar.NewModel(calendar.DefaultBreakpoints(), calendar.DefaultStackStyle())
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

// memoryServer wires the real services over one in-memory store.
func memoryServer(t *testing.T, opts Options) (*Server, *memory.Store) {
	t.Helper()
	mem := memory.New()
	deps := Deps{
		Appointments: appointments.NewService(mem, mem, appointments.DefaultMaxPerSlot),
		Catalog:      catalog.NewService(mem, nil, nil),
		Clients:      clients.NewService(mem),
		Accounting:   accounting.NewService(mem),
		Feed:         calendar.NewFeed(mem, nil),
		Calendar:     testModel(t),
	}
	return NewServer(deps, opts, nil), mem
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestBookAndComplete_OverMemoryStore(t *testing.T) {
	srv, mem := memoryServer(t, Options{})
	h := srv.Handler()

	if _, err := mem.CreateService(context.Background(), domain.Service{Name: "Lavado completo", Price: mustDecimal(t, "15000")}); err != nil {
		t.Fatalf("CreateService: %v", err)
	}

	rec := do(t, h, http.MethodPost, "/api/v1/appointments", bookRequest{
		ClientName:  "Carlos",
		Date:        "2025-05-05",
		Time:        "10:00",
		ServiceType: "Lavado completo",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book status = %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	booked := decode[appointmentDTO](t, rec)
	if booked.Date != "05/05/2025" {
		t.Fatalf("date = %q, want %q", booked.Date, "05/05/2025")
	}
	if booked.Location != domain.WorkshopLocation {
		t.Fatalf("location = %q, want %q", booked.Location, domain.WorkshopLocation)
	}
	if booked.Price == nil || *booked.Price != "15000" {
		t.Fatalf("price = %v, want 15000", booked.Price)
	}
	if booked.Status != "pending" || booked.PaymentMethod != nil {
		t.Fatalf("booked = %+v, want pending without payment", booked)
	}

	rec = do(t, h, http.MethodPatch, "/api/v1/appointments/"+booked.ID+"/status", statusRequest{Status: "completed"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("complete without payment status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = do(t, h, http.MethodPatch, "/api/v1/appointments/"+booked.ID+"/status", statusRequest{Status: "completed", PaymentMethod: "Mercado Pago"})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	done := decode[appointmentDTO](t, rec)
	if done.PaymentMethod == nil || *done.PaymentMethod != "Mercado Pago" {
		t.Fatalf("paymentMethod = %v, want Mercado Pago", done.PaymentMethod)
	}

	rec = do(t, h, http.MethodPatch, "/api/v1/appointments/"+booked.ID+"/status", statusRequest{Status: "cancelled"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("re-finalize status = %d, want %d", rec.Code, http.StatusConflict)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/accounting/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, want %d", rec.Code, http.StatusOK)
	}
	sum := decode[summaryDTO](t, rec)
	if sum.Completed != 1 || sum.MercadoPagoTotal != "15000" || sum.TotalRevenue != "15000" {
		t.Fatalf("summary = %+v", sum)
	}
	if len(sum.RevenueByMonth) != 1 || sum.RevenueByMonth[0].Month != "05/2025" {
		t.Fatalf("revenueByMonth = %+v, want one entry for 05/2025", sum.RevenueByMonth)
	}
}

func TestBookAppointment_ValidationAndCapacity(t *testing.T) {
	srv, _ := memoryServer(t, Options{})
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/appointments", bookRequest{Date: "05/05/2025", Time: "10:00", ServiceType: "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing name status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := decode[map[string]string](t, rec)["error"]; got != "client name is required" {
		t.Fatalf("error = %q", got)
	}

	for i := 0; i < appointments.DefaultMaxPerSlot; i++ {
		rec = do(t, h, http.MethodPost, "/api/v1/appointments", bookRequest{ClientName: "c", Date: "05/05/2025", Time: "10:00", ServiceType: "x"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("book %d status = %d, want %d", i, rec.Code, http.StatusCreated)
		}
	}
	rec = do(t, h, http.MethodPost, "/api/v1/appointments", bookRequest{ClientName: "c", Date: "05/05/2025", Time: "10:00", ServiceType: "x"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("full slot status = %d, want %d", rec.Code, http.StatusConflict)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/availability?date=05/05/2025&time=10:00", nil)
	slot := decode[slotDTO](t, rec)
	if slot.Available || slot.Active != 2 || slot.Remaining != 0 {
		t.Fatalf("slot = %+v, want full", slot)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/availability/2025-05-05", nil)
	day := decode[map[string][]slotDTO](t, rec)["slots"]
	if len(day) != len(domain.TimeSlots) {
		t.Fatalf("day slots = %d, want %d", len(day), len(domain.TimeSlots))
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"slot full", appointments.ErrSlotFull, http.StatusConflict},
		{"slot busy", appointments.ErrSlotBusy, http.StatusConflict},
		{"finalized", appointments.ErrAlreadyFinalized, http.StatusConflict},
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"unavailable", errors.Join(errors.New("dial"), store.ErrUnavailable), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeAppointmentsService{
				updateStatusFn: func(ctx context.Context, in appointments.UpdateStatusInput) (domain.Appointment, error) {
					return domain.Appointment{}, tc.err
				},
			}
			srv := NewServer(Deps{Appointments: svc}, Options{}, nil)
			rec := do(t, srv.Handler(), http.MethodPatch, "/api/v1/appointments/"+uuid.NewString()+"/status", statusRequest{Status: "cancelled"})
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if tc.want == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "boom") {
				t.Fatalf("internal error leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestGetAppointment_RejectsBadID(t *testing.T) {
	srv := NewServer(Deps{Appointments: &fakeAppointmentsService{}}, Options{}, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/appointments/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestListAppointments_PassesFilter(t *testing.T) {
	var got appointments.ListInput
	svc := &fakeAppointmentsService{
		listFn: func(ctx context.Context, in appointments.ListInput) ([]domain.Appointment, error) {
			got = in
			return nil, nil
		},
	}
	srv := NewServer(Deps{Appointments: svc}, Options{}, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/appointments?status=pending&from=01/05/2025", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got.Status != "pending" || got.From != "01/05/2025" {
		t.Fatalf("filter = %+v", got)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"appointments":[]`) {
		t.Fatalf("body = %s, want empty list", body)
	}
}

func TestCalendarView(t *testing.T) {
	wed := domain.NewDate(2025, 5, 7)
	feed := &fakeFeed{appts: []domain.Appointment{
		{ID: uuid.New(), ClientName: "a", Date: domain.NewDate(2025, 5, 5), Time: "10:00", Status: domain.StatusPending},
		{ID: uuid.New(), ClientName: "b", Date: domain.NewDate(2025, 5, 5), Time: "10:30", Status: domain.StatusPending},
	}}
	srv := NewServer(Deps{Feed: feed, Calendar: testModel(t)}, Options{Today: func() domain.Date { return wed }}, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/calendar", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	view := decode[calendarDTO](t, rec)
	if view.Anchor != "05/05/2025" || len(view.Days) != 7 {
		t.Fatalf("anchor = %s days = %d, want Monday 05/05/2025 and 7 days", view.Anchor, len(view.Days))
	}
	if view.Next != "12/05/2025" || view.Previous != "28/04/2025" {
		t.Fatalf("next/previous = %s/%s", view.Next, view.Previous)
	}
	monday := view.Days[0]
	if len(monday.Hours) != 1 || len(monday.Hours[0].Entries) != 2 {
		t.Fatalf("monday hours = %+v, want one shared hour with two entries", monday.Hours)
	}
	second := monday.Hours[0].Entries[1]
	if second.ZIndex != 2 || second.Marker != "+1" || !second.Shared {
		t.Fatalf("second entry = %+v", second)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/calendar?view=week&width=400&date=2025-05-07", nil)
	view = decode[calendarDTO](t, rec)
	if view.Width != string(calendar.VeryNarrow) || len(view.Days) != 2 {
		t.Fatalf("width = %s days = %d, want very-narrow with 2 days", view.Width, len(view.Days))
	}
	if view.Anchor != "07/05/2025" {
		t.Fatalf("anchor = %s, want 07/05/2025", view.Anchor)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/calendar?view=week&width=very-narrow&anchor="+view.Next, nil)
	next := decode[calendarDTO](t, rec)
	if next.Anchor != "09/05/2025" || next.Previous != view.Anchor {
		t.Fatalf("paged anchor = %s previous = %s", next.Anchor, next.Previous)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/calendar?view=month", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad view status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRateLimit(t *testing.T) {
	srv := NewServer(Deps{}, Options{RateLimitRPS: 0.001, RateLimitBurst: 1}, nil)
	h := srv.Handler()

	if rec := do(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec := do(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}

func TestHealthz_ReportsBackend(t *testing.T) {
	srv := NewServer(Deps{Health: func(ctx context.Context) error { return errors.New("down") }}, Options{}, nil)
	if rec := do(t, srv.Handler(), http.MethodGet, "/healthz", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestSPAFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600); err != nil {
		t.Fatal(err)
	}
	srv := NewServer(Deps{}, Options{StaticDir: dir}, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/calendar/week", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "app</html>") {
		t.Fatalf("client route = %d %q, want index.html", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/app.js", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "console.log(1)" {
		t.Fatalf("asset = %d %q", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/api/v1/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown api status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAccountingExport(t *testing.T) {
	srv, _ := memoryServer(t, Options{})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/accounting/export.xlsx", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("content type = %q", ct)
	}
	// xlsx files are zip archives.
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatalf("body is not a zip archive")
	}
}

func TestClientsAndServices(t *testing.T) {
	srv, _ := memoryServer(t, Options{})
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/services", createServiceRequest{Name: "Encerado", Price: "9000"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create service status = %d (%s)", rec.Code, rec.Body.String())
	}
	svc := decode[serviceDTO](t, rec)

	rec = do(t, h, http.MethodPatch, "/api/v1/services/"+svc.ID+"/price", priceRequest{Price: "-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative price status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec = do(t, h, http.MethodPatch, "/api/v1/services/"+uuid.NewString()+"/price", priceRequest{Price: "10"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown service status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/clients", createClientRequest{
		Name:     "María López",
		Vehicles: []vehicleDTO{{Make: "Ford", Model: "Ka", Type: "small"}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create client status = %d (%s)", rec.Code, rec.Body.String())
	}
	cl := decode[clientDTO](t, rec)
	if len(cl.Vehicles) != 1 {
		t.Fatalf("vehicles = %d, want 1", len(cl.Vehicles))
	}

	rec = do(t, h, http.MethodPost, "/api/v1/clients/"+cl.ID+"/loyalty", loyaltyRequest{Points: 50})
	if got := decode[clientDTO](t, rec); got.LoyaltyPoints != 50 {
		t.Fatalf("loyaltyPoints = %d, want 50", got.LoyaltyPoints)
	}

	rec = do(t, h, http.MethodPut, "/api/v1/clients/"+cl.ID+"/last-service", lastServiceRequest{Date: "2025-05-05"})
	got := decode[clientDTO](t, rec)
	if got.LastServiceDate == nil || *got.LastServiceDate != "05/05/2025" {
		t.Fatalf("lastServiceDate = %v, want 05/05/2025", got.LastServiceDate)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/clients?q=MAR", nil)
	list := decode[map[string][]clientDTO](t, rec)["clients"]
	if len(list) != 1 {
		t.Fatalf("search results = %d, want 1", len(list))
	}
}
