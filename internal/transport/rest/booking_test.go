package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"strizh/config"
	"strizh/internal/domain"
	"strizh/internal/service"
)

type stubBookingService struct {
	hold    *domain.BookingHold
	booking *domain.Booking
	err     error
}

func (s *stubBookingService) Initiate(ctx context.Context, dto domain.CreateBookingDTO) (*domain.BookingHold, error) {
	return s.hold, s.err
}

func (s *stubBookingService) ConfirmPayment(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.booking, s.err
}

func (s *stubBookingService) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.booking, s.err
}

func (s *stubBookingService) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return s.booking, s.err
}

func (s *stubBookingService) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int, error) {
	return nil, 0, s.err
}

func (s *stubBookingService) Cancel(ctx context.Context, id int64, reason string) error {
	return s.err
}

func (s *stubBookingService) Complete(ctx context.Context, id int64) error {
	return s.err
}

type stubAvailabilityService struct {
	slots []string
	err   error
}

func (s *stubAvailabilityService) GetFreeSlots(ctx context.Context, masterID int64, date string, serviceID int64, addonIDs []int64) ([]string, error) {
	return s.slots, s.err
}

type stubReminderService struct {
	result *domain.SweepResult
	err    error
}

func (s *stubReminderService) RunSweep(ctx context.Context) (*domain.SweepResult, error) {
	return s.result, s.err
}

func newTestRouter(t *testing.T, services *service.Services, cfg *config.Config) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	if cfg == nil {
		cfg = &config.Config{}
	}

	handler := NewHandler(services, zap.NewNop(), cfg)
	router := gin.New()
	handler.InitRoutes(router)

	return router
}

func performRequest(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validBookingBody() map[string]interface{} {
	return map[string]interface{}{
		"master_id":      int64(1),
		"service_id":     int64(1),
		"booking_date":   "2026-09-10",
		"booking_time":   "10:00",
		"customer_name":  "Анна Крылова",
		"customer_email": "anna@example.com",
		"customer_phone": "+79261234567",
	}
}

func TestInitiateBooking_Created(t *testing.T) {
	expires := time.Date(2026, 9, 10, 9, 45, 0, 0, time.UTC)
	svc := &stubBookingService{hold: &domain.BookingHold{
		BookingID:        7,
		PaymentReference: "strizh-abc",
		AuthorizationURL: "https://checkout.paystack.com/abc",
		Amount:           1500,
		ExpiresAt:        expires,
	}}

	router := newTestRouter(t, &service.Services{Booking: svc}, nil)

	w := performRequest(router, http.MethodPost, "/api/v1/bookings/", validBookingBody(), nil)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Status string             `json:"status"`
		Data   domain.BookingHold `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, int64(7), resp.Data.BookingID)
	assert.Equal(t, "strizh-abc", resp.Data.PaymentReference)
}

func TestInitiateBooking_MissingFields(t *testing.T) {
	router := newTestRouter(t, &service.Services{Booking: &stubBookingService{}}, nil)

	body := validBookingBody()
	delete(body, "customer_email")

	w := performRequest(router, http.MethodPost, "/api/v1/bookings/", body, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInitiateBooking_SlotTaken(t *testing.T) {
	svc := &stubBookingService{err: domain.ErrSlotTaken}
	router := newTestRouter(t, &service.Services{Booking: svc}, nil)

	w := performRequest(router, http.MethodPost, "/api/v1/bookings/", validBookingBody(), nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInitiateBooking_ProviderDown(t *testing.T) {
	svc := &stubBookingService{err: domain.ErrExternalService}
	router := newTestRouter(t, &service.Services{Booking: svc}, nil)

	w := performRequest(router, http.MethodPost, "/api/v1/bookings/", validBookingBody(), nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestConfirmPayment_OK(t *testing.T) {
	svc := &stubBookingService{booking: &domain.Booking{
		ID:     7,
		Status: domain.BookingStatusConfirmed,
	}}
	router := newTestRouter(t, &service.Services{Booking: svc}, nil)

	w := performRequest(router, http.MethodGet, "/api/v1/bookings/payment/confirm?reference=strizh-abc", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data domain.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.BookingStatusConfirmed, resp.Data.Status)
}

func TestConfirmPayment_MissingReference(t *testing.T) {
	router := newTestRouter(t, &service.Services{Booking: &stubBookingService{}}, nil)

	w := performRequest(router, http.MethodGet, "/api/v1/bookings/payment/confirm", nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmPayment_SlotResold(t *testing.T) {
	svc := &stubBookingService{
		booking: &domain.Booking{
			ID:                 7,
			Status:             domain.BookingStatusCancelled,
			CancellationReason: domain.CancelReasonRefundRequired,
		},
		err: domain.ErrSlotTaken,
	}
	router := newTestRouter(t, &service.Services{Booking: svc}, nil)

	w := performRequest(router, http.MethodGet, "/api/v1/bookings/payment/confirm?reference=strizh-abc", nil, nil)

	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Status string         `json:"status"`
		Data   domain.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, domain.CancelReasonRefundRequired, resp.Data.CancellationReason)
}

func TestGetFreeSlots_OK(t *testing.T) {
	svc := &stubAvailabilityService{slots: []string{"09:00", "09:15", "10:30"}}
	router := newTestRouter(t, &service.Services{Availability: svc}, nil)

	w := performRequest(router, http.MethodGet, "/api/v1/masters/1/free-slots?date=2026-09-10&service_id=1&addon_ids=2,3", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"09:00", "09:15", "10:30"}, resp.Data)
}

func TestGetFreeSlots_BadQuery(t *testing.T) {
	router := newTestRouter(t, &service.Services{Availability: &stubAvailabilityService{}}, nil)

	w := performRequest(router, http.MethodGet, "/api/v1/masters/1/free-slots?service_id=1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodGet, "/api/v1/masters/1/free-slots?date=2026-09-10", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodGet, "/api/v1/masters/1/free-slots?date=2026-09-10&service_id=1&addon_ids=x", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReminderSweep_TokenGuard(t *testing.T) {
	svc := &stubReminderService{result: &domain.SweepResult{Date: "2026-09-10", Total: 2, Sent: 2}}
	cfg := &config.Config{Sweep: config.SweepConfig{Token: "sweep-secret"}}
	router := newTestRouter(t, &service.Services{Reminder: svc}, cfg)

	w := performRequest(router, http.MethodPost, "/api/v1/internal/reminders/sweep", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, http.MethodPost, "/api/v1/internal/reminders/sweep", nil, map[string]string{
		"Authorization": "Bearer wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, http.MethodPost, "/api/v1/internal/reminders/sweep", nil, map[string]string{
		"Authorization": "Bearer sweep-secret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data domain.SweepResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Sent)
}

func TestReminderSweep_DisabledWithoutToken(t *testing.T) {
	router := newTestRouter(t, &service.Services{Reminder: &stubReminderService{}}, nil)

	w := performRequest(router, http.MethodPost, "/api/v1/internal/reminders/sweep", nil, map[string]string{
		"Authorization": "Bearer anything",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}
