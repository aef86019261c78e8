package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"strizh/config"
	"strizh/internal/domain"
)

type bookingEnv struct {
	svc          *BookingServiceImpl
	availability *AvailabilityServiceImpl
	masterRepo   *fakeMasterRepo
	scheduleRepo *fakeScheduleRepo
	catalogRepo  *fakeCatalogRepo
	bookingRepo  *fakeBookingRepo
	payment      *fakePaymentProvider
	notifier     *fakeNotifier
	masterID     int64
	serviceID    int64
}

func newBookingEnv(t *testing.T) *bookingEnv {
	t.Helper()

	masterRepo := newFakeMasterRepo()
	scheduleRepo := newFakeScheduleRepo()
	catalogRepo := newFakeCatalogRepo()
	bookingRepo := newFakeBookingRepo()
	paymentProvider := newFakePaymentProvider()
	notifier := &fakeNotifier{}

	bookingCfg := config.BookingConfig{
		GranularityMinutes: 15,
		HoldTTL:            15 * time.Minute,
		Timezone:           "UTC",
	}
	paymentCfg := config.PaymentConfig{
		CallbackURL: "https://strizh.app/payment/callback",
	}

	catalog := NewCatalogService(catalogRepo, zap.NewNop())
	availability := NewAvailabilityService(scheduleRepo, bookingRepo, masterRepo, catalog, bookingCfg, zap.NewNop())
	availability.now = func() time.Time {
		return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	}
	svc := NewBookingService(bookingRepo, masterRepo, catalog, availability, paymentProvider, notifier, bookingCfg, paymentCfg, zap.NewNop())

	masterID := masterRepo.addMaster("Ирина", "Соколова")
	serviceID := catalogRepo.addService("Женская стрижка", 1500, 30)

	for day := domain.DaySunday; day <= domain.DaySaturday; day++ {
		_, err := scheduleRepo.Upsert(context.Background(), masterID, domain.UpsertWeeklyScheduleDTO{
			DayOfWeek: day, StartTime: "09:00", EndTime: "17:00", IsAvailable: true,
		})
		require.NoError(t, err)
	}

	return &bookingEnv{
		svc:          svc,
		availability: availability,
		masterRepo:   masterRepo,
		scheduleRepo: scheduleRepo,
		catalogRepo:  catalogRepo,
		bookingRepo:  bookingRepo,
		payment:      paymentProvider,
		notifier:     notifier,
		masterID:     masterID,
		serviceID:    serviceID,
	}
}

func (e *bookingEnv) createDTO(clock string) domain.CreateBookingDTO {
	return domain.CreateBookingDTO{
		MasterID:      e.masterID,
		ServiceID:     e.serviceID,
		BookingDate:   "2026-09-10",
		BookingTime:   clock,
		CustomerName:  "Анна",
		CustomerEmail: "anna@example.com",
		CustomerPhone: "+79991234567",
	}
}

func TestBooking_InitiateCreatesHoldAndPaymentSession(t *testing.T) {
	env := newBookingEnv(t)

	hold, err := env.svc.Initiate(context.Background(), env.createDTO("10:00"))
	require.NoError(t, err)

	assert.NotZero(t, hold.BookingID)
	assert.NotEmpty(t, hold.PaymentReference)
	assert.Contains(t, hold.AuthorizationURL, hold.PaymentReference)
	assert.Equal(t, 1500.0, hold.Amount)
	assert.True(t, hold.ExpiresAt.After(time.Now()))

	booking, err := env.bookingRepo.GetByID(context.Background(), hold.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	require.NotNil(t, booking.ExpiresAt)
}

func TestBooking_InitiateValidation(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	dto := env.createDTO("10:00")
	dto.BookingDate = "10.09.2026"
	_, err := env.svc.Initiate(ctx, dto)
	assert.ErrorIs(t, err, domain.ErrValidation)

	dto = env.createDTO("25:00")
	_, err = env.svc.Initiate(ctx, dto)
	assert.ErrorIs(t, err, domain.ErrValidation)

	dto = env.createDTO("10:00")
	dto.CustomerPhone = "не телефон"
	_, err = env.svc.Initiate(ctx, dto)
	assert.ErrorIs(t, err, domain.ErrValidation)

	dto = env.createDTO("10:00")
	dto.ServiceID = 999
	_, err = env.svc.Initiate(ctx, dto)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Вне рабочего окна.
	dto = env.createDTO("18:00")
	_, err = env.svc.Initiate(ctx, dto)
	assert.ErrorIs(t, err, domain.ErrSlotTaken)
}

func TestBooking_InitiateRejectsTakenSlot(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	_, err := env.svc.Initiate(ctx, env.createDTO("10:00"))
	require.NoError(t, err)

	// Пересечение с активным удержанием, не только точное совпадение.
	_, err = env.svc.Initiate(ctx, env.createDTO("10:15"))
	assert.ErrorIs(t, err, domain.ErrSlotTaken)

	// Касание границы допустимо.
	_, err = env.svc.Initiate(ctx, env.createDTO("10:30"))
	assert.NoError(t, err)
}

func TestBooking_InitiateReleasesHoldOnPaymentFailure(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()
	env.payment.initErr = domain.ErrExternalService

	_, err := env.svc.Initiate(ctx, env.createDTO("10:00"))
	assert.ErrorIs(t, err, domain.ErrExternalService)

	// Слот освобожден сразу, повторная попытка не ждет истечения TTL.
	env.payment.initErr = nil
	_, err = env.svc.Initiate(ctx, env.createDTO("10:00"))
	assert.NoError(t, err)
}

func TestBooking_ConcurrentInitiateSingleWinner(t *testing.T) {
	env := newBookingEnv(t)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Initiate(context.Background(), env.createDTO("10:00"))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domain.ErrSlotTaken)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestBooking_ConfirmPayment(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	hold, err := env.svc.Initiate(ctx, env.createDTO("10:00"))
	require.NoError(t, err)

	booking, err := env.svc.ConfirmPayment(ctx, hold.PaymentReference)
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	assert.Nil(t, booking.ExpiresAt)
	assert.Equal(t, "Ирина Соколова", booking.MasterName)
	assert.Equal(t, "Женская стрижка", booking.ServiceName)

	calls := env.notifier.callsOf("confirmed")
	require.Len(t, calls, 1)
	assert.Equal(t, hold.BookingID, calls[0].bookingID)
}

func TestBooking_ConfirmPaymentIdempotent(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	hold, err := env.svc.Initiate(ctx, env.createDTO("10:00"))
	require.NoError(t, err)

	_, err = env.svc.ConfirmPayment(ctx, hold.PaymentReference)
	require.NoError(t, err)

	booking, err := env.svc.ConfirmPayment(ctx, hold.PaymentReference)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
}

func TestBooking_ConfirmPaymentRejectsUnpaid(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	hold, err := env.svc.Initiate(ctx, env.createDTO("10:00"))
	require.NoError(t, err)

	env.payment.status = "abandoned"
	_, err = env.svc.ConfirmPayment(ctx, hold.PaymentReference)
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Запись осталась pending, подтверждения не произошло.
	booking, err := env.bookingRepo.GetByID(ctx, hold.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Empty(t, env.notifier.callsOf("confirmed"))
}

func TestBooking_ConfirmPaymentProviderDown(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	hold, err := env.svc.Initiate(ctx, env.createDTO("10:00"))
	require.NoError(t, err)

	env.payment.verifyErr = fmt.Errorf("%w: таймаут", domain.ErrExternalService)
	_, err = env.svc.ConfirmPayment(ctx, hold.PaymentReference)
	assert.ErrorIs(t, err, domain.ErrExternalService)

	booking, err := env.bookingRepo.GetByID(ctx, hold.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
}

func TestBooking_ConfirmPaymentAfterSlotResold(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	// Первое удержание истекает, второй клиент занимает тот же слот.
	env.bookingRepo.now = func() time.Time { return time.Now() }
	hold1, err := env.svc.Initiate(ctx, env.createDTO("10:00"))
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	booking1, err := env.bookingRepo.GetByID(ctx, hold1.BookingID)
	require.NoError(t, err)
	booking1.ExpiresAt = &expired
	env.bookingRepo.mu.Lock()
	env.bookingRepo.bookings[hold1.BookingID] = *booking1
	env.bookingRepo.mu.Unlock()

	hold2, err := env.svc.Initiate(ctx, env.createDTO("10:00"))
	require.NoError(t, err)
	_, err = env.svc.ConfirmPayment(ctx, hold2.PaymentReference)
	require.NoError(t, err)

	// Оплата первого клиента пришла после перепродажи слота: запись
	// отменяется с пометкой о возврате, клиент уведомлен.
	booking, err := env.svc.ConfirmPayment(ctx, hold1.PaymentReference)
	assert.ErrorIs(t, err, domain.ErrSlotTaken)
	require.NotNil(t, booking)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	assert.Equal(t, domain.CancelReasonRefundRequired, booking.CancellationReason)

	cancelCalls := env.notifier.callsOf("cancelled")
	require.Len(t, cancelCalls, 1)
	assert.Equal(t, hold1.BookingID, cancelCalls[0].bookingID)
}

func TestBooking_CancelAndComplete(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	hold, err := env.svc.Initiate(ctx, env.createDTO("10:00"))
	require.NoError(t, err)
	_, err = env.svc.ConfirmPayment(ctx, hold.PaymentReference)
	require.NoError(t, err)

	// Завершить можно только подтвержденную запись.
	require.NoError(t, env.svc.Complete(ctx, hold.BookingID))

	err = env.svc.Complete(ctx, hold.BookingID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = env.svc.Cancel(ctx, hold.BookingID, "клиент передумал")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBooking_CancelNotifiesCustomer(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	hold, err := env.svc.Initiate(ctx, env.createDTO("10:00"))
	require.NoError(t, err)
	_, err = env.svc.ConfirmPayment(ctx, hold.PaymentReference)
	require.NoError(t, err)

	require.NoError(t, env.svc.Cancel(ctx, hold.BookingID, "клиент попросил перенос"))

	booking, err := env.bookingRepo.GetByID(ctx, hold.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	assert.Equal(t, "клиент попросил перенос", booking.CancellationReason)

	calls := env.notifier.callsOf("cancelled")
	require.Len(t, calls, 1)
	assert.Equal(t, "клиент попросил перенос", calls[0].reason)
}
