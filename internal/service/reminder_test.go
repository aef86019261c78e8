package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"strizh/config"
	"strizh/internal/domain"
)

type reminderEnv struct {
	svc         *ReminderServiceImpl
	masterRepo  *fakeMasterRepo
	catalogRepo *fakeCatalogRepo
	bookingRepo *fakeBookingRepo
	notifier    *fakeNotifier
	masterID    int64
	serviceID   int64
}

func newReminderEnv(t *testing.T) *reminderEnv {
	t.Helper()

	masterRepo := newFakeMasterRepo()
	catalogRepo := newFakeCatalogRepo()
	bookingRepo := newFakeBookingRepo()
	notifier := &fakeNotifier{}

	svc := NewReminderService(bookingRepo, masterRepo, catalogRepo, notifier, config.BookingConfig{
		GranularityMinutes: 15,
		HoldTTL:            15 * time.Minute,
		Timezone:           "UTC",
	}, zap.NewNop())

	// Прогон всегда запускается 2026-09-09, завтра — 2026-09-10.
	svc.now = func() time.Time {
		return time.Date(2026, 9, 9, 8, 0, 0, 0, time.UTC)
	}

	return &reminderEnv{
		svc:         svc,
		masterRepo:  masterRepo,
		catalogRepo: catalogRepo,
		bookingRepo: bookingRepo,
		notifier:    notifier,
		masterID:    masterRepo.addMaster("Ирина", "Соколова"),
		serviceID:   catalogRepo.addService("Женская стрижка", 1500, 30),
	}
}

func (e *reminderEnv) addBooking(t *testing.T, date, clock string, status domain.BookingStatus) int64 {
	t.Helper()

	day, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)

	id, err := e.bookingRepo.CreateHold(context.Background(), domain.Booking{
		MasterID: e.masterID, ServiceID: e.serviceID,
		BookingDate: day, BookingTime: clock, DurationMinutes: 30,
		CustomerName: "Анна", CustomerEmail: "anna@example.com", CustomerPhone: "+79991234567",
	})
	require.NoError(t, err)

	if status != domain.BookingStatusPending {
		require.NoError(t, e.bookingRepo.Transition(context.Background(), id, status, domain.TransitionFields{ClearExpiry: true}))
	}
	return id
}

func TestReminder_SweepSendsForTomorrowOnly(t *testing.T) {
	env := newReminderEnv(t)

	tomorrowID := env.addBooking(t, "2026-09-10", "10:00", domain.BookingStatusConfirmed)
	env.addBooking(t, "2026-09-11", "10:00", domain.BookingStatusConfirmed)
	env.addBooking(t, "2026-09-10", "11:00", domain.BookingStatusPending)

	result, err := env.svc.RunSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2026-09-10", result.Date)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 0, result.Failed)

	calls := env.notifier.callsOf("reminder")
	require.Len(t, calls, 1)
	assert.Equal(t, tomorrowID, calls[0].bookingID)

	booking, err := env.bookingRepo.GetByID(context.Background(), tomorrowID)
	require.NoError(t, err)
	assert.True(t, booking.ReminderSent)
}

func TestReminder_SecondSweepDoesNotResend(t *testing.T) {
	env := newReminderEnv(t)
	env.addBooking(t, "2026-09-10", "10:00", domain.BookingStatusConfirmed)

	_, err := env.svc.RunSweep(context.Background())
	require.NoError(t, err)

	result, err := env.svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)

	assert.Len(t, env.notifier.callsOf("reminder"), 1)
}

func TestReminder_FailureLeavesUnmarkedAndRetries(t *testing.T) {
	env := newReminderEnv(t)
	id := env.addBooking(t, "2026-09-10", "10:00", domain.BookingStatusConfirmed)
	env.notifier.err = domain.ErrExternalService

	result, err := env.svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 1, result.Failed)

	// Флаг не выставлен, следующий прогон отправит повторно.
	booking, err := env.bookingRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, booking.ReminderSent)

	env.notifier.err = nil
	result, err = env.svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
}

func TestReminder_FailureDoesNotStopSweep(t *testing.T) {
	env := newReminderEnv(t)
	env.addBooking(t, "2026-09-10", "10:00", domain.BookingStatusConfirmed)
	env.addBooking(t, "2026-09-10", "12:00", domain.BookingStatusConfirmed)
	env.addBooking(t, "2026-09-10", "14:00", domain.BookingStatusConfirmed)

	// Первая отправка падает, остальные проходят.
	env.notifier.failFirst = 1

	result, err := env.svc.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, env.notifier.callsOf("reminder"), 2)
}
