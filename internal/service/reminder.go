package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"strizh/config"
	"strizh/internal/domain"
	"strizh/internal/notify"
	"strizh/internal/repository"
)

type ReminderServiceImpl struct {
	bookingRepo repository.BookingRepository
	masterRepo  repository.MasterRepository
	catalogRepo repository.CatalogRepository
	notifier    notify.Notifier
	cfg         config.BookingConfig
	logger      *zap.Logger

	// подменяется в тестах
	now func() time.Time
}

func NewReminderService(
	bookingRepo repository.BookingRepository,
	masterRepo repository.MasterRepository,
	catalogRepo repository.CatalogRepository,
	notifier notify.Notifier,
	cfg config.BookingConfig,
	logger *zap.Logger,
) *ReminderServiceImpl {
	return &ReminderServiceImpl{
		bookingRepo: bookingRepo,
		masterRepo:  masterRepo,
		catalogRepo: catalogRepo,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// RunSweep обходит завтрашние подтвержденные записи без отметки о
// напоминании. Флаг reminder_sent выставляется только после успешной
// отправки, поэтому сбой канала приводит к повтору на следующем прогоне,
// а не к потерянному напоминанию. Сбой по одной записи не прерывает обход.
func (s *ReminderServiceImpl) RunSweep(ctx context.Context) (*domain.SweepResult, error) {
	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}

	now := s.now().In(loc)
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	bookings, err := s.bookingRepo.ListForReminder(ctx, tomorrow)
	if err != nil {
		s.logger.Error("ошибка выборки записей для напоминаний", zap.Error(err))
		return nil, errors.New("ошибка при рассылке напоминаний")
	}

	result := &domain.SweepResult{
		Date:  tomorrow.Format("2006-01-02"),
		Total: len(bookings),
	}

	for _, booking := range bookings {
		s.enrich(ctx, &booking)

		if err := s.notifier.BookingReminder(ctx, booking); err != nil {
			s.logger.Warn("не удалось отправить напоминание",
				zap.Int64("bookingId", booking.ID),
				zap.Error(err),
			)
			result.Failed++
			continue
		}

		if err := s.bookingRepo.MarkReminderSent(ctx, booking.ID); err != nil {
			s.logger.Error("не удалось отметить отправленное напоминание",
				zap.Int64("bookingId", booking.ID),
				zap.Error(err),
			)
			result.Failed++
			continue
		}

		result.Sent++
	}

	s.logger.Info("прогон напоминаний завершен",
		zap.String("date", result.Date),
		zap.Int("total", result.Total),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

func (s *ReminderServiceImpl) enrich(ctx context.Context, booking *domain.Booking) {
	if master, err := s.masterRepo.GetByID(ctx, booking.MasterID); err == nil {
		booking.MasterName = master.User.FirstName + " " + master.User.LastName
	}

	if svc, err := s.catalogRepo.GetServiceByID(ctx, booking.ServiceID); err == nil {
		booking.ServiceName = svc.Name
	}
}
