package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"strizh/internal/domain"
	"strizh/internal/notify"
	"strizh/internal/repository"
	"strizh/pkg/validator"
)

type ScheduleServiceImpl struct {
	repo        repository.ScheduleRepository
	masterRepo  repository.MasterRepository
	bookingRepo repository.BookingRepository
	notifier    notify.Notifier
	logger      *zap.Logger
}

func NewScheduleService(
	repo repository.ScheduleRepository,
	masterRepo repository.MasterRepository,
	bookingRepo repository.BookingRepository,
	notifier notify.Notifier,
	logger *zap.Logger,
) *ScheduleServiceImpl {
	return &ScheduleServiceImpl{
		repo:        repo,
		masterRepo:  masterRepo,
		bookingRepo: bookingRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *ScheduleServiceImpl) UpsertWeekly(ctx context.Context, masterID int64, dto domain.UpsertWeeklyScheduleDTO) (int64, error) {
	if _, err := s.masterRepo.GetByID(ctx, masterID); err != nil {
		return 0, err
	}

	if !dto.DayOfWeek.IsValid() {
		return 0, fmt.Errorf("%w: день недели должен быть в диапазоне 0..6", domain.ErrValidation)
	}

	if !validator.ValidateClock(dto.StartTime) || !validator.ValidateClock(dto.EndTime) {
		return 0, fmt.Errorf("%w: время задается в формате HH:MM", domain.ErrValidation)
	}

	start, _ := domain.ClockToMinutes(dto.StartTime)
	end, _ := domain.ClockToMinutes(dto.EndTime)
	if start >= end {
		return 0, fmt.Errorf("%w: время начала должно быть раньше времени окончания", domain.ErrValidation)
	}

	id, err := s.repo.Upsert(ctx, masterID, dto)
	if err != nil {
		s.logger.Error("ошибка сохранения недельного расписания",
			zap.Int64("masterId", masterID),
			zap.Error(err),
		)
		return 0, errors.New("ошибка при сохранении расписания")
	}

	return id, nil
}

func (s *ScheduleServiceImpl) ListWeekly(ctx context.Context, masterID int64) ([]domain.WeeklySchedule, error) {
	if _, err := s.masterRepo.GetByID(ctx, masterID); err != nil {
		return nil, err
	}

	schedules, err := s.repo.ListByMaster(ctx, masterID)
	if err != nil {
		s.logger.Error("ошибка получения расписания", zap.Int64("masterId", masterID), zap.Error(err))
		return nil, errors.New("ошибка при получении расписания")
	}

	return schedules, nil
}

// EffectiveWindow проверяет сначала отгулы, затем недельное расписание.
// Отсутствие строки на день недели означает выходной.
func (s *ScheduleServiceImpl) EffectiveWindow(ctx context.Context, masterID int64, date time.Time) (*domain.EffectiveWindow, error) {
	hasTimeOff, err := s.repo.HasTimeOff(ctx, masterID, date)
	if err != nil {
		s.logger.Error("ошибка проверки отгула", zap.Int64("masterId", masterID), zap.Error(err))
		return nil, errors.New("ошибка при расчете рабочего окна")
	}
	if hasTimeOff {
		return &domain.EffectiveWindow{Open: false}, nil
	}

	schedule, err := s.repo.GetByMasterAndDay(ctx, masterID, domain.DayOfWeekOf(date))
	if err != nil {
		s.logger.Error("ошибка получения расписания на день", zap.Int64("masterId", masterID), zap.Error(err))
		return nil, errors.New("ошибка при расчете рабочего окна")
	}

	if schedule == nil || !schedule.IsAvailable {
		return &domain.EffectiveWindow{Open: false}, nil
	}

	return &domain.EffectiveWindow{
		Open:      true,
		StartTime: schedule.StartTime,
		EndTime:   schedule.EndTime,
	}, nil
}

// MarkUnavailable создает отгул и отменяет активные записи в его диапазоне.
// Операция идемпотентна: если период уже накрыт существующим отгулом, новая
// запись не создается, но отмена затронутых записей выполняется повторно.
func (s *ScheduleServiceImpl) MarkUnavailable(ctx context.Context, masterID int64, dto domain.CreateTimeOffDTO) (*domain.TimeOffResult, error) {
	if _, err := s.masterRepo.GetByID(ctx, masterID); err != nil {
		return nil, err
	}

	startDate, err := validator.ParseDate(dto.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	endDate, err := validator.ParseDate(dto.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: дата окончания раньше даты начала", domain.ErrValidation)
	}
	if dto.Reason == "" {
		return nil, fmt.Errorf("%w: причина обязательна", domain.ErrValidation)
	}

	result := &domain.TimeOffResult{
		CancelledBookingIDs: []int64{},
	}

	covered, err := s.repo.HasTimeOffCovering(ctx, masterID, startDate, endDate)
	if err != nil {
		s.logger.Error("ошибка проверки существующих отгулов", zap.Error(err))
		return nil, errors.New("ошибка при оформлении отгула")
	}

	if !covered {
		if _, err := s.repo.CreateTimeOff(ctx, masterID, startDate, endDate, dto.Reason); err != nil {
			s.logger.Error("ошибка создания отгула", zap.Int64("masterId", masterID), zap.Error(err))
			return nil, errors.New("ошибка при оформлении отгула")
		}
		result.TimeOffCreated = true
	}

	cancellationReason := fmt.Sprintf("Staff unavailable: %s", dto.Reason)

	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		bookings, err := s.bookingRepo.ListActiveBookings(ctx, masterID, date)
		if err != nil {
			s.logger.Error("ошибка получения записей для отмены",
				zap.Int64("masterId", masterID),
				zap.Time("date", date),
				zap.Error(err),
			)
			return result, errors.New("отгул оформлен, но не все записи удалось отменить")
		}

		for _, booking := range bookings {
			err := s.bookingRepo.Transition(ctx, booking.ID, domain.BookingStatusCancelled, domain.TransitionFields{
				CancellationReason: cancellationReason,
			})
			if err != nil {
				s.logger.Error("ошибка отмены записи при отгуле",
					zap.Int64("bookingId", booking.ID),
					zap.Error(err),
				)
				return result, errors.New("отгул оформлен, но не все записи удалось отменить")
			}
			result.CancelledBookingIDs = append(result.CancelledBookingIDs, booking.ID)

			if err := s.notifier.BookingCancelled(ctx, booking, cancellationReason); err != nil {
				s.logger.Warn("не удалось уведомить клиента об отмене",
					zap.Int64("bookingId", booking.ID),
					zap.Error(err),
				)
				result.NotifyFailures++
			}
		}
	}

	return result, nil
}

func (s *ScheduleServiceImpl) ListTimeOff(ctx context.Context, masterID int64) ([]domain.TimeOff, error) {
	if _, err := s.masterRepo.GetByID(ctx, masterID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListTimeOff(ctx, masterID)
	if err != nil {
		s.logger.Error("ошибка получения списка отгулов", zap.Int64("masterId", masterID), zap.Error(err))
		return nil, errors.New("ошибка при получении списка отгулов")
	}

	return records, nil
}
