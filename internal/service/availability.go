package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"strizh/config"
	"strizh/internal/domain"
	"strizh/internal/repository"
	"strizh/pkg/validator"
)

type AvailabilityServiceImpl struct {
	scheduleRepo repository.ScheduleRepository
	bookingRepo  repository.BookingRepository
	masterRepo   repository.MasterRepository
	catalog      CatalogService
	cfg          config.BookingConfig
	logger       *zap.Logger

	// подменяется в тестах
	now func() time.Time
}

func NewAvailabilityService(
	scheduleRepo repository.ScheduleRepository,
	bookingRepo repository.BookingRepository,
	masterRepo repository.MasterRepository,
	catalog CatalogService,
	cfg config.BookingConfig,
	logger *zap.Logger,
) *AvailabilityServiceImpl {
	return &AvailabilityServiceImpl{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		masterRepo:   masterRepo,
		catalog:      catalog,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *AvailabilityServiceImpl) GetFreeSlots(ctx context.Context, masterID int64, date string, serviceID int64, addonIDs []int64) ([]string, error) {
	if _, err := s.masterRepo.GetByID(ctx, masterID); err != nil {
		return nil, err
	}

	day, err := validator.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: дата задается в формате YYYY-MM-DD", domain.ErrValidation)
	}

	// Прошедшие даты никогда не отдаются: сравнение идет по календарному
	// дню салона, а не по UTC.
	loc, locErr := time.LoadLocation(s.cfg.Timezone)
	if locErr != nil {
		loc = time.UTC
	}
	localNow := s.now().In(loc)
	today := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(today) {
		return []string{}, nil
	}

	quote, err := s.catalog.Quote(ctx, serviceID, addonIDs)
	if err != nil {
		return nil, err
	}

	window, err := s.effectiveWindow(ctx, masterID, day)
	if err != nil {
		return nil, err
	}
	if !window.Open {
		return []string{}, nil
	}

	occupied, err := s.bookingRepo.ListActive(ctx, masterID, day)
	if err != nil {
		s.logger.Error("ошибка получения занятых интервалов",
			zap.Int64("masterId", masterID),
			zap.String("date", date),
			zap.Error(err),
		)
		return nil, errors.New("ошибка при расчете свободных слотов")
	}

	return s.computeSlots(window, occupied, day, quote.DurationMinutes), nil
}

func (s *AvailabilityServiceImpl) effectiveWindow(ctx context.Context, masterID int64, date time.Time) (*domain.EffectiveWindow, error) {
	hasTimeOff, err := s.scheduleRepo.HasTimeOff(ctx, masterID, date)
	if err != nil {
		return nil, errors.New("ошибка при расчете свободных слотов")
	}
	if hasTimeOff {
		return &domain.EffectiveWindow{Open: false}, nil
	}

	schedule, err := s.scheduleRepo.GetByMasterAndDay(ctx, masterID, domain.DayOfWeekOf(date))
	if err != nil {
		return nil, errors.New("ошибка при расчете свободных слотов")
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

// computeSlots перебирает сетку от начала окна с шагом granularity и
// оставляет времена, в которые услуга целиком помещается в окно и не
// пересекается ни с одной активной записью. Для сегодняшней даты прошедшие
// времена отбрасываются.
func (s *AvailabilityServiceImpl) computeSlots(window *domain.EffectiveWindow, occupied []domain.OccupiedInterval, date time.Time, durationMinutes int) []string {
	windowStart, err := domain.ClockToMinutes(window.StartTime)
	if err != nil {
		return []string{}
	}
	windowEnd, err := domain.ClockToMinutes(window.EndTime)
	if err != nil {
		return []string{}
	}

	granularity := s.cfg.GranularityMinutes
	if granularity <= 0 {
		granularity = 15
	}

	cutoff := -1
	now := s.now()
	if date.Year() == now.Year() && date.YearDay() == now.YearDay() {
		cutoff = now.Hour()*60 + now.Minute()
	}

	slots := make([]string, 0)
	for t := windowStart; t+durationMinutes <= windowEnd; t += granularity {
		if t <= cutoff {
			continue
		}

		free := true
		for _, occ := range occupied {
			if domain.IntervalsOverlap(t, t+durationMinutes, occ.StartMinutes, occ.EndMinutes) {
				free = false
				break
			}
		}

		if free {
			slots = append(slots, domain.MinutesToClock(t))
		}
	}

	return slots
}
