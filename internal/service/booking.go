package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"strizh/config"
	"strizh/internal/domain"
	"strizh/internal/notify"
	"strizh/internal/payment"
	"strizh/internal/repository"
	"strizh/pkg/validator"
)

type BookingServiceImpl struct {
	repo         repository.BookingRepository
	masterRepo   repository.MasterRepository
	catalog      CatalogService
	availability AvailabilityService
	payment      payment.Provider
	notifier     notify.Notifier
	bookingCfg   config.BookingConfig
	paymentCfg   config.PaymentConfig
	logger       *zap.Logger
}

func NewBookingService(
	repo repository.BookingRepository,
	masterRepo repository.MasterRepository,
	catalog CatalogService,
	availability AvailabilityService,
	paymentProvider payment.Provider,
	notifier notify.Notifier,
	bookingCfg config.BookingConfig,
	paymentCfg config.PaymentConfig,
	logger *zap.Logger,
) *BookingServiceImpl {
	return &BookingServiceImpl{
		repo:         repo,
		masterRepo:   masterRepo,
		catalog:      catalog,
		availability: availability,
		payment:      paymentProvider,
		notifier:     notifier,
		bookingCfg:   bookingCfg,
		paymentCfg:   paymentCfg,
		logger:       logger,
	}
}

// Initiate — первая фаза бронирования. Слот удерживается pending-записью с
// TTL, затем создается платежная сессия. Если платежный шлюз недоступен,
// удержание снимается сразу, не дожидаясь истечения TTL.
func (s *BookingServiceImpl) Initiate(ctx context.Context, dto domain.CreateBookingDTO) (*domain.BookingHold, error) {
	bookingDate, err := validator.ParseDate(dto.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("%w: дата задается в формате YYYY-MM-DD", domain.ErrValidation)
	}

	if !validator.ValidateClock(dto.BookingTime) {
		return nil, fmt.Errorf("%w: время задается в формате HH:MM", domain.ErrValidation)
	}

	if !validator.ValidatePhone(dto.CustomerPhone) {
		return nil, fmt.Errorf("%w: некорректный номер телефона", domain.ErrValidation)
	}

	quote, err := s.catalog.Quote(ctx, dto.ServiceID, dto.AddonIDs)
	if err != nil {
		return nil, err
	}

	freeSlots, err := s.availability.GetFreeSlots(ctx, dto.MasterID, dto.BookingDate, dto.ServiceID, dto.AddonIDs)
	if err != nil {
		return nil, err
	}

	timeIsAvailable := false
	for _, slot := range freeSlots {
		if slot == dto.BookingTime {
			timeIsAvailable = true
			break
		}
	}
	if !timeIsAvailable {
		return nil, fmt.Errorf("%w: выбранное время недоступно", domain.ErrSlotTaken)
	}

	reference := "strizh-" + uuid.New().String()
	expiresAt := time.Now().Add(s.bookingCfg.HoldTTL)

	booking := domain.Booking{
		MasterID:         dto.MasterID,
		ServiceID:        dto.ServiceID,
		AddonIDs:         dto.AddonIDs,
		BookingDate:      bookingDate,
		BookingTime:      dto.BookingTime,
		DurationMinutes:  quote.DurationMinutes,
		CustomerName:     dto.CustomerName,
		CustomerEmail:    dto.CustomerEmail,
		CustomerPhone:    validator.FormatPhone(dto.CustomerPhone),
		PaymentReference: reference,
		Amount:           quote.Amount,
		ExpiresAt:        &expiresAt,
	}

	bookingID, err := s.repo.CreateHold(ctx, booking)
	if err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			return nil, err
		}
		s.logger.Error("ошибка удержания слота", zap.Error(err))
		return nil, errors.New("ошибка при создании записи")
	}

	initResp, err := s.payment.Initialize(ctx, payment.InitializeRequest{
		Email:       dto.CustomerEmail,
		AmountMinor: int64(quote.Amount * 100),
		Reference:   reference,
		CallbackURL: s.paymentCfg.CallbackURL,
		Metadata: map[string]string{
			"booking_id": fmt.Sprintf("%d", bookingID),
		},
	})
	if err != nil {
		s.logger.Error("ошибка создания платежной сессии",
			zap.Int64("bookingId", bookingID),
			zap.Error(err),
		)

		cancelErr := s.repo.Transition(ctx, bookingID, domain.BookingStatusCancelled, domain.TransitionFields{
			CancellationReason: "Не удалось создать платежную сессию",
		})
		if cancelErr != nil {
			s.logger.Error("не удалось снять удержание после сбоя оплаты",
				zap.Int64("bookingId", bookingID),
				zap.Error(cancelErr),
			)
		}

		return nil, fmt.Errorf("%w: платежный сервис недоступен", domain.ErrExternalService)
	}

	return &domain.BookingHold{
		BookingID:        bookingID,
		PaymentReference: reference,
		AuthorizationURL: initResp.AuthorizationURL,
		Amount:           quote.Amount,
		ExpiresAt:        expiresAt,
	}, nil
}

// ConfirmPayment — вторая фаза. Статус оплаты всегда перепроверяется у
// провайдера, повторный вызов для уже подтвержденной записи безопасен.
func (s *BookingServiceImpl) ConfirmPayment(ctx context.Context, reference string) (*domain.Booking, error) {
	verify, err := s.payment.Verify(ctx, reference)
	if err != nil {
		s.logger.Error("ошибка проверки оплаты", zap.String("reference", reference), zap.Error(err))
		return nil, err
	}

	if !verify.Success() {
		return nil, fmt.Errorf("%w: оплата не подтверждена, статус %q", domain.ErrValidation, verify.Status)
	}

	booking, err := s.repo.ConfirmByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, domain.ErrSlotTaken) && booking != nil {
			// Оплата прошла, но слот потерян: клиенту уходит уведомление
			// об отмене, средства возвращаются.
			s.logger.Warn("оплаченное удержание истекло, слот занят",
				zap.Int64("bookingId", booking.ID),
				zap.String("reference", reference),
			)
			if notifyErr := s.notifier.BookingCancelled(ctx, *booking, booking.CancellationReason); notifyErr != nil {
				s.logger.Warn("не удалось уведомить об отмене", zap.Error(notifyErr))
			}
			return booking, err
		}
		return nil, err
	}

	s.enrich(ctx, booking)

	if notifyErr := s.notifier.BookingConfirmed(ctx, *booking); notifyErr != nil {
		s.logger.Warn("не удалось отправить подтверждение",
			zap.Int64("bookingId", booking.ID),
			zap.Error(notifyErr),
		)
	}

	return booking, nil
}

func (s *BookingServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.enrich(ctx, booking)
	return booking, nil
}

// GetByReference возвращает запись по платежной ссылке. Ссылку знает только
// клиент, создавший запись, поэтому доступ не требует авторизации.
func (s *BookingServiceImpl) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	booking, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	s.enrich(ctx, booking)
	return booking, nil
}

func (s *BookingServiceImpl) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка записей", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении списка записей")
	}

	for i := range bookings {
		s.enrich(ctx, &bookings[i])
	}

	return bookings, total, nil
}

func (s *BookingServiceImpl) Cancel(ctx context.Context, id int64, reason string) error {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if booking.Status.IsTerminal() {
		return fmt.Errorf("%w: запись уже завершена или отменена", domain.ErrValidation)
	}

	if reason == "" {
		reason = "Отменено администратором"
	}

	err = s.repo.Transition(ctx, id, domain.BookingStatusCancelled, domain.TransitionFields{
		CancellationReason: reason,
	})
	if err != nil {
		s.logger.Error("ошибка отмены записи", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при отмене записи")
	}

	booking.CancellationReason = reason
	s.enrich(ctx, booking)

	if notifyErr := s.notifier.BookingCancelled(ctx, *booking, reason); notifyErr != nil {
		s.logger.Warn("не удалось уведомить клиента об отмене",
			zap.Int64("bookingId", id),
			zap.Error(notifyErr),
		)
	}

	return nil
}

func (s *BookingServiceImpl) Complete(ctx context.Context, id int64) error {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if booking.Status != domain.BookingStatusConfirmed {
		return fmt.Errorf("%w: завершить можно только подтвержденную запись", domain.ErrValidation)
	}

	if err := s.repo.Transition(ctx, id, domain.BookingStatusCompleted, domain.TransitionFields{}); err != nil {
		s.logger.Error("ошибка завершения записи", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при завершении записи")
	}

	return nil
}

// enrich дополняет запись именами мастера и услуги для ответов и
// текстов уведомлений. Сбои не критичны.
func (s *BookingServiceImpl) enrich(ctx context.Context, booking *domain.Booking) {
	if master, err := s.masterRepo.GetByID(ctx, booking.MasterID); err == nil {
		booking.MasterName = master.User.FirstName + " " + master.User.LastName
	}

	if svc, err := s.catalog.GetServiceByID(ctx, booking.ServiceID); err == nil {
		booking.ServiceName = svc.Name
	}
}
