package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"strizh/internal/domain"
	"strizh/internal/repository"
)

type CatalogServiceImpl struct {
	repo   repository.CatalogRepository
	logger *zap.Logger
}

func NewCatalogService(repo repository.CatalogRepository, logger *zap.Logger) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *CatalogServiceImpl) CreateService(ctx context.Context, dto domain.CreateServiceDTO) (int64, error) {
	id, err := s.repo.CreateService(ctx, dto)
	if err != nil {
		s.logger.Error("ошибка создания услуги", zap.Error(err))
		return 0, errors.New("ошибка при создании услуги")
	}
	return id, nil
}

func (s *CatalogServiceImpl) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogServiceImpl) UpdateService(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error {
	if _, err := s.repo.GetServiceByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.UpdateService(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления услуги", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при обновлении услуги")
	}

	return nil
}

func (s *CatalogServiceImpl) ListServices(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	services, total, err := s.repo.ListServices(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка услуг", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении списка услуг")
	}

	return services, total, nil
}

func (s *CatalogServiceImpl) CreateAddon(ctx context.Context, dto domain.CreateAddonDTO) (int64, error) {
	id, err := s.repo.CreateAddon(ctx, dto)
	if err != nil {
		s.logger.Error("ошибка создания допуслуги", zap.Error(err))
		return 0, errors.New("ошибка при создании допуслуги")
	}
	return id, nil
}

func (s *CatalogServiceImpl) UpdateAddon(ctx context.Context, id int64, dto domain.UpdateAddonDTO) error {
	if err := s.repo.UpdateAddon(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления допуслуги", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *CatalogServiceImpl) ListAddons(ctx context.Context, onlyActive bool) ([]domain.Addon, error) {
	addons, err := s.repo.ListAddons(ctx, onlyActive)
	if err != nil {
		s.logger.Error("ошибка получения списка допуслуг", zap.Error(err))
		return nil, errors.New("ошибка при получении списка допуслуг")
	}
	return addons, nil
}

// Quote агрегирует длительность и стоимость по услуге и допам.
// Неактивная услуга или неизвестный доп отклоняются.
func (s *CatalogServiceImpl) Quote(ctx context.Context, serviceID int64, addonIDs []int64) (*domain.Quote, error) {
	svc, err := s.repo.GetServiceByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if !svc.IsActive {
		return nil, fmt.Errorf("%w: услуга недоступна для записи", domain.ErrValidation)
	}

	quote := &domain.Quote{
		Service:         *svc,
		Addons:          []domain.Addon{},
		DurationMinutes: svc.DurationMinutes,
		Amount:          svc.Price,
	}

	if len(addonIDs) == 0 {
		return quote, nil
	}

	addons, err := s.repo.GetAddonsByIDs(ctx, addonIDs)
	if err != nil {
		s.logger.Error("ошибка получения допуслуг", zap.Error(err))
		return nil, errors.New("ошибка при расчете стоимости")
	}

	if len(addons) != len(addonIDs) {
		return nil, fmt.Errorf("%w: указана несуществующая допуслуга", domain.ErrValidation)
	}

	for _, addon := range addons {
		if !addon.IsActive {
			return nil, fmt.Errorf("%w: допуслуга %q недоступна", domain.ErrValidation, addon.Name)
		}
		quote.DurationMinutes += addon.DurationMinutes
		quote.Amount += addon.Price
	}
	quote.Addons = addons

	return quote, nil
}
