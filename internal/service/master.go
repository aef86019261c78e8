package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"strizh/internal/domain"
	"strizh/internal/repository"
	"strizh/internal/storage"
)

type MasterServiceImpl struct {
	repo        repository.MasterRepository
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
	logger      *zap.Logger
}

func NewMasterService(
	repo repository.MasterRepository,
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
	logger *zap.Logger,
) *MasterServiceImpl {
	return &MasterServiceImpl{
		repo:        repo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

func (s *MasterServiceImpl) Create(ctx context.Context, userID int64, dto domain.CreateMasterDTO) (int64, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		s.logger.Warn("пользователь для профиля мастера не найден", zap.Int64("userId", userID), zap.Error(err))
		return 0, err
	}

	if existing, err := s.repo.GetByUserID(ctx, userID); err == nil && existing != nil {
		return 0, fmt.Errorf("%w: профиль мастера уже существует", domain.ErrValidation)
	}

	id, err := s.repo.Create(ctx, userID, dto)
	if err != nil {
		s.logger.Error("ошибка создания профиля мастера", zap.Error(err))
		return 0, errors.New("ошибка при создании профиля мастера")
	}

	return id, nil
}

func (s *MasterServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Master, error) {
	master, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("мастер не найден", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return master, nil
}

func (s *MasterServiceImpl) GetByUserID(ctx context.Context, userID int64) (*domain.Master, error) {
	master, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return master, nil
}

func (s *MasterServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateMasterDTO) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления профиля мастера", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при обновлении профиля мастера")
	}

	return nil
}

func (s *MasterServiceImpl) List(ctx context.Context, onlyActive bool, limit, offset int) ([]domain.Master, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	masters, err := s.repo.List(ctx, onlyActive, limit, offset)
	if err != nil {
		s.logger.Error("ошибка получения списка мастеров", zap.Error(err))
		return nil, errors.New("ошибка при получении списка мастеров")
	}

	return masters, nil
}

func (s *MasterServiceImpl) UploadProfilePhoto(ctx context.Context, masterID int64, photo []byte, filename string) error {
	master, err := s.repo.GetByID(ctx, masterID)
	if err != nil {
		return err
	}

	url, err := s.fileStorage.UploadPhoto(ctx, photo, filename)
	if err != nil {
		s.logger.Error("ошибка загрузки фото мастера", zap.Int64("masterId", masterID), zap.Error(err))
		return errors.New("ошибка при загрузке фото")
	}

	if err := s.repo.UpdateProfilePhoto(ctx, masterID, url); err != nil {
		s.logger.Error("ошибка сохранения URL фото", zap.Int64("masterId", masterID), zap.Error(err))
		return errors.New("ошибка при загрузке фото")
	}

	// Старое фото убирается после успешной замены, сбой не критичен.
	if master.ProfilePhotoURL != "" {
		if err := s.fileStorage.DeletePhoto(ctx, master.ProfilePhotoURL); err != nil {
			s.logger.Warn("не удалось удалить старое фото", zap.Error(err))
		}
	}

	return nil
}

func (s *MasterServiceImpl) DeleteProfilePhoto(ctx context.Context, masterID int64) error {
	master, err := s.repo.GetByID(ctx, masterID)
	if err != nil {
		return err
	}

	if master.ProfilePhotoURL == "" {
		return nil
	}

	if err := s.fileStorage.DeletePhoto(ctx, master.ProfilePhotoURL); err != nil {
		s.logger.Error("ошибка удаления фото мастера", zap.Int64("masterId", masterID), zap.Error(err))
		return errors.New("ошибка при удалении фото")
	}

	if err := s.repo.UpdateProfilePhoto(ctx, masterID, ""); err != nil {
		s.logger.Error("ошибка очистки URL фото", zap.Int64("masterId", masterID), zap.Error(err))
		return errors.New("ошибка при удалении фото")
	}

	return nil
}
