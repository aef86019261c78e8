package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"strizh/internal/domain"
	"strizh/internal/repository"
	"strizh/pkg/auth"
)

type UserServiceImpl struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *UserServiceImpl) Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error) {
	existing, err := s.repo.GetByEmail(ctx, dto.Email)
	if err == nil && existing != nil {
		return 0, fmt.Errorf("%w: пользователь с таким email уже существует", domain.ErrValidation)
	}

	passwordHash, err := auth.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("ошибка хеширования пароля", zap.Error(err))
		return 0, errors.New("ошибка при создании пользователя")
	}

	id, err := s.repo.Create(ctx, dto, passwordHash)
	if err != nil {
		s.logger.Error("ошибка создания пользователя", zap.Error(err))
		return 0, errors.New("ошибка при создании пользователя")
	}

	return id, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("пользователь не найден", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления пользователя", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при обновлении пользователя")
	}

	return nil
}

func (s *UserServiceImpl) UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := auth.VerifyPassword(dto.OldPassword, user.PasswordHash)
	if err != nil {
		s.logger.Error("ошибка проверки пароля", zap.Error(err))
		return errors.New("ошибка при смене пароля")
	}
	if !ok {
		return fmt.Errorf("%w: неверный текущий пароль", domain.ErrValidation)
	}

	newHash, err := auth.HashPassword(dto.NewPassword)
	if err != nil {
		s.logger.Error("ошибка хеширования пароля", zap.Error(err))
		return errors.New("ошибка при смене пароля")
	}

	if err := s.repo.UpdatePassword(ctx, id, newHash); err != nil {
		s.logger.Error("ошибка сохранения пароля", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при смене пароля")
	}

	return nil
}

func (s *UserServiceImpl) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("ошибка получения списка пользователей", zap.Error(err))
		return nil, errors.New("ошибка при получении списка пользователей")
	}

	return users, nil
}
