package service

import (
	"context"
	"strings"

	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/Freeeeeet/slotswap/internal/repository"
	"go.uber.org/zap"
)

type UserService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewUserService(store repository.Store, logger *zap.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

// RegisterUser регистрирует или обновляет пользователя
func (s *UserService) RegisterUser(ctx context.Context, id, name string, telegramID *int64) (*model.User, error) {
	if id == "" {
		return nil, validationError("user id is required")
	}

	user := &model.User{
		ID:         id,
		Name:       strings.TrimSpace(name),
		TelegramID: telegramID,
	}

	if err := s.store.Users().UpsertUser(ctx, user); err != nil {
		return nil, storeError("register user", err)
	}

	s.logger.Debug("User registered",
		zap.String("user_id", id),
		zap.String("name", user.Name),
	)

	return user, nil
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.Users().GetUser(ctx, id)
	if err != nil {
		return nil, storeError("get user", err)
	}
	return user, nil
}
