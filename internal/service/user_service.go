package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"go.uber.org/zap"
)

type UserService struct {
	users  UserStore
	admin  AdminID
	logger *zap.Logger
}

func NewUserService(users UserStore, admin AdminID, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		admin:  admin,
		logger: logger,
	}
}

// RegisterUser регистрирует пользователя при первом обращении или обновляет имя
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName string) (*model.User, error) {
	existing, err := s.users.GetByID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	// Ничего не изменилось, лишняя запись не нужна
	if existing != nil && existing.Username == username && existing.FirstName == firstName {
		return existing, nil
	}

	user := &model.User{
		ID:        telegramID,
		Username:  username,
		FirstName: firstName,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	if existing == nil {
		s.logger.Info("New user registered",
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
			zap.Bool("is_admin", s.admin.IsAdmin(telegramID)),
		)
	} else {
		s.logger.Info("User updated",
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
		)
	}

	return user, nil
}

// IsAdmin проверяет, является ли пользователь администратором
func (s *UserService) IsAdmin(telegramID int64) bool {
	return s.admin.IsAdmin(telegramID)
}

// GetUser получает пользователя по Telegram ID
func (s *UserService) GetUser(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// ListUsers возвращает первых limit пользователей для панели администратора
func (s *UserService) ListUsers(ctx context.Context, actorID int64, limit int) ([]*model.User, error) {
	if !s.admin.IsAdmin(actorID) {
		return nil, ErrUnauthorized
	}
	if limit <= 0 {
		limit = 20
	}

	users, err := s.users.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
