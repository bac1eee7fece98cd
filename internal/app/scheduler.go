package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TokenPurger удаляет истёкшие токены, реализуется service.TokenService
type TokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	tokens   TokenPurger
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler создаёт новый планировщик. interval 0 отключает очистку
func NewScheduler(tokens TokenPurger, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		tokens:   tokens,
		interval: interval,
		logger:   logger,
	}
}

// Run выполняет задачи до отмены контекста
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("Token purge disabled")
		return nil
	}

	s.logger.Info("Starting background scheduler", zap.Duration("purge_interval", s.interval))

	// Первый запуск сразу при старте
	s.purgeTokens(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.purgeTokens(ctx)
		case <-ctx.Done():
			s.logger.Info("Token purge task stopped")
			return nil
		}
	}
}

// purgeTokens удаляет истёкшие токены. Проверка токенов от неё не зависит
func (s *Scheduler) purgeTokens(ctx context.Context) {
	n, err := s.tokens.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Failed to purge expired tokens", zap.Error(err))
		}
		return
	}

	s.logger.Info("Expired tokens purged", zap.Int64("count", n))
}
