package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/episode_shop_bot/internal/metrics"
	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/Freeeeeet/episode_shop_bot/internal/repository"
	"go.uber.org/zap"
)

// PurchaseService ведёт покупку по состояниям pending -> approved | rejected.
// Уникальность и атомарность переходов обеспечивает хранилище, а не мьютекс
type PurchaseService struct {
	purchases PurchaseStore
	episodes  EpisodeStore
	admin     AdminID
	now       func() time.Time
	logger    *zap.Logger
}

func NewPurchaseService(
	purchases PurchaseStore,
	episodes EpisodeStore,
	admin AdminID,
	logger *zap.Logger,
	opts ...Option,
) *PurchaseService {
	o := applyOptions(opts)
	return &PurchaseService{
		purchases: purchases,
		episodes:  episodes,
		admin:     admin,
		now:       o.now,
		logger:    logger,
	}
}

// Create создаёт заявку на покупку эпизода по фото чека.
// Уведомление администратора остаётся на вызывающей стороне
func (s *PurchaseService) Create(ctx context.Context, userID, episodeID int64, receiptRef string) (*model.Purchase, error) {
	if receiptRef == "" {
		return nil, fmt.Errorf("%w: receipt is required", ErrValidation)
	}

	ep, err := s.episodes.GetByID(ctx, episodeID)
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	if ep == nil {
		return nil, ErrNotFound
	}

	purchase := &model.Purchase{
		UserID:     userID,
		EpisodeID:  episodeID,
		ReceiptRef: receiptRef,
	}
	if err := s.purchases.Create(ctx, purchase); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.Purchases.WithLabelValues("conflict").Inc()
			return nil, fmt.Errorf("%w: purchase already exists", ErrConflict)
		}
		return nil, fmt.Errorf("create purchase: %w", err)
	}

	metrics.Purchases.WithLabelValues("created").Inc()
	s.logger.Info("Purchase created",
		zap.Int64("purchase_id", purchase.ID),
		zap.Int64("user_id", userID),
		zap.Int64("episode_id", episodeID),
	)

	return purchase, nil
}

// Approve одобряет покупку. Открывает доступ к эпизоду
func (s *PurchaseService) Approve(ctx context.Context, purchaseID, actorID int64) (*model.Purchase, error) {
	return s.resolve(ctx, purchaseID, actorID, model.PurchaseStatusApproved)
}

// Reject отклоняет покупку. Пользователь может подать заявку повторно
func (s *PurchaseService) Reject(ctx context.Context, purchaseID, actorID int64) (*model.Purchase, error) {
	return s.resolve(ctx, purchaseID, actorID, model.PurchaseStatusRejected)
}

// resolve выполняет переход из pending одним условным обновлением.
// При ErrAlreadyProcessed возвращается и текущая запись
func (s *PurchaseService) resolve(ctx context.Context, purchaseID, actorID int64, status model.PurchaseStatus) (*model.Purchase, error) {
	if !s.admin.IsAdmin(actorID) {
		return nil, ErrUnauthorized
	}

	updated, err := s.purchases.ResolvePending(ctx, purchaseID, status, actorID, s.now())
	if err != nil {
		return nil, fmt.Errorf("resolve purchase: %w", err)
	}

	if updated == nil {
		current, err := s.purchases.GetByID(ctx, purchaseID)
		if err != nil {
			return nil, fmt.Errorf("get purchase: %w", err)
		}
		if current == nil {
			return nil, ErrNotFound
		}

		s.logger.Info("Purchase already processed",
			zap.Int64("purchase_id", purchaseID),
			zap.String("status", string(current.Status)),
			zap.String("requested", string(status)),
		)
		return current, ErrAlreadyProcessed
	}

	metrics.Purchases.WithLabelValues(string(status)).Inc()
	s.logger.Info("Purchase resolved",
		zap.Int64("purchase_id", purchaseID),
		zap.Int64("user_id", updated.UserID),
		zap.Int64("episode_id", updated.EpisodeID),
		zap.String("status", string(status)),
		zap.Int64("actor_id", actorID),
	)

	return updated, nil
}

// HasAccess true, если у пользователя есть одобренная покупка эпизода
func (s *PurchaseService) HasAccess(ctx context.Context, userID, episodeID int64) (bool, error) {
	ok, err := s.purchases.HasApproved(ctx, userID, episodeID)
	if err != nil {
		return false, fmt.Errorf("check access: %w", err)
	}
	return ok, nil
}

// Get получает покупку по ID
func (s *PurchaseService) Get(ctx context.Context, purchaseID int64) (*model.Purchase, error) {
	p, err := s.purchases.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// ListPending возвращает заявки, ожидающие проверки
func (s *PurchaseService) ListPending(ctx context.Context, actorID int64) ([]*model.PendingPurchase, error) {
	if !s.admin.IsAdmin(actorID) {
		return nil, ErrUnauthorized
	}

	pending, err := s.purchases.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending purchases: %w", err)
	}
	return pending, nil
}

// ListOwned возвращает купленные пользователем эпизоды
func (s *PurchaseService) ListOwned(ctx context.Context, userID int64) ([]*model.OwnedEpisode, error) {
	owned, err := s.purchases.ListOwned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned episodes: %w", err)
	}
	return owned, nil
}
