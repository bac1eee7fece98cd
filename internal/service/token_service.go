package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/Freeeeeet/episode_shop_bot/internal/metrics"
	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"go.uber.org/zap"
)

const (
	// tokenBytes 256 бит энтропии
	tokenBytes = 32
	// DefaultTokenTTL время жизни ссылки на просмотр
	DefaultTokenTTL = 24 * time.Hour
)

var tokenEncoding = base64.RawURLEncoding

// AccessChecker предикат доступа к эпизоду
type AccessChecker interface {
	HasAccess(ctx context.Context, userID, episodeID int64) (bool, error)
}

// TokenService выдаёт и проверяет временные ссылки на просмотр
type TokenService struct {
	tokens   TokenStore
	episodes EpisodeStore
	access   AccessChecker
	ttl      time.Duration
	now      func() time.Time
	random   io.Reader
	logger   *zap.Logger
}

func NewTokenService(
	tokens TokenStore,
	episodes EpisodeStore,
	access AccessChecker,
	ttl time.Duration,
	logger *zap.Logger,
	opts ...Option,
) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	o := applyOptions(opts)
	return &TokenService{
		tokens:   tokens,
		episodes: episodes,
		access:   access,
		ttl:      ttl,
		now:      o.now,
		random:   o.random,
		logger:   logger,
	}
}

// TTL время жизни выдаваемых токенов
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue выдаёт новый токен. Без одобренной покупки ErrForbidden, токен не создаётся.
// Каждый вызов создаёт новый токен
func (s *TokenService) Issue(ctx context.Context, userID, episodeID int64) (*model.AccessToken, error) {
	ok, err := s.access.HasAccess(ctx, userID, episodeID)
	if err != nil {
		return nil, fmt.Errorf("check access: %w", err)
	}
	if !ok {
		return nil, ErrForbidden
	}

	ep, err := s.episodes.GetByID(ctx, episodeID)
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	if ep == nil {
		return nil, ErrNotFound
	}

	value, err := s.generate()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := s.now()
	token := &model.AccessToken{
		Token:     value,
		UserID:    userID,
		EpisodeID: episodeID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	metrics.TokensIssued.Inc()
	s.logger.Info("Access token issued",
		zap.Int64("user_id", userID),
		zap.Int64("episode_id", episodeID),
		zap.Time("expires_at", token.ExpiresAt),
	)

	return token, nil
}

// Validate возвращает привязку токена, если он существует и не истёк.
// Истёкший, неизвестный и битый токены неразличимы: всегда ErrNotFound
func (s *TokenService) Validate(ctx context.Context, token string) (*model.TokenGrant, error) {
	if !wellFormed(token) {
		metrics.TokenValidations.WithLabelValues("invalid").Inc()
		return nil, ErrNotFound
	}

	grant, err := s.tokens.GetValid(ctx, token, s.now())
	if err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}
	if grant == nil {
		metrics.TokenValidations.WithLabelValues("invalid").Inc()
		return nil, ErrNotFound
	}

	metrics.TokenValidations.WithLabelValues("valid").Inc()
	return grant, nil
}

// PurgeExpired удаляет истёкшие токены. На проверку не влияет
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired tokens: %w", err)
	}

	metrics.TokensPurged.Add(float64(n))
	s.logger.Info("Expired access tokens purged", zap.Int64("count", n))
	return n, nil
}

func (s *TokenService) generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", err
	}
	return tokenEncoding.EncodeToString(buf), nil
}

func wellFormed(token string) bool {
	if len(token) != tokenEncoding.EncodedLen(tokenBytes) {
		return false
	}
	_, err := tokenEncoding.DecodeString(token)
	return err == nil
}
