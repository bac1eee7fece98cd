package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/Freeeeeet/episode_shop_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRepository struct {
	*base.Repository
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{Repository: base.NewRepository(pool)}
}

// Create сохраняет выданный токен
func (r *TokenRepository) Create(ctx context.Context, t *model.AccessToken) error {
	query := `
		INSERT INTO access_tokens (token, user_id, episode_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.Pool().Exec(ctx, query, t.Token, t.UserID, t.EpisodeID, t.CreatedAt, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create access token: %w", err)
	}

	return nil
}

// GetValid находит живой на момент now токен вместе с эпизодом.
// nil, nil для истёкшего, неизвестного токена или удалённого эпизода
func (r *TokenRepository) GetValid(ctx context.Context, token string, now time.Time) (*model.TokenGrant, error) {
	query := `
		SELECT t.user_id, t.episode_id, e.video_ref, e.title
		FROM access_tokens t
		JOIN episodes e ON e.id = t.episode_id
		WHERE t.token = $1 AND t.expires_at > $2
	`

	var g model.TokenGrant
	err := r.Pool().QueryRow(ctx, query, token, now).Scan(&g.UserID, &g.EpisodeID, &g.VideoRef, &g.Title)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get valid token: %w", err)
	}

	return &g, nil
}

// DeleteExpired удаляет токены, истёкшие к моменту now
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM access_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return affected, nil
}
