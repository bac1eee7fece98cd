package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/Freeeeeet/episode_shop_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepository struct {
	*base.Repository
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{Repository: base.NewRepository(pool)}
}

// Get собирает сводку для администратора одним запросом.
// Продажи и выручка считаются по одному набору: одобренные покупки
// существующих эпизодов по их текущим ценам
func (r *StatsRepository) Get(ctx context.Context) (*model.Stats, error) {
	query := `
		WITH sold AS (
			SELECT COUNT(*) AS sales, COALESCE(SUM(e.price), 0) AS revenue
			  FROM purchases p
			  JOIN episodes e ON e.id = p.episode_id
			 WHERE p.status = 'approved'
		)
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM courses),
			(SELECT COUNT(*) FROM episodes),
			sold.sales,
			(SELECT COUNT(*) FROM purchases WHERE status = 'pending'),
			sold.revenue
		FROM sold
	`

	var s model.Stats
	err := r.Pool().QueryRow(ctx, query).Scan(
		&s.Users,
		&s.Courses,
		&s.Episodes,
		&s.Sales,
		&s.Pending,
		&s.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}

	return &s, nil
}
