package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/Freeeeeet/episode_shop_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EpisodeRepository struct {
	*base.Repository
}

func NewEpisodeRepository(pool *pgxpool.Pool) *EpisodeRepository {
	return &EpisodeRepository{Repository: base.NewRepository(pool)}
}

const episodeColumns = `id, course_id, number, title, COALESCE(description, ''), video_ref, price, created_at`

// Create создаёт эпизод. ErrDuplicate, если номер в курсе уже занят
func (r *EpisodeRepository) Create(ctx context.Context, ep *model.Episode) error {
	query := `
		INSERT INTO episodes (course_id, number, title, description, video_ref, price)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING id, created_at
	`

	err := r.Pool().QueryRow(
		ctx, query,
		ep.CourseID,
		ep.Number,
		ep.Title,
		ep.Description,
		ep.VideoRef,
		ep.Price,
	).Scan(&ep.ID, &ep.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create episode: %w", err)
	}

	return nil
}

// GetByID получает эпизод по ID
func (r *EpisodeRepository) GetByID(ctx context.Context, id int64) (*model.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes WHERE id = $1`

	var ep model.Episode
	err := r.Pool().QueryRow(ctx, query, id).Scan(
		&ep.ID,
		&ep.CourseID,
		&ep.Number,
		&ep.Title,
		&ep.Description,
		&ep.VideoRef,
		&ep.Price,
		&ep.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get episode by id: %w", err)
	}

	return &ep, nil
}

// ListByCourse возвращает эпизоды курса по возрастанию номера
func (r *EpisodeRepository) ListByCourse(ctx context.Context, courseID int64) ([]*model.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes WHERE course_id = $1 ORDER BY number`

	rows, err := r.Pool().Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list episodes by course: %w", err)
	}
	defer rows.Close()

	var episodes []*model.Episode
	for rows.Next() {
		var ep model.Episode
		err := rows.Scan(
			&ep.ID,
			&ep.CourseID,
			&ep.Number,
			&ep.Title,
			&ep.Description,
			&ep.VideoRef,
			&ep.Price,
			&ep.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, &ep)
	}

	return episodes, rows.Err()
}

// Delete удаляет эпизод. Возвращает false, если эпизода не было
func (r *EpisodeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM episodes WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete episode: %w", err)
	}
	return affected > 0, nil
}
