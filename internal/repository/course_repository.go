package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/Freeeeeet/episode_shop_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CourseRepository struct {
	*base.Repository
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт новый курс
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (title, description, price)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id, created_at
	`

	err := r.Pool().QueryRow(ctx, query, course.Title, course.Description, course.Price).
		Scan(&course.ID, &course.CreatedAt)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByID получает курс по ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	query := `
		SELECT id, title, COALESCE(description, ''), price, created_at
		FROM courses
		WHERE id = $1
	`

	var course model.Course
	err := r.Pool().QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Price,
		&course.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}

	return &course, nil
}

// List возвращает все курсы по порядку создания
func (r *CourseRepository) List(ctx context.Context) ([]*model.Course, error) {
	query := `
		SELECT id, title, COALESCE(description, ''), price, created_at
		FROM courses
		ORDER BY id
	`

	rows, err := r.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		var course model.Course
		err := rows.Scan(&course.ID, &course.Title, &course.Description, &course.Price, &course.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, &course)
	}

	return courses, rows.Err()
}

// Delete удаляет курс вместе со всеми его эпизодами в одной транзакции.
// Покупки и токены не трогаются. Возвращает false, если курса не было
func (r *CourseRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool

	err := r.InTx(ctx, func(q base.Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM episodes WHERE course_id = $1`, id); err != nil {
			return fmt.Errorf("delete course episodes: %w", err)
		}

		tag, err := q.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}
