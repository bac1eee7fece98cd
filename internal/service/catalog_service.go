package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/Freeeeeet/episode_shop_bot/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogService управляет курсами и эпизодами
type CatalogService struct {
	courses  CourseStore
	episodes EpisodeStore
	stats    StatsStore
	admin    AdminID
	logger   *zap.Logger
}

func NewCatalogService(
	courses CourseStore,
	episodes EpisodeStore,
	stats StatsStore,
	admin AdminID,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		courses:  courses,
		episodes: episodes,
		stats:    stats,
		admin:    admin,
		logger:   logger,
	}
}

// CreateCourse создаёт курс. Описание необязательно
func (s *CatalogService) CreateCourse(ctx context.Context, actorID int64, title, description string, price decimal.Decimal) (*model.Course, error) {
	if !s.admin.IsAdmin(actorID) {
		return nil, ErrUnauthorized
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty course title", ErrValidation)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: negative price", ErrValidation)
	}

	course := &model.Course{
		Title:       title,
		Description: strings.TrimSpace(description),
		Price:       price,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.logger.Info("Course created",
		zap.Int64("course_id", course.ID),
		zap.String("title", course.Title),
		zap.String("price", course.Price.StringFixed(2)),
	)

	return course, nil
}

// ListCourses возвращает все курсы
func (s *CatalogService) ListCourses(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// GetCourse получает курс по ID
func (s *CatalogService) GetCourse(ctx context.Context, courseID int64) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, ErrNotFound
	}
	return course, nil
}

// DeleteCourse удаляет курс со всеми эпизодами атомарно.
// Покупки и токены остаются как история, токены перестают проходить проверку
func (s *CatalogService) DeleteCourse(ctx context.Context, actorID, courseID int64) error {
	if !s.admin.IsAdmin(actorID) {
		return ErrUnauthorized
	}

	deleted, err := s.courses.Delete(ctx, courseID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.logger.Info("Course deleted",
		zap.Int64("course_id", courseID),
		zap.Int64("actor_id", actorID),
	)

	return nil
}

// CreateEpisode добавляет эпизод в курс
func (s *CatalogService) CreateEpisode(ctx context.Context, actorID int64, ep *model.Episode) error {
	if !s.admin.IsAdmin(actorID) {
		return ErrUnauthorized
	}

	ep.Title = strings.TrimSpace(ep.Title)
	ep.Description = strings.TrimSpace(ep.Description)
	switch {
	case ep.Number <= 0:
		return fmt.Errorf("%w: episode number must be positive", ErrValidation)
	case ep.Title == "":
		return fmt.Errorf("%w: empty episode title", ErrValidation)
	case ep.VideoRef == "":
		return fmt.Errorf("%w: empty video reference", ErrValidation)
	case ep.Price.IsNegative():
		return fmt.Errorf("%w: negative price", ErrValidation)
	}

	course, err := s.courses.GetByID(ctx, ep.CourseID)
	if err != nil {
		return fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return ErrNotFound
	}

	if err := s.episodes.Create(ctx, ep); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: episode %d already exists in course", ErrConflict, ep.Number)
		}
		return fmt.Errorf("create episode: %w", err)
	}

	s.logger.Info("Episode created",
		zap.Int64("episode_id", ep.ID),
		zap.Int64("course_id", ep.CourseID),
		zap.Int("number", ep.Number),
		zap.String("price", ep.Price.StringFixed(2)),
	)

	return nil
}

// ListEpisodes возвращает эпизоды курса по номеру
func (s *CatalogService) ListEpisodes(ctx context.Context, courseID int64) ([]*model.Episode, error) {
	episodes, err := s.episodes.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	return episodes, nil
}

// GetEpisode получает эпизод по ID
func (s *CatalogService) GetEpisode(ctx context.Context, episodeID int64) (*model.Episode, error) {
	ep, err := s.episodes.GetByID(ctx, episodeID)
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	if ep == nil {
		return nil, ErrNotFound
	}
	return ep, nil
}

// DeleteEpisode удаляет один эпизод
func (s *CatalogService) DeleteEpisode(ctx context.Context, actorID, episodeID int64) error {
	if !s.admin.IsAdmin(actorID) {
		return ErrUnauthorized
	}

	deleted, err := s.episodes.Delete(ctx, episodeID)
	if err != nil {
		return fmt.Errorf("delete episode: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.logger.Info("Episode deleted",
		zap.Int64("episode_id", episodeID),
		zap.Int64("actor_id", actorID),
	)

	return nil
}

// Stats возвращает сводку для администратора
func (s *CatalogService) Stats(ctx context.Context, actorID int64) (*model.Stats, error) {
	if !s.admin.IsAdmin(actorID) {
		return nil, ErrUnauthorized
	}

	stats, err := s.stats.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}
