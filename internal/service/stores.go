package service

import (
	"context"
	"crypto/rand"
	"io"
	"time"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
)

// Интерфейсы хранилищ. Реализуются репозиториями из internal/repository
// и фейками в тестах. Отсутствующая запись возвращается как nil, nil

type UserStore interface {
	Upsert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, limit int) ([]*model.User, error)
}

type CourseStore interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id int64) (*model.Course, error)
	List(ctx context.Context) ([]*model.Course, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type EpisodeStore interface {
	Create(ctx context.Context, ep *model.Episode) error
	GetByID(ctx context.Context, id int64) (*model.Episode, error)
	ListByCourse(ctx context.Context, courseID int64) ([]*model.Episode, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type PurchaseStore interface {
	Create(ctx context.Context, p *model.Purchase) error
	GetByID(ctx context.Context, id int64) (*model.Purchase, error)
	ResolvePending(ctx context.Context, id int64, status model.PurchaseStatus, reviewerID int64, at time.Time) (*model.Purchase, error)
	HasApproved(ctx context.Context, userID, episodeID int64) (bool, error)
	ListPending(ctx context.Context) ([]*model.PendingPurchase, error)
	ListOwned(ctx context.Context, userID int64) ([]*model.OwnedEpisode, error)
}

type TokenStore interface {
	Create(ctx context.Context, t *model.AccessToken) error
	GetValid(ctx context.Context, token string, now time.Time) (*model.TokenGrant, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type StatsStore interface {
	Get(ctx context.Context) (*model.Stats, error)
}

// AdminID единственный администратор, задаётся в конфигурации
type AdminID int64

// IsAdmin чистая проверка по конфигурации, в базе признак не хранится
func (a AdminID) IsAdmin(userID int64) bool {
	return a != 0 && userID == int64(a)
}

type options struct {
	now    func() time.Time
	random io.Reader
}

// Option настраивает сервисы, работающие со временем и случайностью
type Option func(*options)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRandom подменяет источник случайных байтов для токенов
func WithRandom(r io.Reader) Option {
	return func(o *options) { o.random = r }
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now, random: rand.Reader}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
