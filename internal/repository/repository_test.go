package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/Freeeeeet/episode_shop_bot/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustOpenPool подключается к тестовой базе из TEST_DB_DSN, применяет миграции и очищает таблицы
func mustOpenPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	t.Cleanup(func() { _ = db.Close() })

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err)
	_, err = provider.Up(ctx)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE access_tokens, purchases, episodes, courses, users RESTART IDENTITY`)
	require.NoError(t, err)

	return pool
}

type fixture struct {
	users     *UserRepository
	courses   *CourseRepository
	episodes  *EpisodeRepository
	purchases *PurchaseRepository
	tokens    *TokenRepository
	stats     *StatsRepository
}

func newFixture(t *testing.T) *fixture {
	pool := mustOpenPool(t)
	return &fixture{
		users:     NewUserRepository(pool),
		courses:   NewCourseRepository(pool),
		episodes:  NewEpisodeRepository(pool),
		purchases: NewPurchaseRepository(pool),
		tokens:    NewTokenRepository(pool),
		stats:     NewStatsRepository(pool),
	}
}

func (f *fixture) seedEpisode(t *testing.T, number int) (*model.Course, *model.Episode) {
	t.Helper()
	ctx := context.Background()

	course := &model.Course{Title: "Go basics", Price: decimal.NewFromInt(1000)}
	require.NoError(t, f.courses.Create(ctx, course))

	ep := &model.Episode{
		CourseID: course.ID,
		Number:   number,
		Title:    "Intro",
		VideoRef: "intro.mp4",
		Price:    decimal.RequireFromString("199.50"),
	}
	require.NoError(t, f.episodes.Create(ctx, ep))
	return course, ep
}

func TestUserRepository_UpsertKeepsCreatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := &model.User{ID: 42, Username: "old"}
	require.NoError(t, f.users.Upsert(ctx, u))
	first := u.CreatedAt

	u2 := &model.User{ID: 42, Username: "new", FirstName: "Ann"}
	require.NoError(t, f.users.Upsert(ctx, u2))
	assert.True(t, first.Equal(u2.CreatedAt))

	got, err := f.users.GetByID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.Username)

	missing, err := f.users.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEpisodeRepository_DuplicateNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	course, _ := f.seedEpisode(t, 1)
	dup := &model.Episode{CourseID: course.ID, Number: 1, Title: "Again", VideoRef: "x", Price: decimal.Zero}
	assert.ErrorIs(t, f.episodes.Create(ctx, dup), ErrDuplicate)
}

func TestPurchaseRepository_PartialUniqueIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.Upsert(ctx, &model.User{ID: 1}))
	_, ep := f.seedEpisode(t, 1)

	first := &model.Purchase{UserID: 1, EpisodeID: ep.ID, ReceiptRef: "photo-1"}
	require.NoError(t, f.purchases.Create(ctx, first))
	assert.Equal(t, model.PurchaseStatusPending, first.Status)

	second := &model.Purchase{UserID: 1, EpisodeID: ep.ID, ReceiptRef: "photo-2"}
	assert.ErrorIs(t, f.purchases.Create(ctx, second), ErrDuplicate)

	rejected, err := f.purchases.ResolvePending(ctx, first.ID, model.PurchaseStatusRejected, 99, time.Now())
	require.NoError(t, err)
	require.NotNil(t, rejected)

	// после отказа можно подать заявку заново
	third := &model.Purchase{UserID: 1, EpisodeID: ep.ID, ReceiptRef: "photo-3"}
	require.NoError(t, f.purchases.Create(ctx, third))
	assert.NotEqual(t, first.ID, third.ID)
}

func TestPurchaseRepository_ResolvePendingOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.Upsert(ctx, &model.User{ID: 1, Username: "buyer"}))
	_, ep := f.seedEpisode(t, 1)

	p := &model.Purchase{UserID: 1, EpisodeID: ep.ID, ReceiptRef: "photo"}
	require.NoError(t, f.purchases.Create(ctx, p))

	pending, err := f.purchases.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "@buyer", pending[0].DisplayUser())
	assert.Equal(t, "Intro", pending[0].EpisodeTitle)

	approved, err := f.purchases.ResolvePending(ctx, p.ID, model.PurchaseStatusApproved, 99, time.Now())
	require.NoError(t, err)
	require.NotNil(t, approved)
	assert.Equal(t, model.PurchaseStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, int64(99), *approved.ReviewedBy)

	again, err := f.purchases.ResolvePending(ctx, p.ID, model.PurchaseStatusRejected, 99, time.Now())
	require.NoError(t, err)
	assert.Nil(t, again)

	has, err := f.purchases.HasApproved(ctx, 1, ep.ID)
	require.NoError(t, err)
	assert.True(t, has)

	owned, err := f.purchases.ListOwned(ctx, 1)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "Go basics", owned[0].CourseTitle)

	stats, err := f.stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sales)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("199.50")))
}

func TestCourseRepository_DeleteCascadesAndKeepsAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, f.users.Upsert(ctx, &model.User{ID: 1}))
	course, ep1 := f.seedEpisode(t, 1)
	ep2 := &model.Episode{CourseID: course.ID, Number: 2, Title: "Next", VideoRef: "next.mp4", Price: decimal.Zero}
	require.NoError(t, f.episodes.Create(ctx, ep2))

	p := &model.Purchase{UserID: 1, EpisodeID: ep1.ID, ReceiptRef: "photo"}
	require.NoError(t, f.purchases.Create(ctx, p))
	_, err := f.purchases.ResolvePending(ctx, p.ID, model.PurchaseStatusApproved, 99, now)
	require.NoError(t, err)
	tok := &model.AccessToken{Token: "tok", UserID: 1, EpisodeID: ep1.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, f.tokens.Create(ctx, tok))

	deleted, err := f.courses.Delete(ctx, course.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	episodes, err := f.episodes.ListByCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Empty(t, episodes)

	kept, err := f.purchases.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)

	grant, err := f.tokens.GetValid(ctx, "tok", now)
	require.NoError(t, err)
	assert.Nil(t, grant)

	// продажа удалённого эпизода не входит ни в продажи, ни в выручку
	stats, err := f.stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Sales)
	assert.True(t, stats.TotalRevenue.IsZero())

	deleted, err = f.courses.Delete(ctx, course.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTokenRepository_ExpiryAndPurge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, f.users.Upsert(ctx, &model.User{ID: 1}))
	_, ep := f.seedEpisode(t, 1)

	tok := &model.AccessToken{Token: "abc", UserID: 1, EpisodeID: ep.ID, CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)}
	require.NoError(t, f.tokens.Create(ctx, tok))

	grant, err := f.tokens.GetValid(ctx, "abc", now.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.Equal(t, "intro.mp4", grant.VideoRef)

	grant, err = f.tokens.GetValid(ctx, "abc", now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, grant)

	purged, err := f.tokens.DeleteExpired(ctx, now.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
