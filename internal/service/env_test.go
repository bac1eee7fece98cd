package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testAdmin AdminID = 1000
	buyerID   int64   = 7
)

type testEnv struct {
	db        *memDB
	clock     *testClock
	users     *UserService
	catalog   *CatalogService
	purchases *PurchaseService
	tokens    *TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newMemDB()
	clock := newTestClock()
	logger := zap.NewNop()

	purchases := NewPurchaseService(memPurchases{db}, memEpisodes{db}, testAdmin, logger, WithClock(clock.Now))
	return &testEnv{
		db:        db,
		clock:     clock,
		users:     NewUserService(memUsers{db}, testAdmin, logger),
		catalog:   NewCatalogService(memCourses{db}, memEpisodes{db}, memStats{db}, testAdmin, logger),
		purchases: purchases,
		tokens:    NewTokenService(memTokens{db}, memEpisodes{db}, purchases, DefaultTokenTTL, logger, WithClock(clock.Now)),
	}
}

// seedEpisode создаёт курс с одним эпизодом ценой 10.00
func (e *testEnv) seedEpisode(t *testing.T) (*model.Course, *model.Episode) {
	t.Helper()
	ctx := context.Background()

	course, err := e.catalog.CreateCourse(ctx, int64(testAdmin), "Go", "", decimal.NewFromInt(100))
	require.NoError(t, err)

	ep := &model.Episode{
		CourseID: course.ID,
		Number:   1,
		Title:    "Goroutines",
		VideoRef: "goroutines.mp4",
		Price:    decimal.RequireFromString("10.00"),
	}
	require.NoError(t, e.catalog.CreateEpisode(ctx, int64(testAdmin), ep))
	return course, ep
}
