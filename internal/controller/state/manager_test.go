package state

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager() *Manager {
	return NewManager(NewMemoryStore(time.Hour), zap.NewNop())
}

func TestManager_CourseWizard(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	var got *Session
	m.Handle(KindCourseCreation, func(_ context.Context, s *Session) error {
		got = s
		return nil
	})

	s, err := m.Start(ctx, 1, KindCourseCreation, nil)
	require.NoError(t, err)
	f, ok := s.Field()
	require.True(t, ok)
	assert.Equal(t, KeyTitle, f.Key)

	_, err = m.Submit(ctx, 1, Input{Text: "  Go basics "})
	require.NoError(t, err)
	_, err = m.Submit(ctx, 1, Input{Text: "-"})
	require.NoError(t, err)

	// невалидная цена не сдвигает курсор
	s, err = m.Submit(ctx, 1, Input{Text: "дорого"})
	assert.ErrorIs(t, err, ErrValidation)
	f, _ = s.Field()
	assert.Equal(t, KeyPrice, f.Key)

	s, err = m.Submit(ctx, 1, Input{Text: "99,5"})
	require.NoError(t, err)
	assert.True(t, s.Done())

	require.NotNil(t, got)
	assert.Equal(t, "Go basics", got.Text(KeyTitle))
	assert.Equal(t, "", got.Text(KeyDescription))
	assert.Equal(t, "99.50", got.Price(KeyPrice).StringFixed(2))

	cur, err := m.Current(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, cur)

	complete, err := m.IsComplete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, complete)
}

func TestManager_EpisodeWizardValidation(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	var got *Session
	m.Handle(KindEpisodeCreation, func(_ context.Context, s *Session) error {
		got = s
		return nil
	})

	_, err := m.Start(ctx, 1, KindEpisodeCreation, map[string]int64{SeedCourseID: 42})
	require.NoError(t, err)

	for _, bad := range []string{"", "0", "-3", "abc", "1.5"} {
		_, err = m.Submit(ctx, 1, Input{Text: bad})
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
	_, err = m.Submit(ctx, 1, Input{Text: "3"})
	require.NoError(t, err)
	_, err = m.Submit(ctx, 1, Input{Text: "Channels"})
	require.NoError(t, err)
	_, err = m.Submit(ctx, 1, Input{Text: "About channels"})
	require.NoError(t, err)
	_, err = m.Submit(ctx, 1, Input{Text: "-1"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = m.Submit(ctx, 1, Input{Text: "10"})
	require.NoError(t, err)

	// текст вместо видео
	_, err = m.Submit(ctx, 1, Input{Text: "video.mp4"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, got)

	_, err = m.Submit(ctx, 1, Input{VideoID: "BAACAgIAAxkBAAIB"})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.SeedID(SeedCourseID))
	assert.Equal(t, 3, got.Int(KeyNumber))
	assert.Equal(t, "About channels", got.Text(KeyDescription))
	assert.Equal(t, "BAACAgIAAxkBAAIB", got.Text(KeyVideo))
}

func TestManager_StartReplacesSession(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	_, err := m.Start(ctx, 1, KindCourseCreation, nil)
	require.NoError(t, err)
	_, err = m.Submit(ctx, 1, Input{Text: "Title"})
	require.NoError(t, err)

	_, err = m.Start(ctx, 1, KindReceiptSubmission, map[string]int64{SeedEpisodeID: 5})
	require.NoError(t, err)

	cur, err := m.Current(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, KindReceiptSubmission, cur.Kind)
	assert.Equal(t, 0, cur.Cursor)
	assert.Empty(t, cur.Values)
}

func TestManager_CancelIsIdempotent(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	_, err := m.Start(ctx, 1, KindReceiptSubmission, map[string]int64{SeedEpisodeID: 5})
	require.NoError(t, err)

	require.NoError(t, m.Cancel(ctx, 1))
	require.NoError(t, m.Cancel(ctx, 1))

	_, err = m.Submit(ctx, 1, Input{PhotoID: "photo"})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	_, err := m.Start(ctx, 1, KindCourseCreation, nil)
	require.NoError(t, err)
	_, err = m.Start(ctx, 2, KindReceiptSubmission, map[string]int64{SeedEpisodeID: 9})
	require.NoError(t, err)

	require.NoError(t, m.Cancel(ctx, 2))

	cur, err := m.Current(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, KindCourseCreation, cur.Kind)
}

func TestManager_CompletionFailureClearsSession(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	boom := errors.New("conflict")

	m.Handle(KindReceiptSubmission, func(context.Context, *Session) error { return boom })

	_, err := m.Start(ctx, 1, KindReceiptSubmission, map[string]int64{SeedEpisodeID: 5})
	require.NoError(t, err)

	_, err = m.Submit(ctx, 1, Input{PhotoID: "photo"})
	assert.ErrorIs(t, err, boom)

	_, err = m.Submit(ctx, 1, Input{PhotoID: "photo"})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_CompletionRunsOnce(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	var calls atomic.Int32
	m.Handle(KindReceiptSubmission, func(context.Context, *Session) error {
		calls.Add(1)
		return nil
	})

	_, err := m.Start(ctx, 1, KindReceiptSubmission, map[string]int64{SeedEpisodeID: 5})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Submit(ctx, 1, Input{PhotoID: "photo"})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestManager_UnknownKind(t *testing.T) {
	m := newTestManager()
	_, err := m.Start(context.Background(), 1, Kind("nope"), nil)
	assert.Error(t, err)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(ctx, 1, &Session{Kind: KindCourseCreation, Values: map[string]string{}, UpdatedAt: now}))

	s, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, s)

	now = now.Add(2 * time.Minute)
	s, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = store.Take(ctx, 1, "")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestMemoryStore_TakeChecksRev(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	require.NoError(t, store.Put(ctx, 1, &Session{Rev: "b", Kind: KindCourseCreation, Values: map[string]string{}, UpdatedAt: time.Now()}))

	s, err := store.Take(ctx, 1, "a")
	require.NoError(t, err)
	assert.Nil(t, s)

	// чужая ревизия сессию не трогает
	s, err = store.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, s)

	s, err = store.Take(ctx, 1, "b")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, KindCourseCreation, s.Kind)
}

// interleavingStore выполняет hook перед первым Take
type interleavingStore struct {
	*MemoryStore
	beforeTake func()
}

func (is *interleavingStore) Take(ctx context.Context, userID int64, rev string) (*Session, error) {
	if hook := is.beforeTake; hook != nil {
		is.beforeTake = nil
		hook()
	}
	return is.MemoryStore.Take(ctx, userID, rev)
}

func TestManager_StartDuringFinalStepWins(t *testing.T) {
	ctx := context.Background()
	store := &interleavingStore{MemoryStore: NewMemoryStore(time.Hour)}
	m := NewManager(store, zap.NewNop())

	var completed []Kind
	m.Handle(KindReceiptSubmission, func(_ context.Context, s *Session) error {
		completed = append(completed, s.Kind)
		return nil
	})

	_, err := m.Start(ctx, 1, KindReceiptSubmission, map[string]int64{SeedEpisodeID: 5})
	require.NoError(t, err)

	// пользователь открыл новый диалог, пока фото чека ещё обрабатывалось
	store.beforeTake = func() {
		_, err := m.Start(ctx, 1, KindCourseCreation, nil)
		require.NoError(t, err)
	}

	_, err = m.Submit(ctx, 1, Input{PhotoID: "photo"})
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Empty(t, completed)

	cur, err := m.Current(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, KindCourseCreation, cur.Kind)
	assert.Equal(t, 0, cur.Cursor)
}

func TestManager_EachWriteChangesRev(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	s, err := m.Start(ctx, 1, KindCourseCreation, nil)
	require.NoError(t, err)
	require.NotEmpty(t, s.Rev)
	first := s.Rev

	s, err = m.Submit(ctx, 1, Input{Text: "Title"})
	require.NoError(t, err)
	assert.NotEqual(t, first, s.Rev)

	cur, err := m.Current(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, s.Rev, cur.Rev)
}
