package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/episode_shop_bot/internal/model"
	"github.com/Freeeeeet/episode_shop_bot/internal/repository"
	"github.com/shopspring/decimal"
)

// memDB хранилище в памяти с теми же гарантиями, что и PostgreSQL-схема:
// частичный уникальный индекс покупок, условный UPDATE и каскад эпизодов
type memDB struct {
	mu        sync.Mutex
	nextID    int64
	users     map[int64]*model.User
	courses   map[int64]*model.Course
	episodes  map[int64]*model.Episode
	purchases map[int64]*model.Purchase
	tokens    map[string]*model.AccessToken
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[int64]*model.User{},
		courses:   map[int64]*model.Course{},
		episodes:  map[int64]*model.Episode{},
		purchases: map[int64]*model.Purchase{},
		tokens:    map[string]*model.AccessToken{},
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

type memUsers struct{ db *memDB }

func (s memUsers) Upsert(_ context.Context, u *model.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if old, ok := s.db.users[u.ID]; ok {
		u.CreatedAt = old.CreatedAt
	} else {
		u.CreatedAt = time.Now()
	}
	cp := *u
	s.db.users[u.ID] = &cp
	return nil
}

func (s memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) List(_ context.Context, limit int) ([]*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*model.User
	for _, u := range s.db.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memCourses struct{ db *memDB }

func (s memCourses) Create(_ context.Context, c *model.Course) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c.ID = s.db.id()
	cp := *c
	s.db.courses[c.ID] = &cp
	return nil
}

func (s memCourses) GetByID(_ context.Context, id int64) (*model.Course, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.courses[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s memCourses) List(_ context.Context) ([]*model.Course, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*model.Course
	for _, c := range s.db.courses {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memCourses) Delete(_ context.Context, id int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for epID, ep := range s.db.episodes {
		if ep.CourseID == id {
			delete(s.db.episodes, epID)
		}
	}
	if _, ok := s.db.courses[id]; !ok {
		return false, nil
	}
	delete(s.db.courses, id)
	return true, nil
}

type memEpisodes struct{ db *memDB }

func (s memEpisodes) Create(_ context.Context, ep *model.Episode) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, other := range s.db.episodes {
		if other.CourseID == ep.CourseID && other.Number == ep.Number {
			return repository.ErrDuplicate
		}
	}
	ep.ID = s.db.id()
	cp := *ep
	s.db.episodes[ep.ID] = &cp
	return nil
}

func (s memEpisodes) GetByID(_ context.Context, id int64) (*model.Episode, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ep, ok := s.db.episodes[id]
	if !ok {
		return nil, nil
	}
	cp := *ep
	return &cp, nil
}

func (s memEpisodes) ListByCourse(_ context.Context, courseID int64) ([]*model.Episode, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*model.Episode
	for _, ep := range s.db.episodes {
		if ep.CourseID == courseID {
			cp := *ep
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s memEpisodes) Delete(_ context.Context, id int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.episodes[id]; !ok {
		return false, nil
	}
	delete(s.db.episodes, id)
	return true, nil
}

type memPurchases struct{ db *memDB }

func (s memPurchases) Create(_ context.Context, p *model.Purchase) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, other := range s.db.purchases {
		if other.UserID == p.UserID && other.EpisodeID == p.EpisodeID && other.Status != model.PurchaseStatusRejected {
			return repository.ErrDuplicate
		}
	}
	p.ID = s.db.id()
	p.Status = model.PurchaseStatusPending
	p.CreatedAt = time.Now()
	cp := *p
	s.db.purchases[p.ID] = &cp
	return nil
}

func (s memPurchases) GetByID(_ context.Context, id int64) (*model.Purchase, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.purchases[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s memPurchases) ResolvePending(_ context.Context, id int64, status model.PurchaseStatus, reviewerID int64, at time.Time) (*model.Purchase, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.purchases[id]
	if !ok || p.Status != model.PurchaseStatusPending {
		return nil, nil
	}
	p.Status = status
	p.ReviewedAt = &at
	p.ReviewedBy = &reviewerID
	cp := *p
	return &cp, nil
}

func (s memPurchases) HasApproved(_ context.Context, userID, episodeID int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, p := range s.db.purchases {
		if p.UserID == userID && p.EpisodeID == episodeID && p.Status == model.PurchaseStatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (s memPurchases) ListPending(_ context.Context) ([]*model.PendingPurchase, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*model.PendingPurchase
	for _, p := range s.db.purchases {
		if p.Status != model.PurchaseStatusPending {
			continue
		}
		pp := &model.PendingPurchase{Purchase: *p}
		if ep, ok := s.db.episodes[p.EpisodeID]; ok {
			pp.EpisodeTitle = ep.Title
			pp.Price = ep.Price
		}
		out = append(out, pp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s memPurchases) ListOwned(_ context.Context, userID int64) ([]*model.OwnedEpisode, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*model.OwnedEpisode
	for _, p := range s.db.purchases {
		if p.UserID != userID || p.Status != model.PurchaseStatusApproved {
			continue
		}
		ep, ok := s.db.episodes[p.EpisodeID]
		if !ok {
			continue
		}
		c := s.db.courses[ep.CourseID]
		out = append(out, &model.OwnedEpisode{
			EpisodeID:     ep.ID,
			EpisodeTitle:  ep.Title,
			EpisodeNumber: ep.Number,
			CourseID:      c.ID,
			CourseTitle:   c.Title,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CourseID != out[j].CourseID {
			return out[i].CourseID < out[j].CourseID
		}
		return out[i].EpisodeNumber < out[j].EpisodeNumber
	})
	return out, nil
}

type memTokens struct{ db *memDB }

func (s memTokens) Create(_ context.Context, t *model.AccessToken) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cp := *t
	s.db.tokens[t.Token] = &cp
	return nil
}

func (s memTokens) GetValid(_ context.Context, token string, now time.Time) (*model.TokenGrant, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tokens[token]
	if !ok || !now.Before(t.ExpiresAt) {
		return nil, nil
	}
	ep, ok := s.db.episodes[t.EpisodeID]
	if !ok {
		return nil, nil
	}
	return &model.TokenGrant{UserID: t.UserID, EpisodeID: t.EpisodeID, VideoRef: ep.VideoRef, Title: ep.Title}, nil
}

func (s memTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for k, t := range s.db.tokens {
		if !now.Before(t.ExpiresAt) {
			delete(s.db.tokens, k)
			n++
		}
	}
	return n, nil
}

func (db *memDB) tokenCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.tokens)
}

type memStats struct{ db *memDB }

func (s memStats) Get(_ context.Context) (*model.Stats, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	st := &model.Stats{
		Users:        len(s.db.users),
		Courses:      len(s.db.courses),
		Episodes:     len(s.db.episodes),
		TotalRevenue: decimal.Zero,
	}
	for _, p := range s.db.purchases {
		switch p.Status {
		case model.PurchaseStatusApproved:
			if ep, ok := s.db.episodes[p.EpisodeID]; ok {
				st.Sales++
				st.TotalRevenue = st.TotalRevenue.Add(ep.Price)
			}
		case model.PurchaseStatusPending:
			st.Pending++
		}
	}
	return st, nil
}

// testClock управляемые часы
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
