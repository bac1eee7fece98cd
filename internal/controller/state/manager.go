package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/episode_shop_bot/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrValidation ввод не подходит для текущего шага, шаг не меняется
	ErrValidation = errors.New("invalid input")
	// ErrNoSession у пользователя нет активного диалога
	ErrNoSession = errors.New("no active session")
)

// Completion завершающее действие диалога. Вызывается ровно один раз,
// сессия к этому моменту уже удалена из хранилища
type Completion func(ctx context.Context, s *Session) error

// Manager управляет диалогами пользователей поверх Store
type Manager struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu          sync.RWMutex
	completions map[Kind]Completion
}

// NewManager создаёт новый менеджер диалогов
func NewManager(store Store, logger *zap.Logger) *Manager {
	return &Manager{
		store:       store,
		logger:      logger,
		now:         time.Now,
		completions: make(map[Kind]Completion),
	}
}

// Handle регистрирует завершающее действие для типа диалога
func (m *Manager) Handle(kind Kind, fn Completion) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions[kind] = fn
}

func (m *Manager) completion(kind Kind) Completion {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.completions[kind]
}

// Start начинает диалог, заменяя предыдущий
func (m *Manager) Start(ctx context.Context, userID int64, kind Kind, seed map[string]int64) (*Session, error) {
	if len(Fields(kind)) == 0 {
		return nil, fmt.Errorf("unknown session kind %q", kind)
	}

	s := &Session{
		Rev:       uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Values:    make(map[string]string),
		Seed:      seed,
		UpdatedAt: m.now(),
	}
	if err := m.store.Put(ctx, userID, s); err != nil {
		return nil, fmt.Errorf("put session: %w", err)
	}

	m.logger.Debug("Session started",
		zap.Int64("user_id", userID),
		zap.String("kind", string(kind)),
	)
	return s, nil
}

// Submit принимает ответ на текущий шаг.
// ErrValidation оставляет курсор на месте. После последнего шага сессия
// забирается из хранилища и выполняется завершающее действие, его ошибка возвращается
func (m *Manager) Submit(ctx context.Context, userID int64, in Input) (*Session, error) {
	s, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if s == nil {
		return nil, ErrNoSession
	}

	field, ok := s.Field()
	if !ok {
		// сессия без шагов не должна была сохраниться
		_ = m.store.Delete(ctx, userID)
		return nil, ErrNoSession
	}

	value, err := parseInput(field, in)
	if err != nil {
		return s, err
	}

	s.Values[field.Key] = value
	s.Cursor++
	s.UpdatedAt = m.now()

	if !s.Done() {
		s.Rev = uuid.NewString()
		if err := m.store.Put(ctx, userID, s); err != nil {
			return nil, fmt.Errorf("put session: %w", err)
		}
		return s, nil
	}

	// Забираем ту ревизию, которую прочитали. Если сессию уже забрали
	// или заменили новым Start, завершения не будет
	taken, err := m.store.Take(ctx, userID, s.Rev)
	if err != nil {
		return nil, fmt.Errorf("take session: %w", err)
	}
	if taken == nil {
		return nil, ErrNoSession
	}

	metrics.SessionsCompleted.WithLabelValues(string(s.Kind)).Inc()
	m.logger.Debug("Session completed",
		zap.Int64("user_id", userID),
		zap.String("kind", string(s.Kind)),
	)

	fn := m.completion(s.Kind)
	if fn == nil {
		return s, nil
	}
	return s, fn(ctx, s)
}

// IsComplete true, если текущая сессия прошла все шаги.
// Завершённые сессии удаляются, поэтому после завершения вернётся false
func (m *Manager) IsComplete(ctx context.Context, userID int64) (bool, error) {
	s, err := m.store.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get session: %w", err)
	}
	return s != nil && s.Done(), nil
}

// Current возвращает активную сессию или nil
func (m *Manager) Current(ctx context.Context, userID int64) (*Session, error) {
	s, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// Cancel удаляет сессию. Повторный вызов безопасен
func (m *Manager) Cancel(ctx context.Context, userID int64) error {
	if err := m.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
