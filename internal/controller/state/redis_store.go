package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "episode_shop:session:"

// takeScript удаляет сессию, только если ревизия совпадает
var takeScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
	return false
end
local ok, s = pcall(cjson.decode, raw)
if not ok or s['rev'] ~= ARGV[1] then
	return false
end
redis.call('DEL', KEYS[1])
return raw
`)

// RedisStore общее хранилище сессий для нескольких инстансов бота.
// SET перезаписывает значение целиком, Take сравнивает ревизию и удаляет в Lua скрипте
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore создаёт хранилище. ttl <= 0 хранит без срока
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(userID int64) string {
	return redisKeyPrefix + strconv.FormatInt(userID, 10)
}

func decodeSession(raw string) (*Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	return &s, nil
}

// Get читает сессию
func (rs *RedisStore) Get(ctx context.Context, userID int64) (*Session, error) {
	raw, err := rs.client.Get(ctx, redisKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeSession(raw)
}

// Put сохраняет сессию, обновляя TTL
func (rs *RedisStore) Put(ctx context.Context, userID int64, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := rs.client.Set(ctx, redisKey(userID), data, rs.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Take атомарно удаляет и возвращает сессию ревизии rev
func (rs *RedisStore) Take(ctx context.Context, userID int64, rev string) (*Session, error) {
	raw, err := takeScript.Run(ctx, rs.client, []string{redisKey(userID)}, rev).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis take: %w", err)
	}
	return decodeSession(raw)
}

// Delete удаляет сессию
func (rs *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := rs.client.Del(ctx, redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
