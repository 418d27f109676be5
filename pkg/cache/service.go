package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Service interface {
	// Generic cache operations
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Cache-aside pattern helper
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error

	// Distributed lock used by singleton background jobs
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error)

	Ping(ctx context.Context) error
}

type service struct {
	client *redis.Client
}

func NewService(client *redis.Client) Service {
	return &service{client: client}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}

	return nil
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}

	return nil
}

func (s *service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

// GetOrSet reads key into dest, calling fetcher and storing its result on a miss.
// Cache read and write failures fall through to the fetcher; only fetcher errors
// are returned.
func (s *service) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := s.Get(ctx, key, dest); err == nil {
		return nil
	}

	data, err := fetcher()
	if err != nil {
		return err
	}

	// best effort; the request does not fail on a cache write
	_ = s.Set(ctx, key, data, ttl)

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal fetched data error: %w", err)
	}

	return json.Unmarshal(jsonData, dest)
}

func (s *service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Lua script for releasing a lock only if we still own it
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Lock is a held Redis lock. Release is safe to call more than once.
type Lock struct {
	client  *redis.Client
	key     string
	token   string
	release func()
}

// AcquireLock takes key with SET NX. It returns ErrLockHeld when another owner
// holds the key.
func (s *service) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("cache lock error: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return &Lock{client: s.client, key: key, token: token}, nil
}

func (l *Lock) Release(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if l.release != nil {
		l.release()
		return nil
	}
	if l.client == nil {
		return nil
	}
	if err := releaseLockScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("cache unlock error: %w", err)
	}
	return nil
}

// Error definitions
var (
	ErrCacheMiss = errors.New("cache miss")
	ErrLockHeld  = errors.New("lock held by another owner")
)
