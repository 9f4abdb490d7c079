package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists carts between requests, keyed by session
type Store interface {
	Load(ctx context.Context, session string) (Cart, error)
	Save(ctx context.Context, session string, c Cart) error
	Clear(ctx context.Context, session string) error
}

// SessionKey returns the session key of an authenticated user
func SessionKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// RedisStore keeps carts in redis under cart:<session> with a sliding TTL
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func (s *RedisStore) key(session string) string {
	return "cart:" + session
}

// Load reads the cart and pushes its expiry back by TTL
func (s *RedisStore) Load(ctx context.Context, session string) (Cart, error) {
	data, err := s.Client.GetEx(ctx, s.key(session), s.TTL).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return Decode(data)
}

func (s *RedisStore) Save(ctx context.Context, session string, c Cart) error {
	if c.IsEmpty() {
		return s.Clear(ctx, session)
	}
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := s.Client.Set(ctx, s.key(session), data, s.TTL).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, session string) error {
	if err := s.Client.Del(ctx, s.key(session)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// MemoryStore keeps encoded carts in process memory
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, session string) (Cart, error) {
	s.mu.Lock()
	data := s.carts[session]
	s.mu.Unlock()
	return Decode(data)
}

func (s *MemoryStore) Save(ctx context.Context, session string, c Cart) error {
	if c.IsEmpty() {
		return s.Clear(ctx, session)
	}
	data, err := c.Encode()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.carts[session] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, session string) error {
	s.mu.Lock()
	delete(s.carts, session)
	s.mu.Unlock()
	return nil
}
