package cartstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/models"

	"github.com/redis/go-redis/v9"
)

const redisUpdateMaxRetries = 5

// RedisStore Redis 存储，修改通过 WATCH/MULTI 乐观事务完成
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "cart"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Driver 驱动名称
func (s *RedisStore) Driver() string {
	return constants.CartDriverRedis
}

func (s *RedisStore) key(cartID string) string {
	return s.prefix + ":" + cartID
}

// Load 读取购物车
func (s *RedisStore) Load(ctx context.Context, cartID string) (*models.CartSlot, error) {
	cartID, err := normalizeCartID(cartID)
	if err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, s.key(cartID)).Result()
	if err == redis.Nil {
		return models.NewCartSlot(), nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSlot(cartID, raw), nil
}

// Update 乐观事务修改购物车，键被并发修改时重试
func (s *RedisStore) Update(ctx context.Context, cartID string, fn MutateFunc) (*models.CartSlot, error) {
	cartID, err := normalizeCartID(cartID)
	if err != nil {
		return nil, err
	}
	key := s.key(cartID)

	var result *models.CartSlot
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		next, err := applyMutation(decodeSlot(cartID, raw), fn)
		if err != nil {
			return err
		}
		payload, err := encodeSlot(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	}

	for attempt := 0; attempt < redisUpdateMaxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrUpdateConflict
}

// Clear 删除购物车
func (s *RedisStore) Clear(ctx context.Context, cartID string) error {
	cartID, err := normalizeCartID(cartID)
	if err != nil {
		return err
	}
	return s.client.Del(ctx, s.key(cartID)).Err()
}
