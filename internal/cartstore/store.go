package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/logger"
	"github.com/avion-shop/internal/models"
	"github.com/avion-shop/internal/repository"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCartIDRequired 购物车ID为空
	ErrCartIDRequired = errors.New("cart id is required")
	// ErrUpdateConflict 并发写入重试耗尽
	ErrUpdateConflict = errors.New("cart slot update conflict")
	// ErrDriverUnavailable 存储驱动不可用
	ErrDriverUnavailable = errors.New("cart store driver unavailable")
)

// MutateFunc 在购物车副本上执行修改，返回错误时不落盘
type MutateFunc func(slot *models.CartSlot) error

// Store 购物车槽位存储，每个购物车ID只对应一份序列化状态
type Store interface {
	Load(ctx context.Context, cartID string) (*models.CartSlot, error)
	Update(ctx context.Context, cartID string, fn MutateFunc) (*models.CartSlot, error)
	Clear(ctx context.Context, cartID string) error
	Driver() string
}

// Purger 支持清理过期购物车的驱动
type Purger interface {
	PurgeExpired(now time.Time) (int64, error)
}

// Options 存储构建参数
type Options struct {
	Driver      string
	TTL         time.Duration
	Redis       *redis.Client
	RedisPrefix string
	Slots       repository.CartSlotRepository
}

// New 按驱动创建存储
func New(opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", constants.CartDriverMemory:
		return NewMemoryStore(opts.TTL), nil
	case constants.CartDriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("%w: redis client is nil", ErrDriverUnavailable)
		}
		return NewRedisStore(opts.Redis, opts.RedisPrefix, opts.TTL), nil
	case constants.CartDriverDatabase:
		if opts.Slots == nil {
			return nil, fmt.Errorf("%w: cart slot repository is nil", ErrDriverUnavailable)
		}
		return NewDatabaseStore(opts.Slots, opts.TTL), nil
	default:
		return nil, fmt.Errorf("%w: unsupported driver %s", ErrDriverUnavailable, opts.Driver)
	}
}

func normalizeCartID(cartID string) (string, error) {
	cartID = strings.TrimSpace(cartID)
	if cartID == "" {
		return "", ErrCartIDRequired
	}
	return cartID, nil
}

// encodeSlot 序列化购物车
func encodeSlot(slot *models.CartSlot) (string, error) {
	body, err := json.Marshal(slot)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// decodeSlot 反序列化购物车，损坏的数据按空购物车处理
func decodeSlot(cartID, raw string) *models.CartSlot {
	slot := models.NewCartSlot()
	if strings.TrimSpace(raw) == "" {
		return slot
	}
	if err := json.Unmarshal([]byte(raw), slot); err != nil {
		logger.Warnw("cart_slot_decode_failed", "cart_id", cartID, "error", err)
		return models.NewCartSlot()
	}
	slot.Normalize()
	return slot
}

// applyMutation 在副本上执行修改并刷新更新时间
func applyMutation(slot *models.CartSlot, fn MutateFunc) (*models.CartSlot, error) {
	working := slot.Clone()
	if fn != nil {
		if err := fn(working); err != nil {
			return nil, err
		}
	}
	working.Normalize()
	working.UpdatedAt = time.Now()
	return working, nil
}

func expiresAt(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := time.Now().Add(ttl)
	return &t
}
