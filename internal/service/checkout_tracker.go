package service

import (
	"context"
	"sync"
	"time"

	"github.com/avion-shop/internal/cache"
	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/logger"
)

const (
	checkoutLockTTL      = 2 * time.Minute
	checkoutStateRetain  = time.Hour
	checkoutLockKeyStart = "checkout:lock:"
)

type checkoutEntry struct {
	state     string
	updatedAt time.Time
}

// CheckoutTracker 按购物车跟踪结算状态
// idle → validating → submitting → success → cleared，失败回到 idle。
// Redis 启用时额外持有分布式锁，防止多实例重复提交。
type CheckoutTracker struct {
	mu      sync.Mutex
	entries map[string]checkoutEntry
	now     func() time.Time
}

// NewCheckoutTracker 创建结算状态跟踪器
func NewCheckoutTracker() *CheckoutTracker {
	return &CheckoutTracker{entries: make(map[string]checkoutEntry), now: time.Now}
}

// State 当前状态，未记录时为 idle
func (t *CheckoutTracker) State(cartID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[cartID]
	if !ok {
		return constants.CheckoutStateIdle
	}
	return entry.state
}

// Begin 进入 validating，正在结算时返回 ErrCheckoutInProgress
func (t *CheckoutTracker) Begin(ctx context.Context, cartID string) error {
	t.mu.Lock()
	now := t.now()
	t.pruneLocked(now)
	if entry, ok := t.entries[cartID]; ok && inProgress(entry.state) && now.Sub(entry.updatedAt) < checkoutLockTTL {
		t.mu.Unlock()
		return ErrCheckoutInProgress
	}
	t.entries[cartID] = checkoutEntry{state: constants.CheckoutStateValidating, updatedAt: now}
	t.mu.Unlock()

	if !cache.Enabled() {
		return nil
	}
	acquired, err := cache.Client().SetNX(ctx, cache.Key(checkoutLockKeyStart+cartID), now.Unix(), checkoutLockTTL).Result()
	if err != nil {
		// 锁不可用时仅依赖进程内状态
		logger.Warnw("checkout_lock_acquire_failed", "cart_id", cartID, "error", err)
		return nil
	}
	if !acquired {
		t.set(cartID, constants.CheckoutStateIdle)
		return ErrCheckoutInProgress
	}
	return nil
}

// Submitting 进入 submitting
func (t *CheckoutTracker) Submitting(cartID string) {
	t.set(cartID, constants.CheckoutStateSubmitting)
}

// Fail 校验或提交失败，回到 idle
func (t *CheckoutTracker) Fail(ctx context.Context, cartID string) {
	t.set(cartID, constants.CheckoutStateFailure)
	t.release(ctx, cartID)
	t.set(cartID, constants.CheckoutStateIdle)
}

// Succeed 提交成功
func (t *CheckoutTracker) Succeed(cartID string) {
	t.set(cartID, constants.CheckoutStateSuccess)
}

// Cleared 购物车已清空，结算结束
func (t *CheckoutTracker) Cleared(ctx context.Context, cartID string) {
	t.set(cartID, constants.CheckoutStateCleared)
	t.release(ctx, cartID)
}

func (t *CheckoutTracker) set(cartID, state string) {
	t.mu.Lock()
	t.entries[cartID] = checkoutEntry{state: state, updatedAt: t.now()}
	t.mu.Unlock()
}

func (t *CheckoutTracker) release(ctx context.Context, cartID string) {
	if !cache.Enabled() {
		return
	}
	if err := cache.Del(context.WithoutCancel(ctx), checkoutLockKeyStart+cartID); err != nil {
		logger.Warnw("checkout_lock_release_failed", "cart_id", cartID, "error", err)
	}
}

func (t *CheckoutTracker) pruneLocked(now time.Time) {
	for id, entry := range t.entries {
		if !inProgress(entry.state) && now.Sub(entry.updatedAt) > checkoutStateRetain {
			delete(t.entries, id)
		}
	}
}

func inProgress(state string) bool {
	return state == constants.CheckoutStateValidating || state == constants.CheckoutStateSubmitting
}
