package cartstore

import (
	"context"
	"time"

	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/models"
	"github.com/avion-shop/internal/repository"

	"gorm.io/gorm"
)

// DatabaseStore 数据库存储，修改在加锁事务内完成
type DatabaseStore struct {
	slots repository.CartSlotRepository
	ttl   time.Duration
}

// NewDatabaseStore 创建数据库存储
func NewDatabaseStore(slots repository.CartSlotRepository, ttl time.Duration) *DatabaseStore {
	return &DatabaseStore{slots: slots, ttl: ttl}
}

// Driver 驱动名称
func (s *DatabaseStore) Driver() string {
	return constants.CartDriverDatabase
}

// Load 读取购物车，已过期视为空
func (s *DatabaseStore) Load(ctx context.Context, cartID string) (*models.CartSlot, error) {
	cartID, err := normalizeCartID(cartID)
	if err != nil {
		return nil, err
	}
	row, err := s.slots.Get(cartID)
	if err != nil {
		return nil, err
	}
	if row == nil || rowExpired(row) {
		return models.NewCartSlot(), nil
	}
	return decodeSlot(cartID, row.Payload), nil
}

// Update 在事务内重新读取并写回购物车
func (s *DatabaseStore) Update(ctx context.Context, cartID string, fn MutateFunc) (*models.CartSlot, error) {
	cartID, err := normalizeCartID(cartID)
	if err != nil {
		return nil, err
	}
	var result *models.CartSlot
	err = s.slots.Transaction(func(tx *gorm.DB) error {
		repo := s.slots.WithTx(tx.WithContext(ctx))
		row, err := repo.GetForUpdate(cartID)
		if err != nil {
			return err
		}
		current := models.NewCartSlot()
		if row == nil {
			row = &models.CartSlotRow{CartID: cartID}
		} else if !rowExpired(row) {
			current = decodeSlot(cartID, row.Payload)
		}
		next, err := applyMutation(current, fn)
		if err != nil {
			return err
		}
		payload, err := encodeSlot(next)
		if err != nil {
			return err
		}
		row.Payload = payload
		row.ExpiresAt = expiresAt(s.ttl)
		if err := repo.Save(row); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Clear 删除购物车
func (s *DatabaseStore) Clear(ctx context.Context, cartID string) error {
	cartID, err := normalizeCartID(cartID)
	if err != nil {
		return err
	}
	return s.slots.Delete(cartID)
}

// PurgeExpired 清理过期购物车
func (s *DatabaseStore) PurgeExpired(now time.Time) (int64, error) {
	return s.slots.PurgeExpired(now)
}

func rowExpired(row *models.CartSlotRow) bool {
	return row.ExpiresAt != nil && !row.ExpiresAt.After(time.Now())
}
