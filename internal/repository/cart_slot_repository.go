package repository

import (
	"errors"
	"time"

	"github.com/avion-shop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartSlotRepository 购物车存储行数据访问接口
type CartSlotRepository interface {
	Get(cartID string) (*models.CartSlotRow, error)
	GetForUpdate(cartID string) (*models.CartSlotRow, error)
	Save(row *models.CartSlotRow) error
	Delete(cartID string) error
	PurgeExpired(now time.Time) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormCartSlotRepository
}

// GormCartSlotRepository GORM 实现
type GormCartSlotRepository struct {
	db *gorm.DB
}

// NewCartSlotRepository 创建购物车存储仓库
func NewCartSlotRepository(db *gorm.DB) *GormCartSlotRepository {
	return &GormCartSlotRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartSlotRepository) WithTx(tx *gorm.DB) *GormCartSlotRepository {
	if tx == nil {
		return r
	}
	return &GormCartSlotRepository{db: tx}
}

// Transaction 在事务内执行
func (r *GormCartSlotRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Get 获取购物车存储行，不存在返回 nil
func (r *GormCartSlotRepository) Get(cartID string) (*models.CartSlotRow, error) {
	var row models.CartSlotRow
	if err := r.db.Where("cart_id = ?", cartID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetForUpdate 加锁读取购物车存储行
func (r *GormCartSlotRepository) GetForUpdate(cartID string) (*models.CartSlotRow, error) {
	var row models.CartSlotRow
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ?", cartID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Save 写入购物车存储行，版本号自增
func (r *GormCartSlotRepository) Save(row *models.CartSlotRow) error {
	if row == nil || row.CartID == "" {
		return errors.New("cart_id is required")
	}
	now := time.Now()
	row.Version++
	row.UpdatedAt = now
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "version", "expires_at", "updated_at"}),
	}).Create(row).Error
}

// Delete 删除购物车存储行
func (r *GormCartSlotRepository) Delete(cartID string) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartSlotRow{}).Error
}

// PurgeExpired 清理已过期的购物车
func (r *GormCartSlotRepository) PurgeExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at IS NOT NULL AND expires_at <= ?", now).Delete(&models.CartSlotRow{})
	return result.RowsAffected, result.Error
}
