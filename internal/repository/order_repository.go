package repository

import (
	"errors"
	"strings"

	"github.com/avion-shop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单镜像数据访问接口
type OrderRepository interface {
	Create(order *models.OrderRecord) error
	GetByOrderNo(orderNo string) (*models.OrderRecord, error)
	GetByOrderNoAndCart(orderNo, cartID string) (*models.OrderRecord, error)
	ListByCart(cartID string, page, pageSize int) ([]models.OrderRecord, int64, error)
	ExistsByOrderNo(orderNo string) (bool, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 写入订单与订单项，同一订单号重复写入时忽略
func (r *GormOrderRepository) Create(order *models.OrderRecord) error {
	if order == nil || strings.TrimSpace(order.OrderNo) == "" {
		return errors.New("order_no is required")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		items := order.Items
		order.Items = nil
		defer func() { order.Items = items }()

		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_no"}},
			DoNothing: true,
		}).Create(order)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByOrderNo 根据订单号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.OrderRecord, error) {
	var order models.OrderRecord
	if err := r.db.Preload("Items").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNoAndCart 获取指定购物车的订单
func (r *GormOrderRepository) GetByOrderNoAndCart(orderNo, cartID string) (*models.OrderRecord, error) {
	var order models.OrderRecord
	if err := r.db.Preload("Items").
		Where("order_no = ? AND cart_id = ?", orderNo, cartID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByCart 按下单时间倒序分页列出购物车的历史订单
func (r *GormOrderRepository) ListByCart(cartID string, page, pageSize int) ([]models.OrderRecord, int64, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	query := r.db.Model(&models.OrderRecord{}).Where("cart_id = ?", cartID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []models.OrderRecord
	if err := applyPagination(query.Preload("Items").Order("order_date desc"), page, pageSize).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ExistsByOrderNo 判断订单号是否已存在
func (r *GormOrderRepository) ExistsByOrderNo(orderNo string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.OrderRecord{}).Where("order_no = ?", orderNo).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
