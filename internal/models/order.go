package models

import (
	"time"
)

// OrderRecord 已提交到内容后端的订单本地镜像
type OrderRecord struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo        string    `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号
	CartID         string    `gorm:"index;type:varchar(64);not null" json:"-"`                     // 所属购物车
	BackendID      string    `gorm:"type:varchar(128)" json:"backend_id"`                          // 内容后端文档ID
	Status         string    `gorm:"index;not null" json:"status"`                                 // 订单状态
	CustomerName   string    `gorm:"not null" json:"name"`                                         // 姓名
	Phone          string    `gorm:"not null" json:"phone"`                                        // 电话
	Email          string    `json:"email,omitempty"`                                              // 邮箱（可选）
	Address        string    `gorm:"not null" json:"address"`                                      // 地址
	City           string    `gorm:"not null" json:"city"`                                         // 城市
	ZipCode        string    `gorm:"not null" json:"zip_code"`                                     // 邮编
	Currency       string    `gorm:"not null" json:"currency"`                                     // 币种
	Subtotal       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 商品小计
	ShippingFee    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_fee"`    // 运费
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	GrandTotal     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"grand_total"`     // 应付总额
	PromoCode      *string   `gorm:"type:varchar(64)" json:"promo_code"`                           // 优惠码
	OrderDate      time.Time `gorm:"index" json:"order_date"`                                      // 下单时间
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                                                   // 更新时间

	Items []OrderRecordItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (OrderRecord) TableName() string {
	return "order_records"
}

// ShippingTo 收货地址摘要
func (o *OrderRecord) ShippingTo() string {
	if o == nil {
		return ""
	}
	return o.Address + ", " + o.City + " - " + o.ZipCode
}
