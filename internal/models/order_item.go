package models

import (
	"time"
)

// OrderRecordItem 订单项快照
type OrderRecordItem struct {
	ID        uint      `gorm:"primarykey" json:"-"`                                  // 主键
	OrderID   uint      `gorm:"index;not null" json:"-"`                              // 订单ID
	ItemKey   string    `gorm:"type:varchar(160);not null" json:"key"`                // 行键 slug-毫秒时间戳
	Slug      string    `gorm:"index;not null" json:"slug"`                           // 商品标识
	Name      string    `gorm:"not null" json:"name"`                                 // 商品名称快照
	Price     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`   // 单价
	Quantity  int       `gorm:"not null" json:"quantity"`                             // 数量
	ImageURL  string    `gorm:"type:varchar(1000)" json:"image_url,omitempty"`        // 图片
	CreatedAt time.Time `json:"-"`                                                    // 创建时间
}

// TableName 指定表名
func (OrderRecordItem) TableName() string {
	return "order_record_items"
}
