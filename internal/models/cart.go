package models

import "time"

// CartLine 购物车行（商品快照 + 数量）
type CartLine struct {
	Slug     string    `json:"slug"`
	Name     string    `json:"name"`
	Price    Money     `json:"price"`
	ImageURL string    `json:"image_url,omitempty"`
	Category *Category `json:"category,omitempty"`
	Type     string    `json:"type,omitempty"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

// LineTotal 单行金额
func (l CartLine) LineTotal() Money {
	return l.Price.Mul(l.EffectiveQuantity())
}

// EffectiveQuantity 缺失或非法数量按 1 处理
func (l CartLine) EffectiveQuantity() int {
	if l.Quantity < 1 {
		return 1
	}
	return l.Quantity
}

// CartSlot 单个购物车的完整序列化状态
type CartSlot struct {
	Lines     []CartLine `json:"lines"`
	PromoCode string     `json:"promo_code,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCartSlot 创建空购物车
func NewCartSlot() *CartSlot {
	return &CartSlot{Lines: make([]CartLine, 0)}
}

// Count 行数（角标数量）
func (s *CartSlot) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Lines)
}

// IsEmpty 是否为空
func (s *CartSlot) IsEmpty() bool {
	return s.Count() == 0
}

// Clone 深拷贝
func (s *CartSlot) Clone() *CartSlot {
	if s == nil {
		return NewCartSlot()
	}
	out := &CartSlot{
		Lines:     make([]CartLine, len(s.Lines)),
		PromoCode: s.PromoCode,
		UpdatedAt: s.UpdatedAt,
	}
	for i, line := range s.Lines {
		out.Lines[i] = line
		if line.Category != nil {
			category := *line.Category
			out.Lines[i].Category = &category
		}
	}
	return out
}

// Normalize 修正反序列化后的缺省值
func (s *CartSlot) Normalize() {
	if s.Lines == nil {
		s.Lines = make([]CartLine, 0)
	}
	for i := range s.Lines {
		if s.Lines[i].Quantity < 1 {
			s.Lines[i].Quantity = 1
		}
	}
}

// CartSlotRow 数据库驱动下的购物车存储行
type CartSlotRow struct {
	CartID    string     `gorm:"primaryKey;type:varchar(64)" json:"cart_id"` // 购物车ID
	Payload   string     `gorm:"type:text;not null" json:"payload"`          // 序列化后的 CartSlot
	Version   int64      `gorm:"not null;default:0" json:"version"`          // 写入版本
	ExpiresAt *time.Time `gorm:"index" json:"expires_at"`                    // 过期时间
	CreatedAt time.Time  `json:"created_at"`                                 // 创建时间
	UpdatedAt time.Time  `gorm:"index" json:"updated_at"`                    // 更新时间
}

// TableName 指定表名
func (CartSlotRow) TableName() string {
	return "cart_slots"
}
