package models

// Product 内容后端中的商品（只读）
type Product struct {
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Price       Money       `json:"price"`
	Type        string      `json:"type"`
	ImageURL    string      `json:"image_url,omitempty"`
	Category    *Category   `json:"category,omitempty"`
	Description string      `json:"description,omitempty"`
	Features    []string    `json:"features,omitempty"`
	Dimensions  *Dimensions `json:"dimensions,omitempty"`
	Quantity    *int        `json:"quantity,omitempty"` // 库存，nil 表示未知
}

// Dimensions 商品尺寸（自由文本）
type Dimensions struct {
	Height string `json:"height,omitempty"`
	Width  string `json:"width,omitempty"`
	Depth  string `json:"depth,omitempty"`
}

// OutOfStock 库存已知且为 0
func (p *Product) OutOfStock() bool {
	return p != nil && p.Quantity != nil && *p.Quantity <= 0
}

// ToCartLine 生成购物车快照
func (p *Product) ToCartLine() CartLine {
	line := CartLine{
		Slug:     p.Slug,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Type:     p.Type,
		Quantity: 1,
	}
	if p.Category != nil {
		category := *p.Category
		line.Category = &category
	}
	return line
}
