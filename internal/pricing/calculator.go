package pricing

import (
	"strings"

	"github.com/avion-shop/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculator 购物车计价
type Calculator struct {
	ShippingFee  decimal.Decimal
	PromoCode    string
	PromoPercent decimal.Decimal
	Currency     string
}

// Breakdown 计价明细
type Breakdown struct {
	Currency       string       `json:"currency"`
	ItemCount      int          `json:"item_count"`
	Subtotal       models.Money `json:"subtotal"`
	ShippingFee    models.Money `json:"shipping_fee"`
	DiscountAmount models.Money `json:"discount_amount"`
	PromoCode      string       `json:"promo_code,omitempty"`
	PromoApplied   bool         `json:"promo_applied"`
	Total          models.Money `json:"total"`
}

// NewCalculator 根据配置创建计价器，非法运费按 0 处理
func NewCalculator(shippingFee string, promoCode string, promoPercent int, currency string) *Calculator {
	fee, err := decimal.NewFromString(strings.TrimSpace(shippingFee))
	if err != nil || fee.IsNegative() {
		fee = decimal.Zero
	}
	if promoPercent < 0 {
		promoPercent = 0
	}
	if promoPercent > 100 {
		promoPercent = 100
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return &Calculator{
		ShippingFee:  fee,
		PromoCode:    strings.TrimSpace(promoCode),
		PromoPercent: decimal.NewFromInt(int64(promoPercent)),
		Currency:     currency,
	}
}

// Subtotal Σ 单价 × 数量
func (c *Calculator) Subtotal(lines []models.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal().Decimal)
	}
	return total
}

// ValidPromo 优惠码精确匹配（区分大小写）
func (c *Calculator) ValidPromo(code string) bool {
	return c.PromoCode != "" && code == c.PromoCode
}

// Discount 当前小计下的优惠金额，每次按最新小计重新计算
func (c *Calculator) Discount(subtotal decimal.Decimal, promoCode string) decimal.Decimal {
	if !c.ValidPromo(promoCode) {
		return decimal.Zero
	}
	return subtotal.Mul(c.PromoPercent).Div(hundred).Round(2)
}

// Calculate 计算完整明细：小计 − 优惠 + 运费
func (c *Calculator) Calculate(lines []models.CartLine, promoCode string) Breakdown {
	subtotal := c.Subtotal(lines)
	discount := c.Discount(subtotal, promoCode)
	breakdown := Breakdown{
		Currency:       c.Currency,
		ItemCount:      len(lines),
		Subtotal:       models.NewMoneyFromDecimal(subtotal),
		ShippingFee:    models.NewMoneyFromDecimal(c.ShippingFee),
		DiscountAmount: models.NewMoneyFromDecimal(discount),
		Total:          models.NewMoneyFromDecimal(subtotal.Sub(discount).Add(c.ShippingFee)),
	}
	if c.ValidPromo(promoCode) {
		breakdown.PromoCode = promoCode
		breakdown.PromoApplied = true
	}
	return breakdown
}
