package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avion-shop/internal/cartstore"
	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/logger"
	"github.com/avion-shop/internal/models"
	"github.com/avion-shop/internal/pricing"
)

// ProductCatalog 购物车依赖的商品查询能力
type ProductCatalog interface {
	GetProduct(ctx context.Context, slug string) (*models.Product, error)
	LookupBySlugs(ctx context.Context, slugs []string) (map[string]models.Product, error)
}

// CartLineView 购物车行展示数据
type CartLineView struct {
	models.CartLine
	LineTotal    models.Money  `json:"line_total"`
	Available    *bool         `json:"available,omitempty"`
	LivePrice    *models.Money `json:"live_price,omitempty"`
	Stock        *int          `json:"stock,omitempty"`
	PriceChanged bool          `json:"price_changed,omitempty"`
}

// CartView 购物车展示数据
type CartView struct {
	Lines      []CartLineView    `json:"lines"`
	Count      int               `json:"count"`
	PromoCode  string            `json:"promo_code,omitempty"`
	Pricing    pricing.Breakdown `json:"pricing"`
	Reconciled bool              `json:"reconciled"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// CartService 购物车服务
type CartService struct {
	store      cartstore.Store
	catalog    ProductCatalog
	calculator *pricing.Calculator
	mergeOnAdd bool
}

// NewCartService 创建购物车服务
func NewCartService(store cartstore.Store, catalog ProductCatalog, calculator *pricing.Calculator, mergeOnAdd bool) *CartService {
	return &CartService{
		store:      store,
		catalog:    catalog,
		calculator: calculator,
		mergeOnAdd: mergeOnAdd,
	}
}

// Get 读取购物车
func (s *CartService) Get(ctx context.Context, cartID string) (*models.CartSlot, error) {
	slot, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, s.storeError("cart_slot_load_failed", cartID, err)
	}
	return slot, nil
}

// Count 购物车行数
func (s *CartService) Count(ctx context.Context, cartID string) (int, error) {
	slot, err := s.Get(ctx, cartID)
	if err != nil {
		return 0, err
	}
	return slot.Count(), nil
}

// View 购物车展示数据，refresh 时与后端当前商品信息核对
func (s *CartService) View(ctx context.Context, cartID string, refresh bool) (*CartView, error) {
	slot, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	view := s.buildView(slot)
	if !refresh || slot.IsEmpty() {
		return view, nil
	}

	slugs := make([]string, 0, len(slot.Lines))
	for _, line := range slot.Lines {
		slugs = append(slugs, line.Slug)
	}
	live, err := s.catalog.LookupBySlugs(ctx, slugs)
	if err != nil {
		// 核对失败时退回快照数据
		return view, nil
	}
	for i := range view.Lines {
		line := &view.Lines[i]
		product, ok := live[line.Slug]
		available := ok && !product.OutOfStock()
		line.Available = &available
		if !ok {
			continue
		}
		price := product.Price
		line.LivePrice = &price
		line.Stock = product.Quantity
		line.PriceChanged = !price.Equal(line.Price.Decimal)
	}
	view.Reconciled = true
	return view, nil
}

// AddProduct 查询商品后加入购物车，库存为 0 时拒绝
func (s *CartService) AddProduct(ctx context.Context, cartID, slug string) (*models.CartSlot, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	product, err := s.catalog.GetProduct(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product.OutOfStock() {
		return nil, ErrProductOutOfStock
	}
	return s.AddSnapshot(ctx, cartID, product.ToCartLine())
}

// AddSnapshot 将商品快照加入购物车
// 默认追加新行；开启 merge_on_add 时同 slug 的行数量加一。
func (s *CartService) AddSnapshot(ctx context.Context, cartID string, line models.CartLine) (*models.CartSlot, error) {
	line.Slug = strings.TrimSpace(line.Slug)
	if line.Slug == "" {
		return nil, ErrSlugRequired
	}
	line.Quantity = 1
	line.AddedAt = time.Now()
	return s.update(ctx, cartID, func(slot *models.CartSlot) error {
		if s.mergeOnAdd {
			for i := range slot.Lines {
				if slot.Lines[i].Slug == line.Slug {
					slot.Lines[i].Quantity++
					return nil
				}
			}
		}
		slot.Lines = append(slot.Lines, line)
		return nil
	})
}

// ChangeQuantity 调整同 slug 所有行的数量，减少时最小为 1
func (s *CartService) ChangeQuantity(ctx context.Context, cartID, slug, action string) (*models.CartSlot, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	action = strings.ToLower(strings.TrimSpace(action))
	if action != constants.QuantityActionIncrease && action != constants.QuantityActionDecrease {
		return nil, ErrQuantityActionInvalid
	}
	return s.update(ctx, cartID, func(slot *models.CartSlot) error {
		matched := false
		for i := range slot.Lines {
			if slot.Lines[i].Slug != slug {
				continue
			}
			matched = true
			if action == constants.QuantityActionIncrease {
				slot.Lines[i].Quantity++
			} else if slot.Lines[i].Quantity > 1 {
				slot.Lines[i].Quantity--
			}
		}
		if !matched {
			return ErrCartLineNotFound
		}
		return nil
	})
}

// RemoveBySlug 删除同 slug 的所有行
func (s *CartService) RemoveBySlug(ctx context.Context, cartID, slug string) (*models.CartSlot, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	return s.update(ctx, cartID, func(slot *models.CartSlot) error {
		kept := slot.Lines[:0]
		for _, line := range slot.Lines {
			if line.Slug != slug {
				kept = append(kept, line)
			}
		}
		slot.Lines = kept
		return nil
	})
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, cartID string) error {
	if err := s.store.Clear(ctx, cartID); err != nil {
		return s.storeError("cart_slot_clear_failed", cartID, err)
	}
	return nil
}

// RemoveOrdered 移除已下单的行，按 slug 与加入时间匹配
// 下单期间新加入的行保留；下单后数量增加的行保留差额。
func (s *CartService) RemoveOrdered(ctx context.Context, cartID string, ordered []models.CartLine, promoCode string) (*models.CartSlot, error) {
	return s.update(ctx, cartID, func(slot *models.CartSlot) error {
		remaining := make([]models.CartLine, len(ordered))
		copy(remaining, ordered)
		kept := make([]models.CartLine, 0, len(slot.Lines))
		for _, line := range slot.Lines {
			idx := matchOrderedLine(remaining, line)
			if idx < 0 {
				kept = append(kept, line)
				continue
			}
			left := line.EffectiveQuantity() - remaining[idx].EffectiveQuantity()
			remaining = append(remaining[:idx], remaining[idx+1:]...)
			if left > 0 {
				line.Quantity = left
				kept = append(kept, line)
			}
		}
		slot.Lines = kept
		if slot.PromoCode == promoCode {
			slot.PromoCode = ""
		}
		return nil
	})
}

func matchOrderedLine(ordered []models.CartLine, line models.CartLine) int {
	for i := range ordered {
		if ordered[i].Slug == line.Slug && ordered[i].AddedAt.Equal(line.AddedAt) {
			return i
		}
	}
	return -1
}

// Update 在购物车上执行自定义修改，供结算流程复用
func (s *CartService) Update(ctx context.Context, cartID string, fn cartstore.MutateFunc) (*models.CartSlot, error) {
	return s.update(ctx, cartID, fn)
}

func (s *CartService) update(ctx context.Context, cartID string, fn cartstore.MutateFunc) (*models.CartSlot, error) {
	var fnErr error
	slot, err := s.store.Update(ctx, cartID, func(slot *models.CartSlot) error {
		fnErr = fn(slot)
		return fnErr
	})
	if fnErr != nil {
		return nil, fnErr
	}
	if err != nil {
		return nil, s.storeError("cart_slot_update_failed", cartID, err)
	}
	return slot, nil
}

func (s *CartService) buildView(slot *models.CartSlot) *CartView {
	view := &CartView{
		Lines:     make([]CartLineView, 0, len(slot.Lines)),
		Count:     slot.Count(),
		PromoCode: slot.PromoCode,
		Pricing:   s.calculator.Calculate(slot.Lines, slot.PromoCode),
		UpdatedAt: slot.UpdatedAt,
	}
	for _, line := range slot.Lines {
		view.Lines = append(view.Lines, CartLineView{CartLine: line, LineTotal: line.LineTotal()})
	}
	return view
}

func (s *CartService) storeError(event, cartID string, err error) error {
	if errors.Is(err, cartstore.ErrCartIDRequired) {
		return ErrCartIDInvalid
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logger.Warnw(event, "cart_id", cartID, "driver", s.store.Driver(), "error", err)
	return fmt.Errorf("%w: %v", ErrCartStoreUnavailable, err)
}
