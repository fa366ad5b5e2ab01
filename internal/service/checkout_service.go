package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avion-shop/internal/cache"
	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/contentapi"
	"github.com/avion-shop/internal/logger"
	"github.com/avion-shop/internal/models"
	"github.com/avion-shop/internal/pricing"
	"github.com/avion-shop/internal/queue"
	"github.com/avion-shop/internal/repository"

	"github.com/hibiken/asynq"
)

// OrderSubmitter 订单提交到内容后端
type OrderSubmitter interface {
	Create(ctx context.Context, doc contentapi.Document) (*contentapi.MutationResult, error)
}

// BillingInput 收货信息
type BillingInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zip_code"`
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	Billing BillingInput
	Captcha CaptchaVerifyPayload
}

// CheckoutSummary 结算页摘要
type CheckoutSummary struct {
	Lines   []CartLineView    `json:"lines"`
	Pricing pricing.Breakdown `json:"pricing"`
	State   string            `json:"state"`
}

// OrderReceipt 下单回执
type OrderReceipt struct {
	OrderNo    string              `json:"order_no"`
	ShippingTo string              `json:"shipping_to"`
	State      string              `json:"state"`
	Order      *models.OrderRecord `json:"order"`
}

// CheckoutService 结算服务
type CheckoutService struct {
	carts      *CartService
	calculator *pricing.Calculator
	submitter  OrderSubmitter
	orders     repository.OrderRepository
	queue      *queue.Client
	captcha    *CaptchaService
	tracker    *CheckoutTracker
	newOrderNo func() string
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(
	carts *CartService,
	calculator *pricing.Calculator,
	submitter OrderSubmitter,
	orders repository.OrderRepository,
	queueClient *queue.Client,
	captcha *CaptchaService,
	tracker *CheckoutTracker,
) *CheckoutService {
	if tracker == nil {
		tracker = NewCheckoutTracker()
	}
	return &CheckoutService{
		carts:      carts,
		calculator: calculator,
		submitter:  submitter,
		orders:     orders,
		queue:      queueClient,
		captcha:    captcha,
		tracker:    tracker,
		newOrderNo: generateOrderNo,
	}
}

// Summary 当前购物车的结算摘要
func (s *CheckoutService) Summary(ctx context.Context, cartID string) (*CheckoutSummary, error) {
	view, err := s.carts.View(ctx, cartID, false)
	if err != nil {
		return nil, err
	}
	return &CheckoutSummary{
		Lines:   view.Lines,
		Pricing: view.Pricing,
		State:   s.tracker.State(cartID),
	}, nil
}

// ApplyPromo 应用优惠码
// 精确匹配时保存到购物车，其余输入清除已保存的优惠码并返回 ErrPromoCodeInvalid。
func (s *CheckoutService) ApplyPromo(ctx context.Context, cartID, code string) (*CheckoutSummary, error) {
	valid := s.calculator.ValidPromo(code)
	_, err := s.carts.Update(ctx, cartID, func(slot *models.CartSlot) error {
		if valid {
			slot.PromoCode = code
		} else {
			slot.PromoCode = ""
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrPromoCodeInvalid
	}
	return s.Summary(ctx, cartID)
}

// PlaceOrder 校验并提交订单
// 提交失败时购物车保持不变；成功后移除已下单的行并写入本地镜像。
func (s *CheckoutService) PlaceOrder(ctx context.Context, cartID string, input PlaceOrderInput) (*OrderReceipt, error) {
	if err := s.tracker.Begin(ctx, cartID); err != nil {
		return nil, err
	}

	order, snapshot, err := s.prepareOrder(ctx, cartID, input)
	if err != nil {
		s.tracker.Fail(ctx, cartID)
		return nil, err
	}

	s.tracker.Submitting(cartID)
	result, err := s.submitter.Create(ctx, buildOrderDocument(order))
	if err != nil {
		s.tracker.Fail(ctx, cartID)
		logger.Warnw("checkout_order_submit_failed", "cart_id", cartID, "order_no", order.OrderNo, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrOrderSubmitFailed, err)
	}
	s.tracker.Succeed(cartID)
	if result != nil {
		order.BackendID = result.DocumentID
	}

	// 订单已被后端接收，后续步骤失败只记录日志
	if _, err := s.carts.RemoveOrdered(context.WithoutCancel(ctx), cartID, snapshot.Lines, snapshot.PromoCode); err != nil {
		logger.Errorw("checkout_cart_clear_failed", "cart_id", cartID, "order_no", order.OrderNo, "error", err)
	}
	s.mirrorOrder(ctx, order)
	if err := cache.SetOrderReceipt(context.WithoutCancel(ctx), cartID, order); err != nil {
		logger.Warnw("checkout_receipt_cache_failed", "order_no", order.OrderNo, "error", err)
	}
	s.tracker.Cleared(ctx, cartID)

	return &OrderReceipt{
		OrderNo:    order.OrderNo,
		ShippingTo: order.ShippingTo(),
		State:      constants.CheckoutStateCleared,
		Order:      order,
	}, nil
}

// GetOrder 查询购物车自己的订单
func (s *CheckoutService) GetOrder(ctx context.Context, cartID, orderNo string) (*models.OrderRecord, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, ErrNotFound
	}
	order, err := s.orders.GetByOrderNoAndCart(orderNo, cartID)
	if err != nil {
		return nil, err
	}
	if order != nil {
		return order, nil
	}
	cached, ok, err := cache.GetOrderReceipt(ctx, cartID, orderNo)
	if err != nil {
		logger.Warnw("checkout_receipt_cache_read_failed", "order_no", orderNo, "error", err)
	}
	if ok && cached != nil {
		return cached, nil
	}
	return nil, ErrNotFound
}

// ListOrders 购物车的历史订单
func (s *CheckoutService) ListOrders(ctx context.Context, cartID string, page, pageSize int) ([]models.OrderRecord, int64, error) {
	return s.orders.ListByCart(cartID, page, pageSize)
}

// SaveOrderMirror 写入订单本地镜像，重复订单号忽略
func (s *CheckoutService) SaveOrderMirror(order *models.OrderRecord) error {
	if order == nil {
		return errors.New("order is nil")
	}
	return s.orders.Create(order)
}

func (s *CheckoutService) prepareOrder(ctx context.Context, cartID string, input PlaceOrderInput) (*models.OrderRecord, *models.CartSlot, error) {
	if err := s.captcha.Verify(constants.CaptchaSceneCheckout, input.Captcha); err != nil {
		return nil, nil, err
	}
	billing, err := validateBilling(input.Billing)
	if err != nil {
		return nil, nil, err
	}
	slot, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, nil, err
	}
	if slot.IsEmpty() {
		return nil, nil, ErrCartEmpty
	}
	order := s.buildOrder(cartID, billing, slot, time.Now())
	orderNo, err := s.nextOrderNo()
	if err != nil {
		return nil, nil, err
	}
	order.OrderNo = orderNo
	return order, slot, nil
}

// nextOrderNo 生成本地镜像中不存在的订单号
func (s *CheckoutService) nextOrderNo() (string, error) {
	for i := 0; i < orderNoAttempts; i++ {
		orderNo := s.newOrderNo()
		exists, err := s.orders.ExistsByOrderNo(orderNo)
		if err != nil {
			logger.Warnw("checkout_order_no_check_failed", "order_no", orderNo, "error", err)
			return "", err
		}
		if !exists {
			return orderNo, nil
		}
	}
	return "", ErrOrderNoExhausted
}

func (s *CheckoutService) buildOrder(cartID string, billing BillingInput, slot *models.CartSlot, now time.Time) *models.OrderRecord {
	breakdown := s.calculator.Calculate(slot.Lines, slot.PromoCode)
	order := &models.OrderRecord{
		CartID:         cartID,
		Status:         constants.OrderStatusSubmitted,
		CustomerName:   billing.Name,
		Phone:          billing.Phone,
		Email:          billing.Email,
		Address:        billing.Address,
		City:           billing.City,
		ZipCode:        billing.ZipCode,
		Currency:       breakdown.Currency,
		Subtotal:       breakdown.Subtotal,
		ShippingFee:    breakdown.ShippingFee,
		DiscountAmount: breakdown.DiscountAmount,
		GrandTotal:     breakdown.Total,
		OrderDate:      now.UTC(),
		Items:          make([]models.OrderRecordItem, 0, len(slot.Lines)),
	}
	if breakdown.PromoApplied {
		code := breakdown.PromoCode
		order.PromoCode = &code
	}
	used := make(map[string]int, len(slot.Lines))
	for _, line := range slot.Lines {
		key := buildItemKey(line.Slug, now)
		if n := used[key]; n > 0 {
			used[key] = n + 1
			key = fmt.Sprintf("%s-%d", key, n)
		} else {
			used[key] = 1
		}
		order.Items = append(order.Items, models.OrderRecordItem{
			ItemKey:  key,
			Slug:     line.Slug,
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.EffectiveQuantity(),
			ImageURL: line.ImageURL,
		})
	}
	return order
}

func (s *CheckoutService) mirrorOrder(ctx context.Context, order *models.OrderRecord) {
	if s.queue != nil && s.queue.Enabled() {
		err := s.queue.EnqueueOrderMirror(queue.OrderMirrorPayload{CartID: order.CartID, Order: *order})
		if err == nil || errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return
		}
		logger.Warnw("checkout_order_mirror_enqueue_failed", "order_no", order.OrderNo, "error", err)
	}
	if err := s.SaveOrderMirror(order); err != nil {
		logger.Errorw("checkout_order_mirror_save_failed", "order_no", order.OrderNo, "error", err)
	}
}

func validateBilling(input BillingInput) (BillingInput, error) {
	billing := BillingInput{
		Name:    strings.TrimSpace(input.Name),
		Phone:   strings.TrimSpace(input.Phone),
		Email:   strings.TrimSpace(input.Email),
		Address: strings.TrimSpace(input.Address),
		City:    strings.TrimSpace(input.City),
		ZipCode: strings.TrimSpace(input.ZipCode),
	}
	required := []struct {
		field string
		value string
	}{
		{"name", billing.Name},
		{"phone", billing.Phone},
		{"address", billing.Address},
		{"city", billing.City},
		{"zip_code", billing.ZipCode},
	}
	missing := make([]string, 0)
	for _, item := range required {
		if item.value == "" {
			missing = append(missing, item.field)
		}
	}
	if len(missing) > 0 {
		return BillingInput{}, &BillingFieldError{Fields: missing}
	}
	return billing, nil
}

// buildOrderDocument 生成内容后端的订单文档
func buildOrderDocument(order *models.OrderRecord) contentapi.Document {
	products := make([]map[string]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		product := map[string]interface{}{
			"_key":     item.ItemKey,
			"name":     item.Name,
			"slug":     item.Slug,
			"price":    moneyNumber(item.Price),
			"quantity": item.Quantity,
		}
		if item.ImageURL != "" {
			product["imageUrl"] = item.ImageURL
		}
		products = append(products, product)
	}
	var promoCode interface{}
	if order.PromoCode != nil {
		promoCode = *order.PromoCode
	}
	return contentapi.Document{
		"_type":          constants.DocumentTypeOrder,
		"orderNo":        order.OrderNo,
		"name":           order.CustomerName,
		"phone":          order.Phone,
		"email":          order.Email,
		"address":        order.Address,
		"city":           order.City,
		"zipCode":        order.ZipCode,
		"products":       products,
		"totalAmount":    moneyNumber(order.Subtotal),
		"shippingFee":    moneyNumber(order.ShippingFee),
		"discountAmount": moneyNumber(order.DiscountAmount),
		"grandTotal":     moneyNumber(order.GrandTotal),
		"currency":       order.Currency,
		"orderDate":      order.OrderDate.Format(time.RFC3339Nano),
		"promoCode":      promoCode,
	}
}

func moneyNumber(m models.Money) json.Number {
	return json.Number(m.StringFixed(2))
}
