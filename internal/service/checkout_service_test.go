package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/avion-shop/internal/config"
	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/models"
)

func validBilling() BillingInput {
	return BillingInput{
		Name:    "Ada Lovelace",
		Phone:   "555-0100",
		Address: "1 Main St",
		City:    "Springfield",
		ZipCode: "12345",
	}
}

func fillScenarioCart(t *testing.T, fx *serviceFixture, cartID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := fx.carts.AddProduct(ctx, cartID, "oak-chair"); err != nil {
		t.Fatalf("add chair failed: %v", err)
	}
	if _, err := fx.carts.ChangeQuantity(ctx, cartID, "oak-chair", "increase"); err != nil {
		t.Fatalf("increase chair failed: %v", err)
	}
	if _, err := fx.carts.AddProduct(ctx, cartID, "table-lamp"); err != nil {
		t.Fatalf("add lamp failed: %v", err)
	}
}

func TestCheckoutSummaryAndPromo(t *testing.T) {
	fx := newServiceFixture(t, config.CaptchaConfig{}, false)
	ctx := context.Background()
	fillScenarioCart(t, fx, "cart-a")

	summary, err := fx.checkout.Summary(ctx, "cart-a")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Pricing.Subtotal.String() != "250.00" || summary.Pricing.Total.String() != "450.00" {
		t.Fatalf("unexpected summary pricing: %+v", summary.Pricing)
	}

	summary, err = fx.checkout.ApplyPromo(ctx, "cart-a", "DISCOUNT10")
	if err != nil {
		t.Fatalf("apply promo failed: %v", err)
	}
	if summary.Pricing.Total.String() != "425.00" {
		t.Fatalf("promo total want 425.00 got %s", summary.Pricing.Total)
	}

	if _, err := fx.checkout.ApplyPromo(ctx, "cart-a", "discount10"); !errors.Is(err, ErrPromoCodeInvalid) {
		t.Fatalf("wrong case promo want ErrPromoCodeInvalid got %v", err)
	}
	summary, err = fx.checkout.Summary(ctx, "cart-a")
	if err != nil || summary.Pricing.PromoApplied || summary.Pricing.Total.String() != "450.00" {
		t.Fatalf("invalid promo should clear the stored code: %+v (%v)", summary, err)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	fx := newServiceFixture(t, config.CaptchaConfig{}, false)
	ctx := context.Background()

	if _, err := fx.checkout.PlaceOrder(ctx, "cart-a", PlaceOrderInput{Billing: validBilling()}); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("empty cart want ErrCartEmpty got %v", err)
	}

	fillScenarioCart(t, fx, "cart-a")
	billing := validBilling()
	billing.City = "  "
	billing.ZipCode = ""
	_, err := fx.checkout.PlaceOrder(ctx, "cart-a", PlaceOrderInput{Billing: billing})
	var fieldErr *BillingFieldError
	if !errors.As(err, &fieldErr) || !errors.Is(err, ErrBillingFieldMissing) {
		t.Fatalf("missing fields want BillingFieldError got %v", err)
	}
	if strings.Join(fieldErr.Fields, ",") != "city,zip_code" {
		t.Fatalf("missing fields want city,zip_code got %v", fieldErr.Fields)
	}
	if len(fx.backend.created) != 0 {
		t.Fatalf("validation failure must not submit")
	}
	if state := fx.checkout.tracker.State("cart-a"); state != constants.CheckoutStateIdle {
		t.Fatalf("validation failure should return to idle, got %s", state)
	}
}

func TestPlaceOrderSubmitFailureKeepsCart(t *testing.T) {
	fx := newServiceFixture(t, config.CaptchaConfig{}, false)
	ctx := context.Background()
	fillScenarioCart(t, fx, "cart-a")
	fx.backend.failCreate = true

	if _, err := fx.checkout.PlaceOrder(ctx, "cart-a", PlaceOrderInput{Billing: validBilling()}); !errors.Is(err, ErrOrderSubmitFailed) {
		t.Fatalf("backend failure want ErrOrderSubmitFailed got %v", err)
	}
	if count, _ := fx.carts.Count(ctx, "cart-a"); count != 2 {
		t.Fatalf("cart must be untouched after failed submit, got %d lines", count)
	}

	fx.backend.failCreate = false
	if _, err := fx.checkout.PlaceOrder(ctx, "cart-a", PlaceOrderInput{Billing: validBilling()}); err != nil {
		t.Fatalf("retry after failure should succeed: %v", err)
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	fx := newServiceFixture(t, config.CaptchaConfig{}, false)
	ctx := context.Background()
	fillScenarioCart(t, fx, "cart-a")
	if _, err := fx.checkout.ApplyPromo(ctx, "cart-a", "DISCOUNT10"); err != nil {
		t.Fatalf("apply promo failed: %v", err)
	}

	receipt, err := fx.checkout.PlaceOrder(ctx, "cart-a", PlaceOrderInput{Billing: validBilling()})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if !regexp.MustCompile(`^AV\d{20}$`).MatchString(receipt.OrderNo) {
		t.Fatalf("unexpected order no: %s", receipt.OrderNo)
	}
	if receipt.ShippingTo != "1 Main St, Springfield - 12345" {
		t.Fatalf("unexpected shipping_to: %s", receipt.ShippingTo)
	}
	if receipt.Order.GrandTotal.String() != "425.00" || receipt.Order.Subtotal.String() != "250.00" {
		t.Fatalf("unexpected totals: %+v", receipt.Order)
	}
	if receipt.Order.PromoCode == nil || *receipt.Order.PromoCode != "DISCOUNT10" {
		t.Fatalf("promo code should be recorded")
	}

	if len(fx.backend.created) != 1 {
		t.Fatalf("one order should be submitted, got %d", len(fx.backend.created))
	}
	doc := fx.backend.created[0]
	if doc["_type"] != "order" || doc["zipCode"] != "12345" {
		t.Fatalf("unexpected order document: %v", doc)
	}
	products := doc["products"].([]map[string]interface{})
	if len(products) != 2 || !strings.HasPrefix(products[0]["_key"].(string), "oak-chair-") {
		t.Fatalf("unexpected products: %v", products)
	}

	if count, _ := fx.carts.Count(ctx, "cart-a"); count != 0 {
		t.Fatalf("cart should be cleared after success, got %d", count)
	}
	if state := fx.checkout.tracker.State("cart-a"); state != constants.CheckoutStateCleared {
		t.Fatalf("state want cleared got %s", state)
	}

	mirrored, err := fx.checkout.GetOrder(ctx, "cart-a", receipt.OrderNo)
	if err != nil || mirrored.BackendID != "order-1" || len(mirrored.Items) != 2 {
		t.Fatalf("order should be mirrored locally: %+v (%v)", mirrored, err)
	}
	if _, err := fx.checkout.GetOrder(ctx, "cart-b", receipt.OrderNo); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other cart want ErrNotFound got %v", err)
	}
	orders, total, err := fx.checkout.ListOrders(ctx, "cart-a", 1, 10)
	if err != nil || len(orders) != 1 || total != 1 {
		t.Fatalf("history want 1 order got %d (%v)", len(orders), err)
	}
}

func TestPlaceOrderKeepsLinesAddedDuringSubmit(t *testing.T) {
	fx := newServiceFixture(t, config.CaptchaConfig{}, false)
	ctx := context.Background()
	fillScenarioCart(t, fx, "cart-a")
	if _, err := fx.checkout.ApplyPromo(ctx, "cart-a", "DISCOUNT10"); err != nil {
		t.Fatalf("apply promo failed: %v", err)
	}
	fx.backend.onCreate = func() {
		fx.backend.onCreate = nil
		if _, err := fx.carts.AddProduct(ctx, "cart-a", "table-lamp"); err != nil {
			t.Errorf("add during submit failed: %v", err)
		}
		if _, err := fx.carts.ChangeQuantity(ctx, "cart-a", "oak-chair", "increase"); err != nil {
			t.Errorf("increase during submit failed: %v", err)
		}
	}

	receipt, err := fx.checkout.PlaceOrder(ctx, "cart-a", PlaceOrderInput{Billing: validBilling()})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if len(receipt.Order.Items) != 2 {
		t.Fatalf("ordered items want 2 got %d", len(receipt.Order.Items))
	}

	slot, err := fx.carts.Get(ctx, "cart-a")
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(slot.Lines) != 2 {
		t.Fatalf("lines added during submit should stay, got %+v", slot.Lines)
	}
	if slot.Lines[0].Slug != "oak-chair" || slot.Lines[0].Quantity != 1 {
		t.Fatalf("chair should keep the unordered quantity, got %+v", slot.Lines[0])
	}
	if slot.Lines[1].Slug != "table-lamp" || slot.Lines[1].Quantity != 1 {
		t.Fatalf("new lamp line should stay, got %+v", slot.Lines[1])
	}
	if slot.PromoCode != "" {
		t.Fatalf("ordered promo should be cleared, got %q", slot.PromoCode)
	}
}

func TestPlaceOrderRejectsConcurrentSubmit(t *testing.T) {
	fx := newServiceFixture(t, config.CaptchaConfig{}, false)
	ctx := context.Background()
	fillScenarioCart(t, fx, "cart-a")

	if err := fx.checkout.tracker.Begin(ctx, "cart-a"); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	fx.checkout.tracker.Submitting("cart-a")
	if _, err := fx.checkout.PlaceOrder(ctx, "cart-a", PlaceOrderInput{Billing: validBilling()}); !errors.Is(err, ErrCheckoutInProgress) {
		t.Fatalf("second submit want ErrCheckoutInProgress got %v", err)
	}
	if len(fx.backend.created) != 0 {
		t.Fatalf("in-progress submit must not reach the backend")
	}
}

func TestPlaceOrderCaptcha(t *testing.T) {
	fx := newServiceFixture(t, config.CaptchaConfig{Checkout: true}, false)
	ctx := context.Background()
	fillScenarioCart(t, fx, "cart-a")

	if _, err := fx.checkout.PlaceOrder(ctx, "cart-a", PlaceOrderInput{Billing: validBilling()}); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("missing captcha want ErrCaptchaRequired got %v", err)
	}
	input := PlaceOrderInput{
		Billing: validBilling(),
		Captcha: CaptchaVerifyPayload{CaptchaID: "unknown", CaptchaCode: "abcde"},
	}
	if _, err := fx.checkout.PlaceOrder(ctx, "cart-a", input); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("wrong captcha want ErrCaptchaInvalid got %v", err)
	}
}

func TestBuildOrderItemKeysAreUnique(t *testing.T) {
	fx := newServiceFixture(t, config.CaptchaConfig{}, false)
	slot := models.NewCartSlot()
	slot.Lines = []models.CartLine{
		{Slug: "oak-chair", Name: "Oak Chair", Price: models.NewMoneyFromInt(100), Quantity: 1},
		{Slug: "oak-chair", Name: "Oak Chair", Price: models.NewMoneyFromInt(100), Quantity: 3},
	}
	now := time.UnixMilli(1700000000000)
	order := fx.checkout.buildOrder("cart-a", validBilling(), slot, now)
	if order.Items[0].ItemKey != "oak-chair-1700000000000" || order.Items[1].ItemKey != "oak-chair-1700000000000-1" {
		t.Fatalf("unexpected keys: %s %s", order.Items[0].ItemKey, order.Items[1].ItemKey)
	}
	if order.Subtotal.String() != "400.00" || order.GrandTotal.String() != "600.00" {
		t.Fatalf("unexpected totals: %s %s", order.Subtotal, order.GrandTotal)
	}
}

func TestNextOrderNoSkipsExistingNumbers(t *testing.T) {
	fx := newServiceFixture(t, config.CaptchaConfig{}, false)
	existing := &models.OrderRecord{OrderNo: "AV00000000000000000001", CartID: "cart-a", OrderDate: time.Now()}
	if err := fx.orders.Create(existing); err != nil {
		t.Fatalf("seed order failed: %v", err)
	}

	candidates := []string{"AV00000000000000000001", "AV00000000000000000002"}
	fx.checkout.newOrderNo = func() string {
		next := candidates[0]
		candidates = candidates[1:]
		return next
	}
	orderNo, err := fx.checkout.nextOrderNo()
	if err != nil || orderNo != "AV00000000000000000002" {
		t.Fatalf("want fresh order no got %q (%v)", orderNo, err)
	}

	fx.checkout.newOrderNo = func() string { return existing.OrderNo }
	if _, err := fx.checkout.nextOrderNo(); !errors.Is(err, ErrOrderNoExhausted) {
		t.Fatalf("colliding numbers want ErrOrderNoExhausted got %v", err)
	}
}
