package service

import (
	"errors"
	"strings"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrCartIDInvalid         = errors.New("cart id invalid")
	ErrCartTokenInvalid      = errors.New("cart token invalid")
	ErrSlugRequired          = errors.New("slug is required")
	ErrProductNotFound       = errors.New("product not found")
	ErrProductOutOfStock     = errors.New("product out of stock")
	ErrCartEmpty             = errors.New("cart is empty")
	ErrCartLineNotFound      = errors.New("cart line not found")
	ErrQuantityActionInvalid = errors.New("quantity action invalid")
	ErrBillingFieldMissing   = errors.New("billing field missing")
	ErrPromoCodeInvalid      = errors.New("promo code invalid")
	ErrCheckoutInProgress    = errors.New("checkout in progress")
	ErrOrderSubmitFailed     = errors.New("order submit failed")
	ErrCatalogUnavailable    = errors.New("catalog unavailable")
	ErrFilterInvalid         = errors.New("filter invalid")
	ErrCaptchaRequired       = errors.New("captcha required")
	ErrCaptchaInvalid        = errors.New("captcha invalid")
	ErrCaptchaUnavailable    = errors.New("captcha unavailable")
	ErrCartStoreUnavailable  = errors.New("cart store unavailable")
	ErrOrderNoExhausted      = errors.New("order no exhausted")
)

// BillingFieldError 缺失的收货字段
type BillingFieldError struct {
	Fields []string
}

func (e *BillingFieldError) Error() string {
	return ErrBillingFieldMissing.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *BillingFieldError) Unwrap() error {
	return ErrBillingFieldMissing
}
