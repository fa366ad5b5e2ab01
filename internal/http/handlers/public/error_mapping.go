package public

import (
	"errors"

	"github.com/avion-shop/internal/http/response"
	"github.com/avion-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartCommonErrorRules = []mappedHandlerError{
	{target: service.ErrCartIDInvalid, code: response.CodeBadRequest, key: "error.cart_token_invalid"},
}

var cartMutationErrorRules = []mappedHandlerError{
	{target: service.ErrSlugRequired, code: response.CodeBadRequest, key: "error.slug_required"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrProductOutOfStock, code: response.CodeConflict, key: "error.product_out_of_stock"},
	{target: service.ErrCartLineNotFound, code: response.CodeNotFound, key: "error.cart_line_not_found"},
	{target: service.ErrQuantityActionInvalid, code: response.CodeBadRequest, key: "error.quantity_action_invalid"},
}

var catalogErrorRules = []mappedHandlerError{
	{target: service.ErrFilterInvalid, code: response.CodeBadRequest, key: "error.filter_invalid"},
	{target: service.ErrSlugRequired, code: response.CodeBadRequest, key: "error.slug_required"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrCatalogUnavailable, code: response.CodeBadGateway, key: "error.catalog_unavailable"},
}

var promoErrorRules = []mappedHandlerError{
	{target: service.ErrPromoCodeInvalid, code: response.CodeBadRequest, key: "error.promo_code_invalid"},
}

var placeOrderErrorRules = []mappedHandlerError{
	{target: service.ErrCaptchaRequired, code: response.CodeBadRequest, key: "error.captcha_required"},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, key: "error.captcha_invalid"},
	{target: service.ErrCaptchaUnavailable, code: response.CodeInternal, key: "error.captcha_unavailable"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrCheckoutInProgress, code: response.CodeConflict, key: "error.checkout_in_progress"},
	{target: service.ErrOrderSubmitFailed, code: response.CodeBadGateway, key: "error.order_submit_failed"},
}

var orderQueryErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
}

func respondCartReadError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.cart_fetch_failed")
}

func respondCartUpdateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(cartCommonErrorRules, cartMutationErrorRules), response.CodeInternal, "error.cart_update_failed")
}

func respondCatalogError(c *gin.Context, err error) {
	respondWithMappedError(c, err, catalogErrorRules, response.CodeInternal, "error.internal")
}

func respondPromoError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(cartCommonErrorRules, promoErrorRules), response.CodeInternal, "error.cart_update_failed")
}

func respondPlaceOrderError(c *gin.Context, err error) {
	var fieldErr *service.BillingFieldError
	if errors.As(err, &fieldErr) {
		respondErrorWithData(c, response.CodeBadRequest, "error.billing_field_missing", gin.H{"fields": fieldErr.Fields}, nil)
		return
	}
	respondWithMappedError(c, err, concatMappedHandlerErrors(cartCommonErrorRules, placeOrderErrorRules), response.CodeInternal, "error.order_submit_failed")
}

func respondOrderQueryError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(cartCommonErrorRules, orderQueryErrorRules), response.CodeInternal, "error.order_fetch_failed")
}
