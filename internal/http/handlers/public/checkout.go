package public

import (
	"strconv"

	handlershared "github.com/avion-shop/internal/http/handlers/shared"
	"github.com/avion-shop/internal/http/response"
	"github.com/avion-shop/internal/i18n"
	"github.com/avion-shop/internal/service"

	"github.com/gin-gonic/gin"
)

// PromoRequest 优惠码请求
type PromoRequest struct {
	Code string `json:"code"`
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zip_code"`
	handlershared.CaptchaPayloadRequest
}

func (r PlaceOrderRequest) toServiceInput() service.PlaceOrderInput {
	return service.PlaceOrderInput{
		Billing: service.BillingInput{
			Name:    r.Name,
			Phone:   r.Phone,
			Email:   r.Email,
			Address: r.Address,
			City:    r.City,
			ZipCode: r.ZipCode,
		},
		Captcha: r.CaptchaPayloadRequest.ToServicePayload(),
	}
}

// GetCheckoutSummary 获取结算摘要
func (h *Handler) GetCheckoutSummary(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	summary, err := h.CheckoutService.Summary(c.Request.Context(), cartID)
	if err != nil {
		respondCartReadError(c, err)
		return
	}
	response.Success(c, summary)
}

// ApplyPromo 应用优惠码
func (h *Handler) ApplyPromo(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	var req PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	summary, err := h.CheckoutService.ApplyPromo(c.Request.Context(), cartID, req.Code)
	if err != nil {
		respondPromoError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.promo_applied"), summary)
}

// PlaceOrder 提交订单
func (h *Handler) PlaceOrder(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	receipt, err := h.CheckoutService.PlaceOrder(c.Request.Context(), cartID, req.toServiceInput())
	if err != nil {
		respondPlaceOrderError(c, err)
		return
	}
	requestLog(c).Infow("checkout_order_placed", "cart_id", cartID, "order_no", receipt.OrderNo)
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.order_placed"), receipt)
}

// GetOrderByOrderNo 查询当前购物车的订单
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	order, err := h.CheckoutService.GetOrder(c.Request.Context(), cartID, c.Param("order_no"))
	if err != nil {
		respondOrderQueryError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 当前购物车的历史订单
func (h *Handler) ListOrders(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	orders, total, err := h.CheckoutService.ListOrders(c.Request.Context(), cartID, page, pageSize)
	if err != nil {
		respondOrderQueryError(c, err)
		return
	}
	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, orders, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}
