package public

import (
	"strings"

	"github.com/avion-shop/internal/http/response"
	"github.com/avion-shop/internal/i18n"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 加入购物车请求
type CartItemRequest struct {
	Slug string `json:"slug" binding:"required"`
}

// CartQuantityRequest 调整数量请求
type CartQuantityRequest struct {
	Action string `json:"action" binding:"required"`
}

// GetCart 获取购物车，refresh=1 时与后端商品核对
func (h *Handler) GetCart(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	refresh := isTruthyQuery(c.Query("refresh"))
	view, err := h.CartService.View(c.Request.Context(), cartID, refresh)
	if err != nil {
		respondCartReadError(c, err)
		return
	}
	response.Success(c, view)
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.slug_required", nil)
		return
	}
	if _, err := h.CartService.AddProduct(c.Request.Context(), cartID, req.Slug); err != nil {
		respondCartUpdateError(c, err)
		return
	}
	h.respondCartView(c, cartID)
}

// UpdateCartItem 调整同一商品所有行的数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.quantity_action_invalid", nil)
		return
	}
	if _, err := h.CartService.ChangeQuantity(c.Request.Context(), cartID, c.Param("slug"), req.Action); err != nil {
		respondCartUpdateError(c, err)
		return
	}
	h.respondCartView(c, cartID)
}

// DeleteCartItem 删除同一商品的所有行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	if _, err := h.CartService.RemoveBySlug(c.Request.Context(), cartID, c.Param("slug")); err != nil {
		respondCartUpdateError(c, err)
		return
	}
	h.respondCartView(c, cartID)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(c.Request.Context(), cartID); err != nil {
		respondCartUpdateError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.cart_cleared"), gin.H{"count": 0})
}

func (h *Handler) respondCartView(c *gin.Context, cartID string) {
	view, err := h.CartService.View(c.Request.Context(), cartID, false)
	if err != nil {
		respondCartReadError(c, err)
		return
	}
	response.Success(c, view)
}

func isTruthyQuery(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
