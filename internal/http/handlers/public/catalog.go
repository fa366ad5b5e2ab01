package public

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/avion-shop/internal/cache"
	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/http/response"
	"github.com/avion-shop/internal/i18n"
	"github.com/avion-shop/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	storefrontConfigCacheKey = "public:config"
	storefrontConfigCacheTTL = 60 * time.Second
)

// CatalogPageView 商品列表页响应结构
type CatalogPageView struct {
	*service.CatalogPage
	CartCount    int    `json:"cart_count"`
	ToggleText   string `json:"toggle_text"`
	EmptyMessage string `json:"empty_message,omitempty"`
}

// GetConfig 获取店面公开配置
func (h *Handler) GetConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), storefrontConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data := map[string]interface{}{
		"languages":     i18n.SupportedLocales(),
		"currency":      h.Calculator.Currency,
		"shipping_fee":  h.Calculator.ShippingFee.StringFixed(2),
		"product_types": h.CatalogService.ProductTypes(),
		"page_size":     constants.CatalogWindowStep,
		"captcha": map[string]interface{}{
			"checkout": h.CaptchaService.SceneEnabled(constants.CaptchaSceneCheckout),
		},
	}
	if h.Config != nil && h.Config.Catalog.PageSize > 0 {
		data["page_size"] = h.Config.Catalog.PageSize
	}

	_ = cache.SetJSON(c.Request.Context(), storefrontConfigCacheKey, data, storefrontConfigCacheTTL)
	response.Success(c, data)
}

// GetProducts 获取商品列表页
func (h *Handler) GetProducts(c *gin.Context) {
	values := make(map[string]string)
	for key, list := range c.Request.URL.Query() {
		if key == "visible" || len(list) == 0 {
			continue
		}
		values[key] = list[0]
	}
	filter, err := h.CatalogService.ParseFilter(values)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	visible, _ := strconv.Atoi(strings.TrimSpace(c.Query("visible")))

	page, err := h.CatalogService.Browse(c.Request.Context(), filter, visible)
	if err != nil {
		if errors.Is(err, service.ErrCatalogUnavailable) && page != nil {
			respondErrorWithData(c, response.CodeBadGateway, "error.catalog_unavailable", gin.H{
				"products":   page.Products,
				"categories": page.Categories,
				"filter":     page.Filter,
			}, err)
			return
		}
		respondCatalogError(c, err)
		return
	}

	locale := i18n.ResolveLocale(c)
	view := CatalogPageView{
		CatalogPage: page,
		CartCount:   h.cartCount(c),
		ToggleText:  i18n.T(locale, "label."+page.ToggleLabel),
	}
	if page.Total == 0 {
		view.EmptyMessage = i18n.T(locale, "message.catalog_empty")
	}
	response.Success(c, view)
}

// GetProductBySlug 获取商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.CatalogService.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, product)
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	response.Success(c, h.CatalogService.ListCategories(c.Request.Context()))
}

// cartCount 列表页购物车角标，读取失败时按 0 处理
func (h *Handler) cartCount(c *gin.Context) int {
	cartID, ok := c.Get(constants.CartIDKey)
	if !ok {
		return 0
	}
	id, _ := cartID.(string)
	if id == "" {
		return 0
	}
	count, err := h.CartService.Count(c.Request.Context(), id)
	if err != nil {
		requestLog(c).Warnw("catalog_cart_count_failed", "cart_id", id, "error", err)
		return 0
	}
	return count
}
