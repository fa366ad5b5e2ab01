package i18n

var messages = map[string]map[string]string{
	LocaleEnUS: {
		"error.bad_request":             "Invalid request",
		"error.unauthorized":            "Unauthorized",
		"error.not_found":               "Resource not found",
		"error.internal":                "Internal server error",
		"error.rate_limited":            "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":  "Rate limiter unavailable, please retry later",
		"error.checkout_too_many":       "Too many checkout attempts, please retry in %d seconds",
		"error.filter_invalid":          "Invalid product filter",
		"error.catalog_unavailable":     "Products are unavailable right now, please retry later",
		"error.product_not_found":       "Product not found",
		"error.product_out_of_stock":    "Out of stock",
		"error.slug_required":           "Product slug is required",
		"error.cart_token_invalid":      "Cart session is invalid",
		"error.cart_fetch_failed":       "Failed to load cart",
		"error.cart_update_failed":      "Failed to update cart",
		"error.cart_line_not_found":     "Item is not in the cart",
		"error.quantity_action_invalid": "Quantity action must be increase or decrease",
		"error.cart_empty":              "Your cart is empty",
		"error.billing_field_missing":   "Please fill in all required fields",
		"error.promo_code_invalid":      "Invalid Code",
		"error.checkout_in_progress":    "Your order is already being placed",
		"error.order_submit_failed":     "Failed to place order. Please try again.",
		"error.order_not_found":         "Order not found",
		"error.order_fetch_failed":      "Failed to load order",
		"error.captcha_required":        "Captcha is required",
		"error.captcha_invalid":         "Captcha is incorrect",
		"error.captcha_unavailable":     "Captcha is not enabled",
		"error.captcha_generate_failed": "Failed to generate captcha",
		"message.order_placed":          "Order placed successfully!",
		"message.promo_applied":         "Promo code applied",
		"message.catalog_empty":         "No products match the selected filters",
		"message.cart_cleared":          "Cart cleared",
		"label.show_more":               "Show More",
		"label.show_less":               "Show Less",
	},
	LocaleZhCN: {
		"error.bad_request":             "请求参数错误",
		"error.unauthorized":            "未授权",
		"error.not_found":               "资源不存在",
		"error.internal":                "服务器内部错误",
		"error.rate_limited":            "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":  "限流服务不可用，请稍后重试",
		"error.checkout_too_many":       "下单过于频繁，请 %d 秒后重试",
		"error.filter_invalid":          "商品筛选条件无效",
		"error.catalog_unavailable":     "商品暂时无法加载，请稍后重试",
		"error.product_not_found":       "商品不存在",
		"error.product_out_of_stock":    "商品已售罄",
		"error.slug_required":           "缺少商品标识",
		"error.cart_token_invalid":      "购物车会话无效",
		"error.cart_fetch_failed":       "购物车加载失败",
		"error.cart_update_failed":      "购物车更新失败",
		"error.cart_line_not_found":     "购物车中没有该商品",
		"error.quantity_action_invalid": "数量操作只能是 increase 或 decrease",
		"error.cart_empty":              "购物车为空",
		"error.billing_field_missing":   "请填写所有必填项",
		"error.promo_code_invalid":      "优惠码无效",
		"error.checkout_in_progress":    "订单正在提交中",
		"error.order_submit_failed":     "下单失败，请重试",
		"error.order_not_found":         "订单不存在",
		"error.order_fetch_failed":      "订单加载失败",
		"error.captcha_required":        "请填写验证码",
		"error.captcha_invalid":         "验证码错误",
		"error.captcha_unavailable":     "验证码未启用",
		"error.captcha_generate_failed": "验证码生成失败",
		"message.order_placed":          "下单成功！",
		"message.promo_applied":         "优惠码已生效",
		"message.catalog_empty":         "没有符合筛选条件的商品",
		"message.cart_cleared":          "购物车已清空",
		"label.show_more":               "显示更多",
		"label.show_less":               "收起",
	},
}
