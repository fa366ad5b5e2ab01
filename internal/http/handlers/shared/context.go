package shared

import (
	"strings"

	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetCartID 读取购物车会话中间件写入的 cart_id，缺失时直接返回错误响应。
func GetCartID(c *gin.Context) (string, bool) {
	value, exists := c.Get(constants.CartIDKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.cart_token_invalid", nil)
		return "", false
	}
	cartID, ok := value.(string)
	if !ok || strings.TrimSpace(cartID) == "" {
		RespondError(c, response.CodeInternal, "error.cart_token_invalid", nil)
		return "", false
	}
	return cartID, true
}
