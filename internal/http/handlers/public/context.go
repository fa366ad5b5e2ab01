package public

import (
	"github.com/avion-shop/internal/http/response"
	handlershared "github.com/avion-shop/internal/http/handlers/shared"
	"github.com/avion-shop/internal/i18n"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getCartID(c *gin.Context) (string, bool) {
	return handlershared.GetCartID(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// respondErrorWithData 返回带数据的国际化错误响应
func respondErrorWithData(c *gin.Context, code int, key string, data gin.H, err error) {
	if err != nil {
		requestLog(c).Errorw("handler_error", "code", code, "key", key, "error", err)
	}
	response.ErrorWithData(c, code, i18n.T(i18n.ResolveLocale(c), key), data)
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}
