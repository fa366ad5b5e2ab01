package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avion-shop/internal/config"
	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/http/response"
	"github.com/avion-shop/internal/i18n"
	"github.com/avion-shop/internal/logger"
	"github.com/avion-shop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-CSRF-Token",
			"X-Locale",
			constants.CartTokenHeader,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")
	exposeHeader := strings.Join([]string{requestIDHeader, constants.CartTokenHeader}, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", exposeHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// CartSessionMiddleware 购物车会话中间件
// 从 X-Cart-Token 头或 cart_token Cookie 读取令牌，缺失或无效时签发新购物车，并回写令牌。
func CartSessionMiddleware(tokens *service.CartTokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			msg := i18n.T(i18n.ResolveLocale(c), "error.cart_token_invalid")
			response.Abort(c, response.CodeInternal, msg)
			return
		}

		token := strings.TrimSpace(c.GetHeader(constants.CartTokenHeader))
		if token == "" {
			if cookie, err := c.Cookie(constants.CartTokenCookie); err == nil {
				token = strings.TrimSpace(cookie)
			}
		}

		cartID, err := tokens.Parse(token)
		if err != nil {
			var issueErr error
			cartID, token, _, issueErr = tokens.Issue()
			if issueErr != nil {
				logger.Errorw("cart_token_issue_failed", "request_id", getRequestID(c), "error", issueErr)
				msg := i18n.T(i18n.ResolveLocale(c), "error.internal")
				response.Abort(c, response.CodeInternal, msg)
				return
			}
		}

		c.Set(constants.CartIDKey, cartID)
		c.Writer.Header().Set(constants.CartTokenHeader, token)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(constants.CartTokenCookie, token, int(tokens.TTL()/time.Second), "/", "", c.Request.TLS != nil, true)
		c.Next()
	}
}
