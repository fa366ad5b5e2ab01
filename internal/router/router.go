package router

import (
	"fmt"
	"strings"

	"github.com/avion-shop/internal/cache"
	"github.com/avion-shop/internal/config"
	publichandlers "github.com/avion-shop/internal/http/handlers/public"
	"github.com/avion-shop/internal/logger"
	"github.com/avion-shop/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "avion"
	}
	redisClient := cache.Client()
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxRequests,
		MessageKey:    "error.checkout_too_many",
	}
	promoRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:promo", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxRequests * 2,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/health", handler.GetHealth)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(CartSessionMiddleware(c.CartTokenService))
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", handler.GetConfig)
			public.GET("/products", handler.GetProducts)
			public.GET("/products/:slug", handler.GetProductBySlug)
			public.GET("/categories", handler.GetCategories)
			public.GET("/captcha/image", handler.GetImageCaptcha)
		}

		// 购物车接口
		cart := apiV1.Group("/cart")
		{
			cart.GET("", handler.GetCart)
			cart.DELETE("", handler.ClearCart)
			cart.POST("/items", handler.AddCartItem)
			cart.PATCH("/items/:slug", handler.UpdateCartItem)
			cart.DELETE("/items/:slug", handler.DeleteCartItem)
		}

		// 结算接口
		checkout := apiV1.Group("/checkout")
		{
			checkout.GET("/summary", handler.GetCheckoutSummary)
			checkout.POST("/promo", RateLimitMiddleware(redisClient, promoRule, KeyByIP), handler.ApplyPromo)
			checkout.POST("/orders", RateLimitMiddleware(redisClient, checkoutRule, KeyByCartID), handler.PlaceOrder)
			checkout.GET("/orders", handler.ListOrders)
			checkout.GET("/orders/:order_no", handler.GetOrderByOrderNo)
		}
	}

	return r
}
