package provider

import (
	"time"

	"github.com/avion-shop/internal/cache"
	"github.com/avion-shop/internal/cartstore"
	"github.com/avion-shop/internal/config"
	"github.com/avion-shop/internal/contentapi"
	"github.com/avion-shop/internal/logger"
	"github.com/avion-shop/internal/models"
	"github.com/avion-shop/internal/pricing"
	"github.com/avion-shop/internal/queue"
	"github.com/avion-shop/internal/repository"
	"github.com/avion-shop/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Backend     *contentapi.Client
	CartStore   cartstore.Store
	Calculator  *pricing.Calculator

	// Repositories
	OrderRepo    repository.OrderRepository
	CartSlotRepo repository.CartSlotRepository

	// Services
	CatalogService   *service.CatalogService
	CartService      *service.CartService
	CartTokenService *service.CartTokenService
	CaptchaService   *service.CaptchaService
	CheckoutService  *service.CheckoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	backend, err := contentapi.NewClient(contentapi.Config{
		BaseURL:    cfg.Backend.BaseURL,
		ProjectID:  cfg.Backend.ProjectID,
		Dataset:    cfg.Backend.Dataset,
		APIVersion: cfg.Backend.APIVersion,
		Token:      cfg.Backend.Token,
		Timeout:    time.Duration(cfg.Backend.TimeoutMS) * time.Millisecond,
		UseCDN:     cfg.Backend.UseCDN,
	})
	if err != nil {
		return nil, err
	}
	if !backend.HasToken() {
		logger.Warnw("provider_backend_token_missing", "hint", "checkout submissions will fail without backend.token")
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Backend:     backend,
		Calculator: pricing.NewCalculator(
			cfg.Checkout.ShippingFee,
			cfg.Checkout.PromoCode,
			cfg.Checkout.PromoPercent,
			cfg.Checkout.Currency,
		),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化购物车存储
	if err := c.initCartStore(); err != nil {
		return nil, err
	}

	// 3. 初始化 Services
	c.initServices()

	return c, nil
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CartSlotRepo = repository.NewCartSlotRepository(db)
}

func (c *Container) initCartStore() error {
	driver := c.Config.ResolveCartDriver()
	store, err := cartstore.New(cartstore.Options{
		Driver:      driver,
		TTL:         time.Duration(c.Config.Cart.TTLHours) * time.Hour,
		Redis:       cache.Client(),
		RedisPrefix: cache.Key("cart"),
		Slots:       c.CartSlotRepo,
	})
	if err != nil {
		return err
	}
	logger.Infow("provider_cart_store_ready", "driver", store.Driver())
	c.CartStore = store
	return nil
}

func (c *Container) initServices() {
	c.CatalogService = service.NewCatalogService(c.Backend, c.Config.Catalog)
	c.CartService = service.NewCartService(c.CartStore, c.CatalogService, c.Calculator, c.Config.Cart.MergeOnAdd)
	c.CartTokenService = service.NewCartTokenService(c.Config.Cart)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.CheckoutService = service.NewCheckoutService(
		c.CartService,
		c.Calculator,
		c.Backend,
		c.OrderRepo,
		c.QueueClient,
		c.CaptchaService,
		service.NewCheckoutTracker(),
	)
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
