package config

import (
	"fmt"
	"strings"

	"github.com/avion-shop/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Cart     CartConfig     `mapstructure:"cart"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	Captcha  CaptchaConfig  `mapstructure:"captcha"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置（订单镜像与数据库购物车驱动）
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite/postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CheckoutRateLimit RateLimitConfig `mapstructure:"checkout_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// BackendConfig 内容后端配置
type BackendConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ProjectID  string `mapstructure:"project_id"`
	Dataset    string `mapstructure:"dataset"`
	APIVersion string `mapstructure:"api_version"`
	Token      string `mapstructure:"token"`
	TimeoutMS  int    `mapstructure:"timeout_ms"`
	UseCDN     bool   `mapstructure:"use_cdn"`
}

// CatalogConfig 商品目录配置
type CatalogConfig struct {
	PageSize     int      `mapstructure:"page_size"`
	ProductTypes []string `mapstructure:"product_types"`
}

// CartConfig 购物车配置
type CartConfig struct {
	Driver        string `mapstructure:"driver"` // memory/redis/database
	TTLHours      int    `mapstructure:"ttl_hours"`
	MergeOnAdd    bool   `mapstructure:"merge_on_add"`
	TokenSecret   string `mapstructure:"token_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

// CheckoutConfig 结算配置
type CheckoutConfig struct {
	Currency     string `mapstructure:"currency"`
	ShippingFee  string `mapstructure:"shipping_fee"`
	PromoCode    string `mapstructure:"promo_code"`
	PromoPercent int    `mapstructure:"promo_percent"`
}

// CaptchaConfig 图片验证码配置
type CaptchaConfig struct {
	Checkout      bool `mapstructure:"checkout"`
	Length        int  `mapstructure:"length"`
	Width         int  `mapstructure:"width"`
	Height        int  `mapstructure:"height"`
	NoiseCount    int  `mapstructure:"noise_count"`
	ShowLine      int  `mapstructure:"show_line"`
	ExpireSeconds int  `mapstructure:"expire_seconds"`
	MaxStore      int  `mapstructure:"max_store"`
}

// ResolveCartDriver 返回实际生效的购物车驱动
func (c *Config) ResolveCartDriver() string {
	driver := strings.ToLower(strings.TrimSpace(c.Cart.Driver))
	if driver != "" {
		return driver
	}
	if c.Redis.Enabled {
		return "redis"
	}
	return "memory"
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")     // 从当前目录查找
	viper.AddConfigPath("./")    // 备用路径
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	setDefaults(viper.GetViper())

	// 环境变量支持
	viper.AutomaticEnv()                                   // 自动读取环境变量
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 将 . 替换为 _ (例如 backend.token -> BACKEND_TOKEN)

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "storefront.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/avion.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "avion")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Accept-Language",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
		"X-Cart-Token",
		"X-Locale",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.checkout_rate_limit.window_seconds", 60)
	v.SetDefault("security.checkout_rate_limit.max_requests", 5)
	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.project_id", "")
	v.SetDefault("backend.dataset", "production")
	v.SetDefault("backend.api_version", "2024-01-01")
	v.SetDefault("backend.token", "")
	v.SetDefault("backend.timeout_ms", 10000)
	v.SetDefault("backend.use_cdn", false)
	v.SetDefault("catalog.page_size", 12)
	v.SetDefault("catalog.product_types", []string{"furniture", "decor"})
	v.SetDefault("cart.driver", "")
	v.SetDefault("cart.ttl_hours", 720)
	v.SetDefault("cart.merge_on_add", false)
	v.SetDefault("cart.token_secret", "cart-change-me-in-production")
	v.SetDefault("cart.token_ttl_hours", 720)
	v.SetDefault("checkout.currency", "USD")
	v.SetDefault("checkout.shipping_fee", "200")
	v.SetDefault("checkout.promo_code", "DISCOUNT10")
	v.SetDefault("checkout.promo_percent", 10)
	v.SetDefault("captcha.checkout", false)
	v.SetDefault("captcha.length", 5)
	v.SetDefault("captcha.width", 240)
	v.SetDefault("captcha.height", 80)
	v.SetDefault("captcha.noise_count", 2)
	v.SetDefault("captcha.show_line", 2)
	v.SetDefault("captcha.expire_seconds", 300)
	v.SetDefault("captcha.max_store", 10240)
}
