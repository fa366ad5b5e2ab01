package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestSetDefaultsStorefrontValues(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	if cfg.Checkout.ShippingFee != "200" {
		t.Fatalf("shipping fee want 200 got %s", cfg.Checkout.ShippingFee)
	}
	if cfg.Checkout.PromoCode != "DISCOUNT10" || cfg.Checkout.PromoPercent != 10 {
		t.Fatalf("unexpected promo defaults: %+v", cfg.Checkout)
	}
	if cfg.Catalog.PageSize != 12 {
		t.Fatalf("catalog page size want 12 got %d", cfg.Catalog.PageSize)
	}
	if len(cfg.Catalog.ProductTypes) != 2 {
		t.Fatalf("product types want 2 got %v", cfg.Catalog.ProductTypes)
	}
	if cfg.Cart.MergeOnAdd {
		t.Fatalf("merge_on_add should default to false")
	}
	if cfg.Log.Filename != "storefront.log" {
		t.Fatalf("log filename want storefront.log got %s", cfg.Log.Filename)
	}
}

func TestResolveCartDriver(t *testing.T) {
	cfg := &Config{}
	if got := cfg.ResolveCartDriver(); got != "memory" {
		t.Fatalf("driver without redis want memory got %s", got)
	}
	cfg.Redis.Enabled = true
	if got := cfg.ResolveCartDriver(); got != "redis" {
		t.Fatalf("driver with redis want redis got %s", got)
	}
	cfg.Cart.Driver = " Database "
	if got := cfg.ResolveCartDriver(); got != "database" {
		t.Fatalf("explicit driver want database got %s", got)
	}
}
