package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/avion-shop/internal/cartstore"
	"github.com/avion-shop/internal/catalog"
	"github.com/avion-shop/internal/config"
	"github.com/avion-shop/internal/contentapi"
	"github.com/avion-shop/internal/models"
	"github.com/avion-shop/internal/pricing"
	"github.com/avion-shop/internal/queue"
	"github.com/avion-shop/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var errBackendDown = errors.New("backend down")

// fakeBackend 内存中的内容后端
type fakeBackend struct {
	mu             sync.Mutex
	products       []models.Product
	categories     []models.Category
	failProducts   bool
	failCategories bool
	failCreate     bool
	onCreate       func()
	categoryDelay  time.Duration
	created        []contentapi.Document
	queries        []string
}

func (f *fakeBackend) Query(ctx context.Context, query string, params map[string]interface{}, dest interface{}) error {
	if query == catalog.CategoryListQuery && f.categoryDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.categoryDelay):
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)

	switch query {
	case catalog.CategoryListQuery:
		if f.failCategories {
			return errBackendDown
		}
		return assignJSON(f.categories, dest)
	case catalog.ProductBySlugQuery:
		if f.failProducts {
			return errBackendDown
		}
		for _, product := range f.products {
			if product.Slug == params["slug"] {
				return assignJSON(product, dest)
			}
		}
		return assignJSON(nil, dest)
	case catalog.ProductsBySlugsQuery:
		if f.failProducts {
			return errBackendDown
		}
		wanted := make(map[string]bool)
		for _, slug := range params["slugs"].([]string) {
			wanted[slug] = true
		}
		matched := make([]models.Product, 0)
		for _, product := range f.products {
			if wanted[product.Slug] {
				matched = append(matched, product)
			}
		}
		return assignJSON(matched, dest)
	default:
		if f.failProducts {
			return errBackendDown
		}
		matched := make([]models.Product, 0)
		for _, product := range f.products {
			if t, ok := params["type"]; ok && product.Type != t {
				continue
			}
			matched = append(matched, product)
		}
		return assignJSON(matched, dest)
	}
}

func (f *fakeBackend) Create(ctx context.Context, doc contentapi.Document) (*contentapi.MutationResult, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return nil, fmt.Errorf("%w: mutate status 500", contentapi.ErrRequestFailed)
	}
	f.created = append(f.created, doc)
	return &contentapi.MutationResult{
		TransactionID: "tx-1",
		DocumentID:    fmt.Sprintf("order-%d", len(f.created)),
		Operation:     "create",
	}, nil
}

func assignJSON(value interface{}, dest interface{}) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}

func intPtr(v int) *int {
	return &v
}

func demoProducts() []models.Product {
	return []models.Product{
		{Name: "Oak Chair", Slug: "oak-chair", Price: models.NewMoneyFromInt(100), Type: "furniture", Category: &models.Category{Name: "Chairs", Slug: "chairs"}, Quantity: intPtr(5)},
		{Name: "Table Lamp", Slug: "table-lamp", Price: models.NewMoneyFromInt(50), Type: "decor", Category: &models.Category{Name: "Lighting", Slug: "lighting"}},
		{Name: "Velvet Sofa", Slug: "velvet-sofa", Price: models.NewMoneyFromInt(900), Type: "furniture", Quantity: intPtr(0)},
	}
}

type serviceFixture struct {
	backend  *fakeBackend
	store    *cartstore.MemoryStore
	catalog  *CatalogService
	carts    *CartService
	checkout *CheckoutService
	orders   *repository.GormOrderRepository
}

func newServiceFixture(t *testing.T, captchaCfg config.CaptchaConfig, mergeOnAdd bool) *serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}

	backend := &fakeBackend{
		products:   demoProducts(),
		categories: []models.Category{{Name: "Chairs", Slug: "chairs"}, {Name: "Lighting", Slug: "lighting"}},
	}
	store := cartstore.NewMemoryStore(time.Hour)
	catalogService := NewCatalogService(backend, config.CatalogConfig{PageSize: 2, ProductTypes: []string{"furniture", "decor"}})
	calculator := pricing.NewCalculator("200", "DISCOUNT10", 10, "USD")
	carts := NewCartService(store, catalogService, calculator, mergeOnAdd)
	orders := repository.NewOrderRepository(db)
	checkout := NewCheckoutService(carts, calculator, backend, orders, queueClient, NewCaptchaService(captchaCfg), NewCheckoutTracker())

	return &serviceFixture{
		backend:  backend,
		store:    store,
		catalog:  catalogService,
		carts:    carts,
		checkout: checkout,
		orders:   orders,
	}
}
