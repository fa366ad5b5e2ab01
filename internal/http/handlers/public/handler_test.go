package public

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/avion-shop/internal/cartstore"
	"github.com/avion-shop/internal/catalog"
	"github.com/avion-shop/internal/config"
	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/contentapi"
	"github.com/avion-shop/internal/models"
	"github.com/avion-shop/internal/pricing"
	"github.com/avion-shop/internal/provider"
	"github.com/avion-shop/internal/queue"
	"github.com/avion-shop/internal/repository"
	"github.com/avion-shop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testCartHeader = "X-Test-Cart"

// fakeContent 内存中的内容后端
type fakeContent struct {
	mu           sync.Mutex
	products     []models.Product
	categories   []models.Category
	failProducts bool
	failCreate   bool
	created      int
}

func (f *fakeContent) Query(ctx context.Context, query string, params map[string]interface{}, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch query {
	case catalog.CategoryListQuery:
		return assignJSON(f.categories, dest)
	case catalog.ProductBySlugQuery:
		if f.failProducts {
			return errors.New("backend down")
		}
		for _, product := range f.products {
			if product.Slug == params["slug"] {
				return assignJSON(product, dest)
			}
		}
		return assignJSON(nil, dest)
	case catalog.ProductsBySlugsQuery:
		return assignJSON(f.products, dest)
	default:
		if f.failProducts {
			return errors.New("backend down")
		}
		return assignJSON(f.products, dest)
	}
}

func (f *fakeContent) Create(ctx context.Context, doc contentapi.Document) (*contentapi.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return nil, fmt.Errorf("%w: mutate status 503", contentapi.ErrRequestFailed)
	}
	f.created++
	return &contentapi.MutationResult{DocumentID: fmt.Sprintf("order-%d", f.created), Operation: "create"}, nil
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

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type handlerFixture struct {
	router  *gin.Engine
	content *fakeContent
	store   *cartstore.MemoryStore
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	content := &fakeContent{
		products: []models.Product{
			{Name: "Oak Chair", Slug: "oak-chair", Price: models.NewMoneyFromInt(100), Type: "furniture", Quantity: intPtr(5)},
			{Name: "Table Lamp", Slug: "table-lamp", Price: models.NewMoneyFromInt(50), Type: "decor"},
			{Name: "Velvet Sofa", Slug: "velvet-sofa", Price: models.NewMoneyFromInt(900), Type: "furniture", Quantity: intPtr(0)},
		},
		categories: []models.Category{{Name: "Chairs", Slug: "chairs"}},
	}
	cfg := &config.Config{
		Catalog: config.CatalogConfig{PageSize: 2, ProductTypes: []string{"furniture", "decor"}},
	}
	store := cartstore.NewMemoryStore(time.Hour)
	calculator := pricing.NewCalculator("200", "DISCOUNT10", 10, "USD")
	catalogService := service.NewCatalogService(content, cfg.Catalog)
	cartService := service.NewCartService(store, catalogService, calculator, false)
	captchaService := service.NewCaptchaService(config.CaptchaConfig{})
	container := &provider.Container{
		Config:         cfg,
		QueueClient:    queueClient,
		CartStore:      store,
		Calculator:     calculator,
		OrderRepo:      repository.NewOrderRepository(db),
		CatalogService: catalogService,
		CartService:    cartService,
		CaptchaService: captchaService,
		CheckoutService: service.NewCheckoutService(
			cartService,
			calculator,
			content,
			repository.NewOrderRepository(db),
			queueClient,
			captchaService,
			service.NewCheckoutTracker(),
		),
	}

	h := New(container)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		cartID := c.GetHeader(testCartHeader)
		if cartID == "" {
			cartID = "cart-a"
		}
		c.Set(constants.CartIDKey, cartID)
		c.Next()
	})
	r.GET("/public/config", h.GetConfig)
	r.GET("/public/products", h.GetProducts)
	r.GET("/public/products/:slug", h.GetProductBySlug)
	r.GET("/public/categories", h.GetCategories)
	r.GET("/cart", h.GetCart)
	r.POST("/cart/items", h.AddCartItem)
	r.PATCH("/cart/items/:slug", h.UpdateCartItem)
	r.DELETE("/cart/items/:slug", h.DeleteCartItem)
	r.DELETE("/cart", h.ClearCart)
	r.GET("/checkout/summary", h.GetCheckoutSummary)
	r.POST("/checkout/promo", h.ApplyPromo)
	r.POST("/checkout/orders", h.PlaceOrder)
	r.GET("/checkout/orders", h.ListOrders)
	r.GET("/checkout/orders/:order_no", h.GetOrderByOrderNo)
	r.GET("/health", h.GetHealth)

	return &handlerFixture{router: r, content: content, store: store}
}

func (f *handlerFixture) do(t *testing.T, method, path, cartID string, body interface{}) apiResponse {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cartID != "" {
		req.Header.Set(testCartHeader, cartID)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func decodeData(t *testing.T, resp apiResponse, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		t.Fatalf("decode data failed: %v data=%s", err, string(resp.Data))
	}
}
