package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avion-shop/internal/constants"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPSharesBucketAcrossPromoCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	keys := make([]string, 0, 2)
	for _, code := range []string{"GUESS1", "GUESS2"} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/checkout/promo", strings.NewReader(`{"code":"`+code+`"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Request.RemoteAddr = "1.2.3.4:5678"
		keys = append(keys, KeyByIP(c))
	}
	if keys[0] != "1.2.3.4" || keys[0] != keys[1] {
		t.Fatalf("promo attempts should share one bucket, got %v", keys)
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(10), want: 10, ok: true},
		{name: "int", input: int(11), want: 11, ok: true},
		{name: "uint8", input: uint8(12), want: 12, ok: true},
		{name: "float64", input: float64(13.9), want: 13, ok: true},
		{name: "string", input: "bad", want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}

func TestKeyByCartID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkout/orders", nil)
	c.Request.RemoteAddr = "1.2.3.4:5678"

	if key := KeyByCartID(c); key != "1.2.3.4" {
		t.Fatalf("missing cart id should fall back to ip, got %s", key)
	}
	c.Set(constants.CartIDKey, "cart-a")
	if key := KeyByCartID(c); key != "cart-a" {
		t.Fatalf("key want cart-a got %s", key)
	}
}
