package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/avion-shop/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func newOrderRecord(orderNo, cartID string, orderDate time.Time) *models.OrderRecord {
	return &models.OrderRecord{
		OrderNo:      orderNo,
		CartID:       cartID,
		Status:       "submitted",
		CustomerName: "Ada",
		Phone:        "123",
		Address:      "1 Main St",
		City:         "Springfield",
		ZipCode:      "12345",
		Currency:     "USD",
		Subtotal:     models.NewMoneyFromInt(250),
		ShippingFee:  models.NewMoneyFromInt(200),
		GrandTotal:   models.NewMoneyFromInt(450),
		OrderDate:    orderDate,
		Items: []models.OrderRecordItem{
			{ItemKey: "chair-1", Slug: "chair", Name: "Chair", Price: models.NewMoneyFromInt(100), Quantity: 2},
			{ItemKey: "lamp-1", Slug: "lamp", Name: "Lamp", Price: models.NewMoneyFromInt(50), Quantity: 1},
		},
	}
}

func TestOrderRepositoryCreateAndGet(t *testing.T) {
	repo := NewOrderRepository(setupRepositoryTestDB(t))
	order := newOrderRecord("AV001", "cart-a", time.Now())
	if err := repo.Create(order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.ID == 0 || len(order.Items) != 2 {
		t.Fatalf("order should keep id and items after create: %+v", order)
	}

	got, err := repo.GetByOrderNo("AV001")
	if err != nil || got == nil {
		t.Fatalf("get order failed: %v", err)
	}
	if len(got.Items) != 2 || got.GrandTotal.String() != "450.00" {
		t.Fatalf("unexpected order: %+v", got)
	}

	missing, err := repo.GetByOrderNo("AV404")
	if err != nil || missing != nil {
		t.Fatalf("missing order want nil,nil got %v,%v", missing, err)
	}
}

func TestOrderRepositoryCreateIsIdempotent(t *testing.T) {
	repo := NewOrderRepository(setupRepositoryTestDB(t))
	if err := repo.Create(newOrderRecord("AV002", "cart-a", time.Now())); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := repo.Create(newOrderRecord("AV002", "cart-a", time.Now())); err != nil {
		t.Fatalf("duplicate create should be ignored, got %v", err)
	}

	got, err := repo.GetByOrderNo("AV002")
	if err != nil || got == nil {
		t.Fatalf("get order failed: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("duplicate create should not add items, got %d", len(got.Items))
	}
	exists, err := repo.ExistsByOrderNo("AV002")
	if err != nil || !exists {
		t.Fatalf("order should exist, got %v %v", exists, err)
	}
}

func TestOrderRepositoryScopedByCart(t *testing.T) {
	repo := NewOrderRepository(setupRepositoryTestDB(t))
	base := time.Now()
	for i, no := range []string{"AV010", "AV011", "AV012"} {
		if err := repo.Create(newOrderRecord(no, "cart-a", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("create order failed: %v", err)
		}
	}
	if err := repo.Create(newOrderRecord("AV020", "cart-b", base)); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	other, err := repo.GetByOrderNoAndCart("AV020", "cart-a")
	if err != nil || other != nil {
		t.Fatalf("order of another cart should be hidden, got %v %v", other, err)
	}

	orders, total, err := repo.ListByCart("cart-a", 1, 2)
	if err != nil {
		t.Fatalf("list orders failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("total want 3 got %d", total)
	}
	if len(orders) != 2 || orders[0].OrderNo != "AV012" {
		t.Fatalf("unexpected page: %+v", orders)
	}
}

func TestCartSlotRepositorySaveAndPurge(t *testing.T) {
	repo := NewCartSlotRepository(setupRepositoryTestDB(t))
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	row := &models.CartSlotRow{CartID: "cart-a", Payload: `{"lines":[]}`, ExpiresAt: &future}
	if err := repo.Save(row); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	row.Payload = `{"lines":[{"slug":"chair"}]}`
	if err := repo.Save(row); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	got, err := repo.Get("cart-a")
	if err != nil || got == nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Version != 2 || got.Payload != row.Payload {
		t.Fatalf("unexpected row: %+v", got)
	}

	if err := repo.Save(&models.CartSlotRow{CartID: "cart-old", Payload: "{}", ExpiresAt: &past}); err != nil {
		t.Fatalf("save expired failed: %v", err)
	}
	purged, err := repo.PurgeExpired(time.Now())
	if err != nil || purged != 1 {
		t.Fatalf("purge want 1 got %d (%v)", purged, err)
	}
	if old, _ := repo.Get("cart-old"); old != nil {
		t.Fatalf("expired cart should be purged")
	}

	if err := repo.Delete("cart-a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got, _ := repo.Get("cart-a"); got != nil {
		t.Fatalf("deleted cart should be gone")
	}
}
