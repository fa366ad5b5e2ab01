package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avion-shop/internal/cartstore"
	"github.com/avion-shop/internal/models"
	"github.com/avion-shop/internal/provider"
	"github.com/avion-shop/internal/queue"
	"github.com/avion-shop/internal/repository"
	"github.com/avion-shop/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"go.uber.org/goleak"
	"gorm.io/gorm"
)

func setupConsumer(t *testing.T) (*Consumer, *repository.GormOrderRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	orders := repository.NewOrderRepository(db)
	container := &provider.Container{
		OrderRepo:       orders,
		CartStore:       cartstore.NewMemoryStore(time.Millisecond),
		CheckoutService: service.NewCheckoutService(nil, nil, nil, orders, nil, nil, nil),
	}
	return NewConsumer(container), orders
}

func TestHandleOrderMirrorPersistsOnce(t *testing.T) {
	consumer, orders := setupConsumer(t)
	payload := queue.OrderMirrorPayload{
		CartID: "cart-a",
		Order: models.OrderRecord{
			OrderNo:      "AV20260101000000123456",
			Status:       "submitted",
			CustomerName: "Ada",
			Phone:        "1",
			Address:      "1 Main St",
			City:         "Springfield",
			ZipCode:      "12345",
			Currency:     "USD",
			GrandTotal:   models.NewMoneyFromInt(450),
			OrderDate:    time.Now(),
			Items: []models.OrderRecordItem{
				{ItemKey: "oak-chair-1", Slug: "oak-chair", Name: "Oak Chair", Price: models.NewMoneyFromInt(100), Quantity: 2},
			},
		},
	}
	task, err := queue.NewOrderMirrorTask(payload)
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := consumer.handleOrderMirror(context.Background(), task); err != nil {
			t.Fatalf("handle mirror failed: %v", err)
		}
	}

	got, err := orders.GetByOrderNoAndCart(payload.Order.OrderNo, "cart-a")
	if err != nil || got == nil {
		t.Fatalf("mirror should be stored for the cart: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("redelivery must not duplicate items, got %d", len(got.Items))
	}
}

func TestHandleOrderMirrorBadPayload(t *testing.T) {
	consumer, _ := setupConsumer(t)
	err := consumer.handleOrderMirror(context.Background(), asynq.NewTask(queue.TaskOrderMirror, []byte("{broken")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("broken payload want SkipRetry got %v", err)
	}
	if err := consumer.handleOrderMirror(context.Background(), asynq.NewTask(queue.TaskOrderMirror, []byte(`{}`))); err != nil {
		t.Fatalf("empty payload should be skipped, got %v", err)
	}
}

type countingPurger struct {
	calls atomic.Int64
}

func (p *countingPurger) PurgeExpired(now time.Time) (int64, error) {
	p.calls.Add(1)
	return 0, nil
}

func TestNewServiceUsesStoreAsPurger(t *testing.T) {
	consumer, _ := setupConsumer(t)
	svc, err := NewService(nil, consumer)
	if err != nil {
		t.Fatalf("new service failed: %v", err)
	}
	if svc.purger == nil {
		t.Fatalf("memory cart store should be used as purger")
	}
	if svc.server != nil {
		t.Fatalf("disabled queue should not create an asynq server")
	}
}

func TestServiceWithoutQueueRunsPurgeLoop(t *testing.T) {
	consumer, _ := setupConsumer(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc, err := NewService(nil, consumer)
	if err != nil {
		t.Fatalf("new service failed: %v", err)
	}
	purger := &countingPurger{}
	svc.purger = purger
	svc.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	deadline := time.Now().Add(time.Second)
	for purger.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if purger.calls.Load() < 3 {
		t.Fatalf("purge loop should run repeatedly, got %d calls", purger.calls.Load())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start should return nil after cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop after cancel")
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestNewServiceRequiresConsumer(t *testing.T) {
	if _, err := NewService(nil, nil); err == nil {
		t.Fatalf("nil consumer should fail")
	}
}

type recordingStore struct {
	*cartstore.MemoryStore
	purged atomic.Int64
}

func (s *recordingStore) PurgeExpired(now time.Time) (int64, error) {
	n, err := s.MemoryStore.PurgeExpired(now)
	s.purged.Add(n)
	return n, err
}

func TestCartPurgeServiceDropsExpiredSlots(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := &recordingStore{MemoryStore: cartstore.NewMemoryStore(time.Millisecond)}
	if _, err := store.Update(context.Background(), "cart-a", func(slot *models.CartSlot) error {
		slot.Lines = append(slot.Lines, models.CartLine{Slug: "oak-chair", Quantity: 1})
		return nil
	}); err != nil {
		t.Fatalf("seed cart failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	svc, err := NewCartPurgeService(store)
	if err != nil {
		t.Fatalf("new purge service failed: %v", err)
	}
	if svc.Name() != "cart-purge" || svc.server != nil {
		t.Fatalf("purge service should not run a queue server: %+v", svc)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()

	deadline := time.Now().Add(time.Second)
	for store.purged.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if store.purged.Load() != 1 {
		t.Fatalf("expired slot should be purged once, got %d", store.purged.Load())
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("start should return nil after cancel, got %v", err)
	}
}
