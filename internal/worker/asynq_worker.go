package worker

import (
	"context"
	"strings"

	"github.com/avion-shop/internal/cache"
	"github.com/avion-shop/internal/logger"
	"github.com/avion-shop/internal/provider"
	"github.com/avion-shop/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderMirror, c.handleOrderMirror)
}

func (c *Consumer) handleOrderMirror(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.Container == nil {
		logger.Debugw("worker_order_mirror_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderMirrorPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_order_mirror_unmarshal_failed", "error", err)
		// 载荷损坏时重试无意义
		return asynq.SkipRetry
	}
	if strings.TrimSpace(payload.Order.OrderNo) == "" || strings.TrimSpace(payload.CartID) == "" {
		logger.Debugw("worker_order_mirror_skip_invalid_payload", "order_no", payload.Order.OrderNo)
		return nil
	}
	if err := c.CheckoutService.SaveOrderMirror(&payload.Order); err != nil {
		logger.Warnw("worker_order_mirror_save_failed", "order_no", payload.Order.OrderNo, "error", err)
		return err
	}
	if err := cache.DelOrderReceipt(ctx, payload.CartID, payload.Order.OrderNo); err != nil {
		logger.Debugw("worker_order_receipt_evict_failed", "order_no", payload.Order.OrderNo, "error", err)
	}
	logger.Debugw("worker_order_mirror_saved", "order_no", payload.Order.OrderNo)
	return nil
}
