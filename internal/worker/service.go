package worker

import (
	"context"
	"errors"
	"time"

	"github.com/avion-shop/internal/cartstore"
	"github.com/avion-shop/internal/config"
	"github.com/avion-shop/internal/logger"
	"github.com/avion-shop/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	cartPurgeInterval = 10 * time.Minute
)

// Service 后台任务服务：队列消费与过期购物车清理
// 队列未启用时只运行清理循环。
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	purger   cartstore.Purger
	interval time.Duration
}

// NewService 创建后台任务服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	svc := &Service{
		name:     "worker",
		consumer: consumer,
		interval: cartPurgeInterval,
	}
	if consumer.Container != nil {
		if purger, ok := consumer.CartStore.(cartstore.Purger); ok {
			svc.purger = purger
		}
	}
	if cfg != nil && cfg.Enabled {
		opt, serverCfg := queue.BuildServerConfig(cfg)
		svc.server = asynq.NewServer(opt, serverCfg)
		svc.mux = asynq.NewServeMux()
		consumer.Register(svc.mux)
	}
	return svc, nil
}

// NewCartPurgeService 只运行过期购物车清理的服务
// 内存驱动下 API 进程单独运行时使用，清理的是本进程的购物车。
func NewCartPurgeService(store cartstore.Store) (*Service, error) {
	purger, ok := store.(cartstore.Purger)
	if !ok || purger == nil {
		return nil, errors.New("cart store does not support purge")
	}
	return &Service{
		name:     "cart-purge",
		purger:   purger,
		interval: cartPurgeInterval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("worker not initialized")
	}
	if s.purger != nil {
		go s.runCartPurgeLoop(ctx)
	}
	if s.server == nil || s.mux == nil {
		<-ctx.Done()
		return nil
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runCartPurgeLoop(ctx context.Context) {
	if s == nil || s.purger == nil {
		return
	}
	runOnce := func() {
		purged, err := s.purger.PurgeExpired(time.Now())
		if err != nil {
			logger.Warnw("worker_cart_purge_failed", "error", err)
			return
		}
		if purged > 0 {
			logger.Infow("worker_cart_purged", "count", purged)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
