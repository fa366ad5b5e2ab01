package app

import (
	"errors"

	"github.com/avion-shop/internal/cartstore"
	"github.com/avion-shop/internal/config"
	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/provider"
	"github.com/avion-shop/internal/router"
	"github.com/avion-shop/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, err
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		httpService := NewHTTPService(addr, engine)
		services = append(services, httpService)

		if needsLocalCartPurge(mode, container.CartStore) {
			purgeService, err := worker.NewCartPurgeService(container.CartStore)
			if err != nil {
				container.Close()
				return nil, err
			}
			services = append(services, purgeService)
		}
	}

	// 初始化 Worker 服务
	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			container.Close()
			return nil, err
		}
		services = append(services, workerService)
	}

	// 如果没有服务被启动（例如模式错误或配置导致都没起），应该报错或至少打日志
	if len(services) == 0 {
		container.Close()
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.AddCleanup(container.Close)
	return runner, nil
}

// needsLocalCartPurge 仅运行 API 且购物车在进程内存时，由本进程清理过期购物车
func needsLocalCartPurge(mode string, store cartstore.Store) bool {
	return mode == ModeAPI && store != nil && store.Driver() == constants.CartDriverMemory
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
