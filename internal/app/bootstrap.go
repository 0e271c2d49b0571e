package app

import (
	"errors"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/provider"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/router"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string, janitorInterval time.Duration) (*Runner, *provider.Container, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}

	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	var services []Service

	// 初始化 HTTP 服务与内存会话回收
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
		services = append(services, NewJanitorService(container.SessionManager, janitorInterval))
	}

	// 初始化 Worker 服务（队列未启用时仅 all 模式下跳过）
	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		switch {
		case err == nil:
			services = append(services, workerService)
		case mode == ModeWorker:
			container.Close()
			return nil, nil, err
		default:
			logger.Warnw("app_worker_disabled", "error", err)
		}
	}

	if len(services) == 0 {
		container.Close()
		return nil, nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), container, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, container, err := BuildRunner(opts.Config, opts.Mode, opts.JanitorInterval)
	if err != nil {
		return err
	}
	defer container.Close()

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode, "backend", opts.Config.API.BaseURL, "storage", opts.Config.Storage.Driver)
	return RunWithOptions(runner, opts)
}
