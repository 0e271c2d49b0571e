package app

import (
	"os"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"

	"go.uber.org/zap"
)

// 启动模式：all 同时运行 HTTP 与队列消费者
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultJanitorInterval = 5 * time.Minute

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
	// JanitorInterval 内存会话回收周期
	JanitorInterval time.Duration
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	switch opts.Mode {
	case ModeAll, ModeAPI, ModeWorker:
	case "":
		opts.Mode = ModeAll
	default:
		opts.Logger.Warnw("app_mode_unknown", "mode", opts.Mode, "fallback", ModeAll)
		opts.Mode = ModeAll
	}
	if opts.JanitorInterval <= 0 {
		opts.JanitorInterval = defaultJanitorInterval
	}
	return opts
}
