package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/app"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset     = "\033[0m"
	ansiBold      = "\033[1m"
	ansiDim       = "\033[2m"
	ansiGreen     = "\033[32m"
	ansiBlue      = "\033[34m"
	ansiBrightMag = "\033[95m"
)

func main() {
	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	printStartupBanner()

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if cfg.Server.Mode == "release" {
		if !cfg.Session.CookieSecure {
			stdLog.Printf("警告: 生产环境会话 Cookie 未开启 Secure，建议配置 session.cookie_secure=true")
		}
		if cfg.CORS.AllowCredentials && cfg.CORS.AllowsAnyOrigin() {
			stdLog.Printf("警告: cors.allowed_origins 含 \"*\" 时不会放行跨域凭据，请改为列出前端域名")
		}
		if isLoopbackBackend(cfg.API.BaseURL) {
			stdLog.Printf("警告: 后端 API 仍指向本机地址 %s", cfg.API.BaseURL)
		}
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiBrightMag + "╔══════════════════════════════════════════════════════════════╗" + ansiReset)
	fmt.Println(ansiBrightMag + "║              Durga Eyewear Storefront 启动中                 ║" + ansiReset)
	fmt.Println(ansiBrightMag + "╚══════════════════════════════════════════════════════════════╝" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Endpoints" + ansiReset)
	fmt.Println(ansiBlue + "• Storefront: /api/v1/storefront" + ansiReset)
	fmt.Println(ansiBlue + "• Metrics:    /metrics" + ansiReset)
	fmt.Println(ansiBlue + "• Health:     /healthz" + ansiReset)
	fmt.Println(ansiDim + "----------------------------------------------------------------" + ansiReset)
}

func isLoopbackBackend(baseURL string) bool {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
