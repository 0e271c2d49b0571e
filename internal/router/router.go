package router

import (
	"strings"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/cache"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"
	storefronthandlers "github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/handlers/storefront"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := storefronthandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "dj"
	}
	redisClient := cache.Client()
	loginRule := newRateLimitRule(redisPrefix, "login", cfg.Security.LoginRateLimit)
	couponRule := newRateLimitRule(redisPrefix, "coupon", cfg.Security.CouponRateLimit)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(MetricsMiddleware(c.Metrics))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 目录接口（无需会话）
		catalogGroup := apiV1.Group("/storefront")
		{
			catalogGroup.GET("/products", handler.GetProducts)
			catalogGroup.GET("/products/:id", handler.GetProduct)
			catalogGroup.GET("/lenses", handler.GetLenses)
		}

		// 会话接口
		store := apiV1.Group("/storefront")
		store.Use(SessionMiddleware(c.SessionManager, cfg.Session))
		{
			store.GET("/cart", handler.GetCart)
			store.POST("/cart/items", handler.AddCartItem)
			store.DELETE("/cart/items/:product_id", handler.DeleteCartItem)
			store.PUT("/cart/items/:product_id/quantity", handler.UpdateCartQuantity)
			store.PUT("/cart/items/:product_id/lens", handler.ChangeCartLens)
			store.POST("/cart/toggle", handler.ToggleCart)
			store.DELETE("/cart", handler.ClearCart)

			store.POST("/coupon", RateLimitMiddleware(redisClient, couponRule, KeyBySession), handler.ApplyCoupon)
			store.DELETE("/coupon", handler.RemoveCoupon)

			store.GET("/checkout", handler.GetCheckout)
			store.POST("/checkout/proceed", handler.ProceedCheckout)
			store.POST("/checkout/submit", handler.SubmitCheckout)
			store.POST("/checkout/reset", handler.ResetCheckout)

			store.POST("/auth/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), handler.Login)
			store.POST("/auth/logout", handler.Logout)
			store.GET("/me", handler.GetMe)
			store.GET("/orders", handler.ListOrders)
			store.GET("/account", handler.GetAccount)
		}
	}

	r.GET("/metrics", gin.WrapH(c.Metrics.Handler()))

	// 健康检查
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok", "sessions": c.SessionManager.Len()})
	})

	return r
}
