package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	handlershared "github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/handlers/shared"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/response"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/metrics"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"
const sessionIDHeader = "X-Session-ID"

// corsPolicy 预先整理好的跨域配置
type corsPolicy struct {
	anyOrigin   bool
	exact       map[string]struct{}
	suffixes    []string // "*.example.com" 形式的子域通配，保存为 ".example.com"
	credentials bool
	methods     string
	headers     string
	maxAge      string
}

func newCORSPolicy(cfg config.CORSConfig) corsPolicy {
	p := corsPolicy{
		exact:       make(map[string]struct{}),
		anyOrigin:   cfg.AllowsAnyOrigin(),
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(orDefault(cfg.AllowedMethods, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions), ", "),
		headers:     strings.Join(orDefault(cfg.AllowedHeaders, "Content-Type", "Accept", requestIDHeader, sessionIDHeader), ", "),
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	// 任意来源时不回显 Origin 也不允许凭据，否则任何站点都能带会话 Cookie 读取账户数据
	if p.anyOrigin && p.credentials {
		logger.Warnw("cors_credentials_ignored_for_wildcard_origin")
		p.credentials = false
	}
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
		switch {
		case origin == "*":
		case strings.Contains(origin, "://*."):
			scheme, host, _ := strings.Cut(origin, "://*")
			p.suffixes = append(p.suffixes, scheme+"://|"+host)
		case origin != "":
			p.exact[origin] = struct{}{}
		}
	}
	return p
}

func orDefault(values []string, fallback ...string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

// allowOrigin 返回应写入 Access-Control-Allow-Origin 的值，空串表示不允许。
// 允许凭据时只回显白名单内的具体来源。
func (p corsPolicy) allowOrigin(origin string) string {
	if p.anyOrigin {
		return "*"
	}
	if origin == "" {
		return ""
	}
	normalized := strings.ToLower(origin)
	if _, ok := p.exact[normalized]; ok {
		return origin
	}
	for _, pattern := range p.suffixes {
		scheme, suffix, _ := strings.Cut(pattern, "|")
		if strings.HasPrefix(normalized, scheme) && strings.HasSuffix(normalized, suffix) &&
			len(normalized) > len(scheme)+len(suffix) {
			return origin
		}
	}
	return ""
}

// CORSMiddleware 跨域中间件，前端与 BFF 分域部署时使用
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	policy := newCORSPolicy(cfg)
	return func(c *gin.Context) {
		h := c.Writer.Header()
		origin := c.GetHeader("Origin")
		if allowed := policy.allowOrigin(origin); allowed != "" {
			h.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				h.Add("Vary", "Origin")
			}
			if policy.credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			h.Set("Access-Control-Expose-Headers", requestIDHeader+", "+sessionIDHeader)
		}

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", policy.methods)
			h.Set("Access-Control-Allow-Headers", policy.headers)
			if policy.maxAge != "" {
				h.Set("Access-Control-Max-Age", policy.maxAge)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithFields(c.Request.Context(), "request_id", requestID))
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.L()
	}
	sugar := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(logger.Fields(c.Request.Context())...).With(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

// SessionMiddleware 会话中间件：按 Cookie（或 X-Session-ID）绑定浏览器会话，缺失或非法时签发新会话
func SessionMiddleware(manager *session.Manager, cfg config.SessionConfig) gin.HandlerFunc {
	cookieName := strings.TrimSpace(cfg.CookieName)
	if cookieName == "" {
		cookieName = constants.SessionCookieName
	}
	maxAge := int(cfg.IdleTTL() / time.Second)

	return func(c *gin.Context) {
		if manager == nil {
			response.Error(c, response.CodeInternal, constants.MsgSessionUnavailable)
			c.Abort()
			return
		}
		sessionID := resolveSessionID(c, cookieName)
		if sessionID == "" {
			sessionID = session.NewID()
		}
		// 每次访问都续期 Cookie
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, sessionID, maxAge, "/", cfg.CookieDomain, cfg.CookieSecure, true)
		c.Writer.Header().Set(sessionIDHeader, sessionID)
		c.Request = c.Request.WithContext(logger.WithFields(c.Request.Context(), "session_id", sessionID))

		sess, err := manager.Get(c.Request.Context(), sessionID)
		if err != nil {
			handlershared.RequestLog(c).Errorw("session_load_failed", "error", err)
			response.Error(c, response.CodeInternal, constants.MsgSessionUnavailable)
			c.Abort()
			return
		}
		handlershared.SetSession(c, sess)
		c.Next()
	}
}

func resolveSessionID(c *gin.Context, cookieName string) string {
	if value, err := c.Cookie(cookieName); err == nil && session.ValidID(value) {
		return strings.TrimSpace(value)
	}
	if value := strings.TrimSpace(c.GetHeader(sessionIDHeader)); session.ValidID(value) {
		return value
	}
	return ""
}

// MetricsMiddleware 记录请求数与耗时（按路由模板聚合）
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.ObserveHTTP(handler, c.Writer.Status(), time.Since(start))
	}
}
