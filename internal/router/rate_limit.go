package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	handlershared "github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/handlers/shared"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 从请求中提取限流维度
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
type RateLimitRule struct {
	Prefix  string
	Window  time.Duration
	Max     int
	Message string // 含一个 %d 占位（剩余秒数）
}

func newRateLimitRule(redisPrefix, name string, cfg config.RateLimitConfig) RateLimitRule {
	return RateLimitRule{
		Prefix: fmt.Sprintf("%s:rate:%s", redisPrefix, name),
		Window: time.Duration(cfg.WindowSeconds) * time.Second,
		Max:    cfg.MaxAttempts,
	}
}

func (r RateLimitRule) enabled() bool {
	return r.Window >= time.Second && r.Max > 0
}

func (r RateLimitRule) message(wait int) string {
	format := strings.TrimSpace(r.Message)
	if format == "" {
		format = constants.MsgRateLimited
	}
	return fmt.Sprintf(format, wait)
}

// 返回 {窗口内计数, 剩余毫秒}
var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {count, redis.call("PTTL", KEYS[1])}
`)

// RateLimitMiddleware 基于 Redis 的固定窗口限流。
// 未配置 Redis 或规则关闭时直接放行；Redis 故障时记录告警并放行，
// 登录与优惠码最终仍由后端校验。
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}

		key := rateLimitKey(c, rule.Prefix, keyFunc)
		values, err := fixedWindowScript.Run(c.Request.Context(), client, []string{key}, rule.Window.Milliseconds()).Int64Slice()
		if err != nil || len(values) != 2 {
			handlershared.RequestLog(c).Warnw("rate_limit_unavailable", "key", key, "error", err)
			c.Next()
			return
		}

		if values[0] > int64(rule.Max) {
			wait := retryAfterSeconds(values[1], rule.Window)
			c.Header("Retry-After", strconv.Itoa(wait))
			handlershared.RequestLog(c).Infow("rate_limited", "key", key, "count", values[0])
			response.Error(c, response.CodeTooManyRequests, rule.message(wait))
			c.Abort()
			return
		}
		c.Next()
	}
}

func rateLimitKey(c *gin.Context, prefix string, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

// retryAfterSeconds 将剩余毫秒向上取整为秒；键无过期时间时按整窗计算
func retryAfterSeconds(pttl int64, window time.Duration) int {
	if pttl <= 0 {
		pttl = window.Milliseconds()
	}
	wait := int(math.Ceil(float64(pttl) / 1000))
	if wait < 1 {
		return 1
	}
	return wait
}

// KeyBySession 按会话限流，无会话时退回 IP
func KeyBySession(c *gin.Context) string {
	if sess, ok := handlershared.LookupSession(c); ok {
		return sess.ID
	}
	return c.ClientIP()
}

// KeyByIPAndJSONField 按 JSON 字段（小写）+ IP 限流，读取后恢复请求体供后续绑定
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(peekJSONString(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

func peekJSONString(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	var text string
	if err := json.Unmarshal(payload[field], &text); err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
