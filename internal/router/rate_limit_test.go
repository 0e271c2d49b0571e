package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newKeyContext(body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/storefront/auth/login", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "10.0.0.7:41000"
	return c
}

func TestKeyByIPAndJSONFieldNormalisesEmail(t *testing.T) {
	c := newKeyContext(`{"email":" Asha@Example.com ","password":"x"}`)

	if key := KeyByIPAndJSONField("email")(c); key != "asha@example.com|10.0.0.7" {
		t.Fatalf("key want asha@example.com|10.0.0.7 got %s", key)
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Asha@Example.com") {
		t.Fatalf("login handler must still see the original body, got %s", body)
	}
}

func TestKeyByIPAndJSONFieldFallsBackToIP(t *testing.T) {
	for _, body := range []string{`{}`, `not json`, `{"email":42}`} {
		if key := KeyByIPAndJSONField("email")(newKeyContext(body)); key != "10.0.0.7" {
			t.Fatalf("body %q should key by ip, got %s", body, key)
		}
	}
}

func TestKeyBySession(t *testing.T) {
	c := newKeyContext(`{"code":"SAVE500"}`)
	if key := KeyBySession(c); key != "10.0.0.7" {
		t.Fatalf("no session should key by ip, got %s", key)
	}
	id := session.NewID()
	c.Set(constants.SessionContextKey, &session.Session{ID: id})
	if key := KeyBySession(c); key != id {
		t.Fatalf("session key want %s got %s", id, key)
	}
}

func serveRateLimited(t *testing.T, client *redis.Client, rule RateLimitRule, times int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/coupon", RateLimitMiddleware(client, rule, KeyBySession), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < times; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/coupon", nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d should reach the handler, got %d %s", i, w.Code, w.Body.String())
		}
	}
}

func TestRateLimitMiddlewarePassesThroughWithoutRedis(t *testing.T) {
	serveRateLimited(t, nil, RateLimitRule{Window: time.Minute, Max: 1}, 3)
}

func TestRateLimitMiddlewareFailsOpenWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	serveRateLimited(t, client, RateLimitRule{Prefix: "test:rate:coupon", Window: time.Minute, Max: 1}, 2)
}

func TestNewRateLimitRule(t *testing.T) {
	rule := newRateLimitRule("dj", "login", config.RateLimitConfig{WindowSeconds: 300, MaxAttempts: 5})
	if rule.Prefix != "dj:rate:login" || rule.Window != 5*time.Minute || rule.Max != 5 || !rule.enabled() {
		t.Fatalf("unexpected rule: %+v", rule)
	}
	if newRateLimitRule("dj", "coupon", config.RateLimitConfig{}).enabled() {
		t.Fatalf("zero config should disable the rule")
	}
	if msg := rule.message(42); msg != "Too many requests, please retry in 42 seconds" {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	cases := []struct {
		pttl int64
		want int
	}{
		{pttl: 59001, want: 60},
		{pttl: 1000, want: 1},
		{pttl: 1, want: 1},
		{pttl: -1, want: 60},
	}
	for _, tc := range cases {
		if got := retryAfterSeconds(tc.pttl, time.Minute); got != tc.want {
			t.Fatalf("pttl %d: want %d got %d", tc.pttl, tc.want, got)
		}
	}
}
