package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"
	handlershared "github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/handlers/shared"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/repository"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestCORSPolicyAllowOrigin(t *testing.T) {
	cases := []struct {
		name   string
		cfg    config.CORSConfig
		origin string
		want   string
	}{
		{"wildcard", config.CORSConfig{AllowedOrigins: []string{"*"}}, "https://example.com", "*"},
		{"wildcard never echoes with cookies", config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}, "https://evil.example.org", "*"},
		{"wildcard among others", config.CORSConfig{AllowedOrigins: []string{"https://a.example.com", " * "}}, "https://b.example.com", "*"},
		{"empty list means any", config.CORSConfig{}, "", "*"},
		{"exact match ignores case and slash", config.CORSConfig{AllowedOrigins: []string{"https://Shop.example.com/"}}, "https://shop.example.com", "https://shop.example.com"},
		{"exact miss", config.CORSConfig{AllowedOrigins: []string{"https://a.example.com"}}, "https://x.example.com", ""},
		{"subdomain pattern", config.CORSConfig{AllowedOrigins: []string{"https://*.example.com"}}, "https://pr-12.example.com", "https://pr-12.example.com"},
		{"pattern needs a subdomain", config.CORSConfig{AllowedOrigins: []string{"https://*.example.com"}}, "https://example.com", ""},
		{"pattern keeps scheme", config.CORSConfig{AllowedOrigins: []string{"https://*.example.com"}}, "http://pr-12.example.com", ""},
		{"no origin header", config.CORSConfig{AllowedOrigins: []string{"https://a.example.com"}}, "", ""},
	}
	for _, tc := range cases {
		if got := newCORSPolicy(tc.cfg).allowOrigin(tc.origin); got != tc.want {
			t.Fatalf("%s: want %q got %q", tc.name, tc.want, got)
		}
	}
}

func TestCORSWildcardDoesNotGrantCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}))
	r.GET("/account", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("wildcard origin should not be reflected, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("wildcard origin must not allow credentials, got %q", got)
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://shop.example.com"}, AllowCredentials: true, MaxAge: 600}))
	r.POST("/cart/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/cart/items", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight want 204 got %d", w.Code)
	}
	h := w.Header()
	if h.Get("Access-Control-Allow-Origin") != "https://shop.example.com" || h.Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("unexpected origin headers: %v", h)
	}
	if !strings.Contains(h.Get("Access-Control-Allow-Headers"), sessionIDHeader) || h.Get("Access-Control-Max-Age") != "600" {
		t.Fatalf("unexpected preflight headers: %v", h)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/cart/items", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin should get no cors headers: %d %v", w.Code, w.Header())
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		fields := logger.Fields(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString(requestIDKey), "log_request_id": fields[len(fields)-1]})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" || resp["log_request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %v", resp)
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if _, err := uuid.Parse(generated); err != nil {
		t.Fatalf("generated request id should be a uuid: %s", generated)
	}
}

func TestSessionMiddlewareWithoutManager(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SessionMiddleware(nil, config.SessionConfig{}))
	r.GET("/cart", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 500 {
		t.Fatalf("status_code want 500 got %d", resp.StatusCode)
	}
}

func TestSessionMiddlewareBindsSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	manager := session.NewManager(repository.NewMemoryStorageRepository(), nil, session.Options{})
	r := gin.New()
	r.Use(SessionMiddleware(manager, config.SessionConfig{CookieName: "sid", IdleTTLSeconds: 60}))
	r.GET("/cart", func(c *gin.Context) {
		sess, ok := handlershared.GetSession(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": sess.ID})
	})

	headerID := session.NewID()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(sessionIDHeader, headerID)
	r.ServeHTTP(w, req)
	if got := w.Header().Get(sessionIDHeader); got != headerID {
		t.Fatalf("header session id should be reused, got %s", got)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "sid="+headerID) {
		t.Fatalf("cookie should carry the session id, got %s", w.Header().Get("Set-Cookie"))
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req2.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc/passwd"})
	r.ServeHTTP(w2, req2)
	issued := w2.Header().Get(sessionIDHeader)
	if issued == "" || issued == "../../etc/passwd" || !session.ValidID(issued) {
		t.Fatalf("invalid cookie should be replaced, got %q", issued)
	}
	if manager.Len() != 2 {
		t.Fatalf("manager should hold 2 sessions, got %d", manager.Len())
	}
}
