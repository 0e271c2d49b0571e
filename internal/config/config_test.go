package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Equal(t, 12*time.Second, cfg.API.Timeout())
	assert.Equal(t, "database", cfg.Storage.Driver)
	assert.Equal(t, "reset", cfg.Cart.LensChangeMode)
	assert.Equal(t, "India", cfg.Checkout.DefaultCountry)
	assert.False(t, cfg.Checkout.RequireLogin)
	assert.Equal(t, 30*24*time.Hour, cfg.Session.IdleTTL())
	assert.Equal(t, int64(5242880), cfg.Upload.MaxSize)
	assert.Contains(t, cfg.CORS.AllowedHeaders, "X-Session-ID")
	assert.False(t, cfg.CORS.AllowCredentials)
	assert.True(t, cfg.CORS.AllowsAnyOrigin())
	assert.Empty(t, cfg.Catalog.LensMenu)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
api:
  base_url: "https://api.example.com/"
  timeout_ms: 3000
storage:
  driver: " Redis "
session:
  cookie_name: ""
  idle_ttl_seconds: 3600
cart:
  lens_change_mode: IN_PLACE
checkout:
  require_login: true
  default_country: ""
catalog:
  lens_menu:
    - lens_type: Clear
      additional_price: 0
    - lens_type: Tinted
      additional_price: 650
      description: Grey tint
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o600))

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout())
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "dj_storefront_sid", cfg.Session.CookieName)
	assert.Equal(t, time.Hour, cfg.Session.IdleTTL())
	assert.Equal(t, "in_place", cfg.Cart.LensChangeMode)
	assert.True(t, cfg.Checkout.RequireLogin)
	assert.Equal(t, "India", cfg.Checkout.DefaultCountry)
	require.Len(t, cfg.Catalog.LensMenu, 2)
	assert.Equal(t, int64(650), cfg.Catalog.LensMenu[1].AdditionalPrice)
	assert.Equal(t, "Grey tint", cfg.Catalog.LensMenu[1].Description)
}

func TestLoadFromEnvOverride(t *testing.T) {
	t.Setenv("DJ_API_BASE_URL", "http://backend.internal:5000")
	t.Setenv("DJ_CHECKOUT_REQUIRE_LOGIN", "true")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://backend.internal:5000", cfg.API.BaseURL)
	assert.True(t, cfg.Checkout.RequireLogin)
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	assert.True(t, CORSConfig{}.AllowsAnyOrigin())
	assert.True(t, CORSConfig{AllowedOrigins: []string{"https://shop.example.com", " * "}}.AllowsAnyOrigin())
	assert.False(t, CORSConfig{AllowedOrigins: []string{"https://shop.example.com"}}.AllowsAnyOrigin())
}
