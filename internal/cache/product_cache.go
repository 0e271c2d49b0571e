package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"

	"github.com/redis/go-redis/v9"
)

const productCacheTTL = 5 * time.Minute

func productKey(productID string) string {
	return fmt.Sprintf("catalog:product:%s", strings.TrimSpace(productID))
}

// GetJSON 获取 JSON 缓存
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	val, err := redisClient.Get(ctx, buildKey(Prefix(), key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, buildKey(Prefix(), key), payload, ttl).Err()
}

// GetProduct 读取商品缓存
func GetProduct(ctx context.Context, productID string) (*models.Product, bool, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, false, nil
	}
	var product models.Product
	hit, err := GetJSON(ctx, productKey(productID), &product)
	if err != nil || !hit {
		return nil, false, err
	}
	return &product, true, nil
}

// SetProduct 写入商品缓存（价格以后端为准，短 TTL）
func SetProduct(ctx context.Context, product *models.Product) error {
	if product == nil || product.Identifier() == "" {
		return nil
	}
	return SetJSON(ctx, productKey(product.Identifier()), product, productCacheTTL)
}
