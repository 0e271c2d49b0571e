package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client
var redisPrefix string
var redisEnabled bool

// InitRedis 初始化 Redis 客户端
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		redisEnabled = false
		return nil
	}
	addr := strings.TrimSpace(cfg.Host)
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	redisPrefix = normalizePrefix(cfg.Prefix)

	redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", addr, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	redisEnabled = true
	return nil
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return redisEnabled && redisClient != nil
}

// Client 获取 Redis 客户端
func Client() *redis.Client {
	if !Enabled() {
		return nil
	}
	return redisClient
}

// Prefix 当前键前缀
func Prefix() string {
	if redisPrefix == "" {
		return normalizePrefix("")
	}
	return redisPrefix
}

// RedisStorage 基于 Redis 的会话键值存储
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStorage 创建 Redis 存储，ttl<=0 表示不过期
func NewRedisStorage(client *redis.Client, prefix string, ttl time.Duration) (*RedisStorage, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	return &RedisStorage{
		client: client,
		prefix: normalizePrefix(prefix),
		ttl:    ttl,
	}, nil
}

// Load 读取存储内容
func (s *RedisStorage) Load(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, buildKey(s.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Save 写入存储内容
func (s *RedisStorage) Save(ctx context.Context, key string, value []byte) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, buildKey(s.prefix, key), value, ttl).Err()
}

// Clear 删除存储内容
func (s *RedisStorage) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, buildKey(s.prefix, key)).Err()
}

func normalizePrefix(prefix string) string {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		return "dj"
	}
	return trimmed
}

func buildKey(prefix, key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return prefix
	}
	return fmt.Sprintf("%s:%s", prefix, trimmed)
}
