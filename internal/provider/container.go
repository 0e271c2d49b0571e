package provider

import (
	"strings"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/apiclient"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/cache"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/catalog"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/metrics"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/queue"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/repository"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/session"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/upload"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Metrics     *metrics.Metrics
	DB          *gorm.DB

	// Storage
	StorageRepo repository.StorageRepository

	// Backend & domain
	APIClient      *apiclient.Client
	LensMenu       *catalog.LensMenu
	Uploads        *upload.Validator
	SessionManager *session.Manager
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Metrics:     metrics.New(),
	}

	// 1. 初始化存储
	if err := c.initStorage(); err != nil {
		return nil, err
	}

	// 2. 初始化后端客户端与会话
	if err := c.initServices(); err != nil {
		return nil, err
	}

	return c, nil
}

// NewContainerWith 使用给定依赖组装容器（测试与嵌入场景）
func NewContainerWith(cfg *config.Config, repo repository.StorageRepository, client *apiclient.Client) *Container {
	c := &Container{
		Config:      cfg,
		Metrics:     metrics.New(),
		StorageRepo: repo,
		APIClient:   client,
	}
	c.initDomain()
	return c
}

func (c *Container) initStorage() error {
	driver := strings.ToLower(strings.TrimSpace(c.Config.Storage.Driver))
	ttl := time.Duration(c.Config.Storage.TTLSeconds) * time.Second
	switch driver {
	case constants.StorageDriverMemory:
		c.StorageRepo = repository.NewMemoryStorageRepository()
	case constants.StorageDriverRedis:
		store, err := cache.NewRedisStorage(cache.Client(), cache.Prefix(), ttl)
		if err != nil {
			// Redis 不可用时退回内存存储，重启后会话内容丢失
			logger.Warnw("provider_redis_storage_unavailable", "error", err)
			c.StorageRepo = repository.NewMemoryStorageRepository()
			return nil
		}
		c.StorageRepo = store
	default:
		dbCfg := c.Config.Database
		db, err := models.OpenDB(models.DBOptions{
			Driver: dbCfg.Driver,
			DSN:    dbCfg.DSN,
			Pool: models.DBPoolConfig{
				MaxOpenConns:           dbCfg.Pool.MaxOpenConns,
				MaxIdleConns:           dbCfg.Pool.MaxIdleConns,
				ConnMaxLifetimeSeconds: dbCfg.Pool.ConnMaxLifetimeSeconds,
				ConnMaxIdleTimeSeconds: dbCfg.Pool.ConnMaxIdleTimeSeconds,
			},
			Debug: c.Config.Server.Mode == "debug",
		})
		if err != nil {
			logger.Errorw("provider_open_database_failed", "driver", c.Config.Database.Driver, "error", err)
			return err
		}
		if err := models.AutoMigrate(db); err != nil {
			logger.Errorw("provider_auto_migrate_failed", "error", err)
			return err
		}
		c.DB = db
		c.StorageRepo = repository.NewStorageRepository(db)
	}
	logger.Infow("provider_storage_ready", "driver", driver)
	return nil
}

func (c *Container) initServices() error {
	client, err := apiclient.New(c.Config.API.BaseURL, c.Config.API.Timeout(), apiclient.WithMetrics(c.Metrics))
	if err != nil {
		logger.Errorw("provider_init_api_client_failed", "base_url", c.Config.API.BaseURL, "error", err)
		return err
	}
	c.APIClient = client
	c.initDomain()
	return nil
}

func (c *Container) initDomain() {
	if len(c.Config.Catalog.LensMenu) > 0 {
		c.LensMenu = catalog.NewLensMenu(c.Config.Catalog.LensMenu)
	} else {
		c.LensMenu = catalog.DefaultLensMenu()
	}
	c.Uploads = upload.NewValidator(c.Config.Upload)

	opts := session.Options{
		IdleTTL:        c.Config.Session.IdleTTL(),
		LensChangeMode: c.Config.Cart.LensChangeMode,
		RequireLogin:   c.Config.Checkout.RequireLogin,
		DefaultCountry: c.Config.Checkout.DefaultCountry,
		Metrics:        c.Metrics,
	}
	if c.QueueClient.Enabled() {
		opts.Scheduler = c.QueueClient
	}
	c.SessionManager = session.NewManager(c.StorageRepo, c.APIClient, opts)
}

// Close 释放容器持有的连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
