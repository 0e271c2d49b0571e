package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStorageKeyEmpty 存储键为空
var ErrStorageKeyEmpty = errors.New("storage key is empty")

// StorageRepository 会话键值存储接口（load/save/clear）
type StorageRepository interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
}

// SessionKey 生成会话级存储键
func SessionKey(sessionID, name string) string {
	return "session:" + strings.TrimSpace(sessionID) + ":" + strings.TrimSpace(name)
}

// GormStorageRepository GORM 实现（sqlite/postgres）
type GormStorageRepository struct {
	db *gorm.DB
}

// NewStorageRepository 创建存储仓库
func NewStorageRepository(db *gorm.DB) *GormStorageRepository {
	return &GormStorageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStorageRepository) WithTx(tx *gorm.DB) *GormStorageRepository {
	if tx == nil {
		return r
	}
	return &GormStorageRepository{db: tx}
}

// Load 读取存储内容
func (r *GormStorageRepository) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, ErrStorageKeyEmpty
	}
	var entry models.StorageEntry
	if err := r.db.WithContext(ctx).Where(&models.StorageEntry{Key: key}).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return entry.Value, true, nil
}

// Save 写入存储内容（存在则覆盖）
func (r *GormStorageRepository) Save(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return ErrStorageKeyEmpty
	}
	entry := models.StorageEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Clear 删除存储内容
func (r *GormStorageRepository) Clear(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrStorageKeyEmpty
	}
	return r.db.WithContext(ctx).Where(&models.StorageEntry{Key: key}).Delete(&models.StorageEntry{}).Error
}

// MemoryStorageRepository 进程内实现（开发与测试）
type MemoryStorageRepository struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStorageRepository 创建内存存储
func NewMemoryStorageRepository() *MemoryStorageRepository {
	return &MemoryStorageRepository{entries: make(map[string][]byte)}
}

// Load 读取存储内容
func (r *MemoryStorageRepository) Load(_ context.Context, key string) ([]byte, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, ErrStorageKeyEmpty
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Save 写入存储内容
func (r *MemoryStorageRepository) Save(_ context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return ErrStorageKeyEmpty
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	r.mu.Lock()
	r.entries[key] = stored
	r.mu.Unlock()
	return nil
}

// Clear 删除存储内容
func (r *MemoryStorageRepository) Clear(_ context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrStorageKeyEmpty
	}
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
	return nil
}

// Len 当前记录数
func (r *MemoryStorageRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
