package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/auth"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/cart"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/checkout"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/coupon"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/metrics"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/queue"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/repository"

	"github.com/google/uuid"
)

const storageKeyMeta = "meta"

var ErrInvalidSessionID = errors.New("session id invalid")

// Backend 会话依赖的后端能力
type Backend interface {
	coupon.Backend
	auth.Backend
	checkout.Backend
}

// PurgeScheduler 闲置清理任务调度
type PurgeScheduler interface {
	EnqueueSessionPurge(payload queue.SessionPurgePayload, delay time.Duration) error
}

// Options 会话管理选项
type Options struct {
	IdleTTL        time.Duration
	LensChangeMode string
	RequireLogin   bool
	DefaultCountry string
	Metrics        *metrics.Metrics
	Scheduler      PurgeScheduler
}

type meta struct {
	LastSeen int64 `json:"last_seen"`
}

// Manager 会话管理器（进程内缓存 + 持久化恢复）
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	repo     repository.StorageRepository
	backend  Backend
	opts     Options
	now      func() time.Time
}

// NewManager 创建会话管理器
func NewManager(repo repository.StorageRepository, backend Backend, opts Options) *Manager {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = time.Duration(constants.DefaultSessionTTL) * time.Second
	}
	return &Manager{
		sessions: make(map[string]*Session),
		repo:     repo,
		backend:  backend,
		opts:     opts,
		now:      time.Now,
	}
}

// NewID 生成新的会话 ID
func NewID() string {
	return uuid.NewString()
}

// ValidID 会话 ID 必须是 UUID
func ValidID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

// Get 获取会话；不在内存中时从存储恢复购物车与登录态
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if !ValidID(id) {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		built, err := m.build(ctx, id)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		// 并发请求可能已先完成恢复
		if existing, exists := m.sessions[id]; exists {
			sess = existing
		} else {
			m.sessions[id] = built
			sess = built
		}
		count := len(m.sessions)
		m.mu.Unlock()
		m.opts.Metrics.SetSessions(count)
	}
	m.touch(ctx, sess)
	return sess, nil
}

func (m *Manager) build(ctx context.Context, id string) (*Session, error) {
	cartStore := cart.NewStore(m.repo, id, cart.Options{
		LensChangeMode: m.opts.LensChangeMode,
		Metrics:        m.opts.Metrics,
	})
	if err := cartStore.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("hydrate session %s: %w", id, err)
	}
	authStore := auth.NewStore(m.repo, m.backend, id)
	if err := authStore.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("hydrate session %s: %w", id, err)
	}
	validator := coupon.NewValidator(m.backend)
	flow := checkout.NewFlow(cartStore, validator, authStore, m.backend, checkout.Options{
		RequireLogin:   m.opts.RequireLogin,
		DefaultCountry: m.opts.DefaultCountry,
		Metrics:        m.opts.Metrics,
	})
	logger.Debugw("session_hydrated", "session_id", id, "cart_lines", len(cartStore.Lines()), "authenticated", authStore.Authenticated())
	return &Session{
		ID:       id,
		Cart:     cartStore,
		Auth:     authStore,
		Coupon:   validator,
		Checkout: flow,
	}, nil
}

// touch 记录最后访问时间并按需安排闲置清理
func (m *Manager) touch(ctx context.Context, sess *Session) {
	now := m.now()
	sess.touch(now)

	raw, err := json.Marshal(meta{LastSeen: now.Unix()})
	if err == nil {
		if err := m.repo.Save(ctx, repository.SessionKey(sess.ID, storageKeyMeta), raw); err != nil {
			logger.Warnw("session_touch_failed", "session_id", sess.ID, "error", err)
		}
	}

	if m.opts.Scheduler == nil || !sess.shouldSchedule(now, m.opts.IdleTTL/2) {
		return
	}
	payload := queue.SessionPurgePayload{SessionID: sess.ID, LastSeen: now.Unix()}
	if err := m.opts.Scheduler.EnqueueSessionPurge(payload, m.opts.IdleTTL); err != nil {
		logger.Warnw("session_schedule_purge_failed", "session_id", sess.ID, "error", err)
	}
}

// Purge 清理闲置会话的持久化内容；会话在此期间有访问则跳过。
// 返回是否实际执行了清理。
func (m *Manager) Purge(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if !ValidID(id) {
		return false, ErrInvalidSessionID
	}
	metaKey := repository.SessionKey(id, storageKeyMeta)
	raw, ok, err := m.repo.Load(ctx, metaKey)
	if err != nil {
		return false, err
	}
	now := m.now()
	if ok {
		var stored meta
		if err := json.Unmarshal(raw, &stored); err == nil {
			lastSeen := time.Unix(stored.LastSeen, 0)
			if now.Sub(lastSeen) < m.opts.IdleTTL {
				return false, nil
			}
		}
	}

	for _, name := range []string{constants.StorageKeyCart, constants.StorageKeyAuth, storageKeyMeta} {
		if err := m.repo.Clear(ctx, repository.SessionKey(id, name)); err != nil {
			return false, fmt.Errorf("purge %s: %w", name, err)
		}
	}
	m.Evict(id)
	logger.Infow("session_purged", "session_id", id)
	return true, nil
}

// Evict 从内存移除会话（不影响持久化内容）
func (m *Manager) Evict(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()
	m.opts.Metrics.SetSessions(count)
}

// Sweep 移除内存中闲置超过 IdleTTL 的会话，返回移除数量
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	removed := 0
	for id, sess := range m.sessions {
		if sess.idleSince(now) >= m.opts.IdleTTL {
			delete(m.sessions, id)
			removed++
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()
	m.opts.Metrics.SetSessions(count)
	return removed
}

// Len 内存中的会话数量
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// RunJanitor 周期性回收内存中的闲置会话，直到 ctx 结束
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.Sweep(); removed > 0 {
				logger.Debugw("session_janitor_swept", "removed", removed)
			}
		}
	}
}
