package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/session"
)

// JanitorService 周期回收内存中的闲置会话
type JanitorService struct {
	manager  *session.Manager
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewJanitorService 创建会话回收服务
func NewJanitorService(manager *session.Manager, interval time.Duration) *JanitorService {
	return &JanitorService{manager: manager, interval: interval}
}

// Name 服务名称
func (s *JanitorService) Name() string {
	return "session_janitor"
}

// Start 阻塞运行直到 ctx 结束或 Stop
func (s *JanitorService) Start(ctx context.Context) error {
	if s == nil || s.manager == nil {
		return errors.New("session manager not initialized")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	s.manager.RunJanitor(runCtx, s.interval)
	return nil
}

// Stop 停止服务
func (s *JanitorService) Stop(_ context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}
