package session

import (
	"context"
	"sync"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/auth"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/cart"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/checkout"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/coupon"
)

// Session 单个浏览器会话的应用上下文
type Session struct {
	ID       string
	Cart     *cart.Store
	Auth     *auth.Store
	Coupon   *coupon.Validator
	Checkout *checkout.Flow

	mu          sync.Mutex
	lastSeen    time.Time
	scheduledAt time.Time
}

// ClearCart 清空购物车，同时清除已应用的优惠券
func (s *Session) ClearCart(ctx context.Context) error {
	s.Coupon.Remove()
	return s.Cart.Clear(ctx)
}

// Logout 退出登录
func (s *Session) Logout(ctx context.Context) error {
	return s.Auth.Logout(ctx)
}

// LastSeen 最近访问时间
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// shouldSchedule 距上次排队超过 interval 才重新安排清理任务
func (s *Session) shouldSchedule(now time.Time, interval time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.scheduledAt.IsZero() && now.Sub(s.scheduledAt) < interval {
		return false
	}
	s.scheduledAt = now
	return true
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
