package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/apiclient"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrLoginFailed         = errors.New("login failed")
	ErrStorageNotReady     = errors.New("auth storage not ready")
)

// Backend 登录接口
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.AuthSession, error)
}

// Store 会话级登录态（持久化为 {user, token}）
type Store struct {
	mu      sync.RWMutex
	repo    repository.StorageRepository
	backend Backend
	key     string
	session *models.AuthSession
	now     func() time.Time
}

// NewStore 创建登录态存储
func NewStore(repo repository.StorageRepository, backend Backend, sessionID string) *Store {
	return &Store{
		repo:    repo,
		backend: backend,
		key:     repository.SessionKey(sessionID, constants.StorageKeyAuth),
		now:     time.Now,
	}
}

// Hydrate 从存储恢复登录态；过期的 JWT 会被丢弃
func (s *Store) Hydrate(ctx context.Context) error {
	if s.repo == nil {
		return ErrStorageNotReady
	}
	raw, ok, err := s.repo.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load auth: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	if !ok || len(raw) == 0 {
		return nil
	}
	var stored models.AuthSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		logger.Warnw("auth_hydrate_corrupt_entry", "key", s.key, "error", err)
		return nil
	}
	if !stored.Authenticated() {
		return nil
	}
	if TokenExpired(stored.Token, s.now()) {
		logger.Infow("auth_hydrate_token_expired", "key", s.key)
		if err := s.repo.Clear(ctx, s.key); err != nil {
			logger.Warnw("auth_clear_expired_failed", "key", s.key, "error", err)
		}
		return nil
	}
	s.session = &stored
	return nil
}

// Login 调用后端登录并持久化登录态
func (s *Store) Login(ctx context.Context, email, password string) (*models.AuthSession, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	session, err := s.backend.Login(ctx, email, password)
	if err != nil {
		if status := apiclient.StatusOf(err); status > 0 {
			// 保留 APIError 以便上层读取后端消息
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	if s.repo == nil {
		return nil, ErrStorageNotReady
	}
	if err := s.repo.Save(ctx, s.key, raw); err != nil {
		logger.Warnw("auth_persist_failed", "key", s.key, "error", err)
		return cloneSession(session), err
	}
	return cloneSession(session), nil
}

// Logout 清除登录态
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	if s.repo == nil {
		return ErrStorageNotReady
	}
	return s.repo.Clear(ctx, s.key)
}

// Authenticated 是否已登录
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Authenticated()
}

// Token 当前 token，未登录为空
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.session.Authenticated() {
		return ""
	}
	return s.session.Token
}

// User 当前用户副本
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.User == nil {
		return nil
	}
	user := *s.session.User
	return &user
}

// TokenExpired 判断 JWT 是否已过期；签名由后端校验，这里只读取 exp。
// 非 JWT 或未声明 exp 的 token 视为未过期。
func TokenExpired(token string, now time.Time) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

func cloneSession(session *models.AuthSession) *models.AuthSession {
	if session == nil {
		return nil
	}
	out := &models.AuthSession{Token: session.Token}
	if session.User != nil {
		user := *session.User
		out.User = &user
	}
	return out
}
