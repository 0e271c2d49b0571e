package storefront

import (
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login 登录并把 {user, token} 写入会话存储
func (h *Handler) Login(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, constants.MsgRequestInvalid, nil)
		return
	}

	authSession, err := sess.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil && authSession == nil {
		respondAuthError(c, err)
		return
	}
	if err != nil {
		// 已登录但持久化失败：本次会话内有效
		requestLog(c).Warnw("auth_login_persist_failed", "session_id", sess.ID, "error", err)
	}
	response.Success(c, gin.H{
		"user":             authSession.User,
		"is_authenticated": sess.Auth.Authenticated(),
	})
}

// Logout 退出登录
func (h *Handler) Logout(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	if err := sess.Logout(c.Request.Context()); err != nil {
		requestLog(c).Warnw("auth_logout_clear_failed", "session_id", sess.ID, "error", err)
	}
	response.Success(c, gin.H{"is_authenticated": false})
}

// GetMe 当前登录态
func (h *Handler) GetMe(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	response.Success(c, gin.H{
		"user":             sess.Auth.User(),
		"is_authenticated": sess.Auth.Authenticated(),
	})
}
