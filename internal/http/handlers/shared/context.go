package shared

import (
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/response"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/session"

	"github.com/gin-gonic/gin"
)

// SetSession 将会话写入请求上下文
func SetSession(c *gin.Context, sess *session.Session) {
	c.Set(constants.SessionContextKey, sess)
}

// LookupSession 读取会话，不写响应
func LookupSession(c *gin.Context) (*session.Session, bool) {
	value, exists := c.Get(constants.SessionContextKey)
	if !exists {
		return nil, false
	}
	sess, ok := value.(*session.Session)
	return sess, ok && sess != nil
}

// GetSession 从上下文读取会话，缺失时直接返回 500 响应。
func GetSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := LookupSession(c)
	if !ok {
		RespondError(c, response.CodeInternal, constants.MsgSessionUnavailable, nil)
	}
	return sess, ok
}
