package storefront

import (
	handlershared "github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/handlers/shared"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func getSession(c *gin.Context) (*session.Session, bool) {
	return handlershared.GetSession(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondErrorWithData(c *gin.Context, code int, msg string, data interface{}, err error) {
	handlershared.RespondErrorWithData(c, code, msg, data, err)
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}
