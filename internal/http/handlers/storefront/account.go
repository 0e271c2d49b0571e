package storefront

import (
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListOrders 当前用户的订单
func (h *Handler) ListOrders(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	if !sess.Auth.Authenticated() {
		respondError(c, response.CodeUnauthorized, constants.MsgLoginRequired, nil)
		return
	}
	orders, err := h.APIClient.ListMyOrders(c.Request.Context(), sess.Auth.Token())
	if err != nil {
		respondBackendError(c, err, "")
		return
	}
	response.Success(c, orders)
}

// GetAccount 账户页：资料与订单并发拉取，部分失败仍返回
func (h *Handler) GetAccount(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	account, err := sess.LoadAccount(c.Request.Context(), h.APIClient)
	if err != nil {
		respondBackendError(c, err, "")
		return
	}
	response.Success(c, account)
}
