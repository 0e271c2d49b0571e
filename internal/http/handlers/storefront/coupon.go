package storefront

import (
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/coupon"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CouponRequest 应用优惠券请求
type CouponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon 以当前小计校验并应用优惠码
func (h *Handler) ApplyCoupon(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, constants.MsgRequestInvalid, nil)
		return
	}

	subtotal := sess.Cart.Subtotal()
	result, err := sess.Coupon.Apply(c.Request.Context(), req.Code, subtotal)
	if err != nil {
		respondCouponError(c, err)
		return
	}
	state := sess.Coupon.Snapshot(subtotal)
	switch result.Outcome {
	case coupon.OutcomeApplied:
		response.Success(c, state)
	case coupon.OutcomeRejected:
		respondErrorWithData(c, response.CodeBadRequest, result.Message, state, nil)
	default:
		respondErrorWithData(c, response.CodeBadGateway, result.Message, state, nil)
	}
}

// RemoveCoupon 移除已应用的优惠券
func (h *Handler) RemoveCoupon(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	sess.Coupon.Remove()
	response.Success(c, sess.Coupon.Snapshot(sess.Cart.Subtotal()))
}
