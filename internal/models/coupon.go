package models

// AppliedCoupon 已应用的优惠券（仅存在于会话内存，不持久化）
type AppliedCoupon struct {
	Code       string `json:"code"`        // 优惠码
	Discount   Money  `json:"discount"`    // 服务端计算的固定优惠金额
	OrderTotal Money  `json:"order_total"` // 校验时提交的小计
}

// CouponValidateRequest 优惠券校验请求
type CouponValidateRequest struct {
	Code       string `json:"code"`
	OrderTotal Money  `json:"orderTotal"`
}

// CouponValidateResponse 优惠券校验响应
type CouponValidateResponse struct {
	Valid    bool   `json:"valid"`
	Discount Money  `json:"discount"`
	Message  string `json:"message"`
}
