package coupon

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"
)

var (
	ErrCodeRequired         = errors.New("coupon code is required")
	ErrValidationInProgress = errors.New("coupon validation in progress")
)

// Outcome 校验结果类型
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// Backend 优惠券校验接口
type Backend interface {
	ValidateCoupon(ctx context.Context, code string, orderTotal models.Money) (*models.CouponValidateResponse, error)
}

// Result 一次 Apply 的结果
type Result struct {
	Outcome Outcome               `json:"outcome"`
	Applied *models.AppliedCoupon `json:"applied_coupon"`
	Message string                `json:"message,omitempty"`
}

// State 优惠券状态快照
type State struct {
	Code       string                `json:"code"`
	Applied    *models.AppliedCoupon `json:"applied_coupon"`
	Discount   models.Money          `json:"discount"`
	Error      string                `json:"error,omitempty"`
	Validating bool                  `json:"validating"`
	Stale      bool                  `json:"stale"`
}

// Validator 会话级优惠券状态（不持久化）
type Validator struct {
	mu         sync.Mutex
	backend    Backend
	code       string
	applied    *models.AppliedCoupon
	errMsg     string
	validating bool
}

// NewValidator 创建校验器
func NewValidator(backend Backend) *Validator {
	return &Validator{backend: backend}
}

// Apply 向后端校验优惠码。
// 无效码与网络失败都不会返回 error，而是清空已应用的优惠券并在结果中给出提示。
func (v *Validator) Apply(ctx context.Context, code string, subtotal models.Money) (Result, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	v.mu.Lock()
	v.code = normalized
	if normalized == "" {
		v.errMsg = constants.MsgCouponCodeRequired
		v.mu.Unlock()
		return Result{Outcome: OutcomeRejected, Message: constants.MsgCouponCodeRequired}, ErrCodeRequired
	}
	if v.validating {
		v.mu.Unlock()
		return Result{}, ErrValidationInProgress
	}
	v.validating = true
	v.errMsg = ""
	v.mu.Unlock()

	resp, err := v.backend.ValidateCoupon(ctx, normalized, subtotal)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.validating = false

	if err == nil && resp == nil {
		err = errors.New("empty coupon response")
	}
	if err != nil {
		logger.Warnw("coupon_validate_failed", "code", normalized, "error", err)
		v.applied = nil
		v.errMsg = constants.MsgCouponFailed
		return Result{Outcome: OutcomeFailed, Message: v.errMsg}, nil
	}
	if !resp.Valid {
		v.applied = nil
		v.errMsg = strings.TrimSpace(resp.Message)
		if v.errMsg == "" {
			v.errMsg = constants.MsgCouponInvalid
		}
		logger.Debugw("coupon_rejected", "code", normalized, "message", v.errMsg)
		return Result{Outcome: OutcomeRejected, Message: v.errMsg}, nil
	}

	v.applied = &models.AppliedCoupon{
		Code:       normalized,
		Discount:   resp.Discount.ClampZero(),
		OrderTotal: subtotal,
	}
	v.errMsg = ""
	applied := *v.applied
	return Result{Outcome: OutcomeApplied, Applied: &applied, Message: strings.TrimSpace(resp.Message)}, nil
}

// Remove 清除已应用优惠券、输入码与错误提示
func (v *Validator) Remove() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.applied = nil
	v.code = ""
	v.errMsg = ""
}

// Applied 当前已应用的优惠券副本
func (v *Validator) Applied() *models.AppliedCoupon {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.applied == nil {
		return nil
	}
	applied := *v.applied
	return &applied
}

// Discount 当前折扣，未应用时为 0
func (v *Validator) Discount() models.Money {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.applied == nil {
		return models.Money{}
	}
	return v.applied.Discount
}

// Snapshot 状态快照；subtotal 用于判断折扣是否基于旧的小计
func (v *Validator) Snapshot(subtotal models.Money) State {
	v.mu.Lock()
	defer v.mu.Unlock()
	state := State{
		Code:       v.code,
		Error:      v.errMsg,
		Validating: v.validating,
	}
	if v.applied != nil {
		applied := *v.applied
		state.Applied = &applied
		state.Discount = applied.Discount
		state.Stale = !applied.OrderTotal.Equal(subtotal)
	}
	return state
}
