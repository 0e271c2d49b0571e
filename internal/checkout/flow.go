package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/apiclient"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/cart"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/metrics"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"
)

var (
	ErrCartEmpty          = errors.New("cart is empty")
	ErrLoginRequired      = errors.New("login required")
	ErrAddressIncomplete  = errors.New("address incomplete")
	ErrInvalidPhase       = errors.New("checkout phase invalid")
	ErrSubmitInProgress   = errors.New("checkout submit in progress")
	ErrOrderRejected      = errors.New("order rejected")
	ErrOrderRequestFailed = errors.New("order request failed")
)

// Phase 结算流程阶段
type Phase string

const (
	PhaseViewing      Phase = constants.CheckoutPhaseViewing
	PhaseAddressEntry Phase = constants.CheckoutPhaseAddressEntry
	PhaseSubmitting   Phase = constants.CheckoutPhaseSubmitting
	PhaseSuccess      Phase = constants.CheckoutPhaseSuccess
	PhaseFailed       Phase = constants.CheckoutPhaseFailed
)

// Backend 结算依赖的后端接口
type Backend interface {
	GetProfile(ctx context.Context, token string) (*models.Profile, error)
	UploadPrescription(ctx context.Context, filename, contentType string, file io.Reader) (string, error)
	SaveAddress(ctx context.Context, token string, address models.Address) error
	CreateOrder(ctx context.Context, token string, submission models.OrderSubmission) (*models.OrderCreated, error)
}

// Cart 结算读取与清空的购物车
type Cart interface {
	Snapshot() cart.State // 行与小计在同一把锁下取得
	Subtotal() models.Money
	Empty() bool
	Clear(ctx context.Context) error
}

// Coupons 已应用的优惠券
type Coupons interface {
	Applied() *models.AppliedCoupon
	Remove()
}

// Identity 当前登录态
type Identity interface {
	Authenticated() bool
	Token() string
}

// Attachment 处方文件
type Attachment struct {
	Filename    string
	ContentType string
	File        io.Reader
}

// SubmitInput 提交表单
type SubmitInput struct {
	Address             models.Address
	PrescriptionMessage string
	Prescription        *Attachment
}

// Receipt 下单成功结果
type Receipt struct {
	OrderID              string                 `json:"order_id"`
	Message              string                 `json:"message,omitempty"`
	Submission           models.OrderSubmission `json:"submission"`
	PrescriptionUploaded bool                   `json:"prescription_uploaded"`
	AddressSaved         bool                   `json:"address_saved"`
}

// State 流程快照
type State struct {
	Phase            Phase                 `json:"phase"`
	Previous         Phase                 `json:"previous_phase,omitempty"`
	Address          models.Address        `json:"address"`
	AddressPrefilled bool                  `json:"address_prefilled"`
	Error            string                `json:"error,omitempty"`
	Subtotal         models.Money          `json:"subtotal"`
	Discount         models.Money          `json:"discount"`
	Total            models.Money          `json:"total"`
	Coupon           *models.AppliedCoupon `json:"applied_coupon"`
	Receipt          *Receipt              `json:"receipt,omitempty"`
}

// Options 流程选项
type Options struct {
	RequireLogin   bool
	DefaultCountry string
	Metrics        *metrics.Metrics
}

// Flow 会话级结算流程
type Flow struct {
	mu        sync.Mutex
	phase     Phase
	previous  Phase
	address   models.Address
	prefilled bool
	errMsg    string
	receipt   *Receipt

	cart     Cart
	coupons  Coupons
	identity Identity
	backend  Backend
	opts     Options
}

// NewFlow 创建结算流程，初始阶段为 Viewing
func NewFlow(lines Cart, coupons Coupons, identity Identity, backend Backend, opts Options) *Flow {
	if strings.TrimSpace(opts.DefaultCountry) == "" {
		opts.DefaultCountry = constants.DefaultCountry
	}
	return &Flow{
		phase:    PhaseViewing,
		cart:     lines,
		coupons:  coupons,
		identity: identity,
		backend:  backend,
		opts:     opts,
	}
}

// Phase 当前阶段
func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Proceed Viewing → AddressEntry，已登录时用已保存地址预填
func (f *Flow) Proceed(ctx context.Context) (State, error) {
	f.mu.Lock()
	if f.phase == PhaseSubmitting {
		f.mu.Unlock()
		return f.Snapshot(), ErrSubmitInProgress
	}
	if f.cart.Empty() {
		f.mu.Unlock()
		return f.Snapshot(), ErrCartEmpty
	}
	authenticated := f.identity.Authenticated()
	if f.opts.RequireLogin && !authenticated {
		f.mu.Unlock()
		return f.Snapshot(), ErrLoginRequired
	}
	token := f.identity.Token()
	f.receipt = nil
	f.errMsg = ""
	f.mu.Unlock()

	address := models.Address{Country: f.opts.DefaultCountry}
	prefilled := false
	if authenticated {
		profile, err := f.backend.GetProfile(ctx, token)
		switch {
		case err != nil:
			logger.Warnw("checkout_prefill_profile_failed", "error", err)
		case profile.HasSavedAddress():
			address = profile.Address.Normalize()
			if address.Name == "" {
				address.Name = strings.TrimSpace(profile.Name)
			}
			if address.Country == "" {
				address.Country = f.opts.DefaultCountry
			}
			prefilled = true
		case profile != nil:
			address.Name = strings.TrimSpace(profile.Name)
		}
	}

	f.mu.Lock()
	if f.phase == PhaseSubmitting {
		f.mu.Unlock()
		return f.Snapshot(), ErrSubmitInProgress
	}
	f.phase = PhaseAddressEntry
	f.previous = ""
	f.address = address
	f.prefilled = prefilled
	f.mu.Unlock()
	return f.Snapshot(), nil
}

// Submit AddressEntry → Submitting → Success | Failed。
// 依次执行：处方上传（可选）、保存地址（仅登录用户）、创建订单；各步骤不具备事务性。
func (f *Flow) Submit(ctx context.Context, input SubmitInput) (*Receipt, error) {
	f.mu.Lock()
	switch f.phase {
	case PhaseAddressEntry:
	case PhaseSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	default:
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrInvalidPhase, f.phase)
	}
	// 订单按此刻的购物车下发，上传期间的改动不影响本次提交
	snapshot := f.cart.Snapshot()
	if len(snapshot.Lines) == 0 {
		f.mu.Unlock()
		return nil, ErrCartEmpty
	}
	authenticated := f.identity.Authenticated()
	if f.opts.RequireLogin && !authenticated {
		f.mu.Unlock()
		return nil, ErrLoginRequired
	}
	address := input.Address.Normalize()
	if address.Country == "" {
		address.Country = f.opts.DefaultCountry
	}
	f.address = address
	if missing := address.MissingFields(); len(missing) > 0 {
		f.errMsg = constants.MsgAddressIncomplete
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAddressIncomplete, strings.Join(missing, ", "))
	}
	f.phase = PhaseSubmitting
	f.previous = PhaseAddressEntry
	f.errMsg = ""
	token := f.identity.Token()
	f.mu.Unlock()

	// 请求一旦发出就执行到底，不随调用方取消
	runCtx := context.WithoutCancel(ctx)
	receipt := &Receipt{}

	imageURL := ""
	if input.Prescription != nil && input.Prescription.File != nil {
		url, err := f.backend.UploadPrescription(runCtx, input.Prescription.Filename, input.Prescription.ContentType, input.Prescription.File)
		if err != nil {
			logger.Warnw("checkout_prescription_upload_failed", "filename", input.Prescription.Filename, "error", err)
		} else {
			imageURL = url
			receipt.PrescriptionUploaded = true
		}
	}

	if authenticated {
		if err := f.backend.SaveAddress(runCtx, token, address); err != nil {
			logger.Warnw("checkout_save_address_failed", "error", err)
		} else {
			receipt.AddressSaved = true
		}
	}

	subtotal := snapshot.Subtotal
	discount := models.Money{}
	couponCode := ""
	if applied := f.coupons.Applied(); applied != nil {
		discount = applied.Discount
		couponCode = applied.Code
	}
	prescription := &models.Prescription{
		PrescriptionImage: imageURL,
		Message:           strings.TrimSpace(input.PrescriptionMessage),
	}
	submission := BuildOrderPayload(
		snapshot.Lines,
		subtotal,
		discount,
		OrderTotal(subtotal, discount),
		couponCode,
		address,
		prescription,
	)
	receipt.Submission = submission

	created, err := f.backend.CreateOrder(runCtx, token, submission)
	if err != nil {
		return nil, f.fail(err)
	}

	if clearErr := f.cart.Clear(runCtx); clearErr != nil {
		logger.Warnw("checkout_clear_cart_failed", "error", clearErr)
	}
	f.coupons.Remove()
	if created != nil {
		receipt.OrderID = created.ID
		receipt.Message = created.Message
	}

	f.mu.Lock()
	f.previous = PhaseSubmitting
	f.phase = PhaseSuccess
	f.receipt = receipt
	f.mu.Unlock()
	f.opts.Metrics.IncOrderSubmit("success")
	logger.Infow("checkout_order_created",
		"order_id", receipt.OrderID,
		"items", len(submission.Items),
		"total", submission.Total.String(),
		"coupon", couponCode,
	)
	return receipt, nil
}

// fail 经 Failed 回到 AddressEntry，购物车保留以便重试
func (f *Flow) fail(err error) error {
	message := constants.MsgSomethingWrong
	wrapped := fmt.Errorf("%w: %v", ErrOrderRequestFailed, err)
	if status := apiclient.StatusOf(err); status > 0 {
		message = apiclient.MessageOf(err)
		if message == "" {
			message = constants.MsgOrderFailed
		}
		wrapped = fmt.Errorf("%w: %s", ErrOrderRejected, message)
	}
	logger.Warnw("checkout_order_failed", "error", err, "message", message)
	f.opts.Metrics.IncOrderSubmit("failed")

	f.mu.Lock()
	f.previous = PhaseFailed
	f.phase = PhaseAddressEntry
	f.errMsg = message
	f.mu.Unlock()
	return wrapped
}

// Reset 返回 Viewing（下单成功后或放弃填写地址）
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == PhaseSubmitting {
		return ErrSubmitInProgress
	}
	f.previous = f.phase
	f.phase = PhaseViewing
	f.errMsg = ""
	f.receipt = nil
	f.prefilled = false
	return nil
}

// Snapshot 当前流程状态
func (f *Flow) Snapshot() State {
	subtotal := f.cart.Subtotal()
	applied := f.coupons.Applied()
	discount := models.Money{}
	if applied != nil {
		discount = applied.Discount
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	state := State{
		Phase:            f.phase,
		Previous:         f.previous,
		Address:          f.address,
		AddressPrefilled: f.prefilled,
		Error:            f.errMsg,
		Subtotal:         subtotal,
		Discount:         discount,
		Total:            OrderTotal(subtotal, discount),
		Coupon:           applied,
	}
	if f.receipt != nil {
		receipt := *f.receipt
		state.Receipt = &receipt
	}
	return state
}

// ErrorMessage 最近一次面向用户的错误提示
func (f *Flow) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}
