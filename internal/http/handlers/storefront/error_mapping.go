package storefront

import (
	"errors"
	"strings"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/apiclient"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/auth"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/cart"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/catalog"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/checkout"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/coupon"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/response"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/session"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/upload"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartErrorRules = []mappedHandlerError{
	{target: cart.ErrInvalidLine, code: response.CodeBadRequest, msg: constants.MsgRequestInvalid},
	{target: cart.ErrLineNotFound, code: response.CodeNotFound, msg: constants.MsgCartLineNotFound},
	{target: catalog.ErrLensNotFound, code: response.CodeBadRequest, msg: constants.MsgLensNotFound},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: checkout.ErrCartEmpty, code: response.CodeBadRequest, msg: constants.MsgCartEmpty},
	{target: checkout.ErrLoginRequired, code: response.CodeUnauthorized, msg: constants.MsgLoginRequired},
	{target: checkout.ErrAddressIncomplete, code: response.CodeBadRequest, msg: constants.MsgAddressIncomplete},
	{target: checkout.ErrSubmitInProgress, code: response.CodeConflict, msg: constants.MsgCheckoutBusy},
	{target: checkout.ErrInvalidPhase, code: response.CodeConflict, msg: constants.MsgCheckoutPhaseInvalid},
}

var uploadErrorRules = []mappedHandlerError{
	{target: upload.ErrFileTooLarge, code: response.CodeBadRequest, msg: constants.MsgPrescriptionTooLarge},
	{target: upload.ErrExtensionNotAllowed, code: response.CodeBadRequest, msg: constants.MsgPrescriptionTypeInvalid},
	{target: upload.ErrTypeNotAllowed, code: response.CodeBadRequest, msg: constants.MsgPrescriptionTypeInvalid},
}

var couponErrorRules = []mappedHandlerError{
	{target: coupon.ErrCodeRequired, code: response.CodeBadRequest, msg: constants.MsgCouponCodeRequired},
	{target: coupon.ErrValidationInProgress, code: response.CodeConflict, msg: constants.MsgCouponValidating},
}

var sessionErrorRules = []mappedHandlerError{
	{target: session.ErrNotAuthenticated, code: response.CodeUnauthorized, msg: constants.MsgLoginRequired},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, constants.MsgCartSaveFailed)
}

func respondCouponError(c *gin.Context, err error) {
	respondWithMappedError(c, err, couponErrorRules, response.CodeInternal, constants.MsgCouponFailed)
}

func respondUploadError(c *gin.Context, err error) {
	respondWithMappedError(c, err, uploadErrorRules, response.CodeBadRequest, constants.MsgPrescriptionTypeInvalid)
}

// respondCheckoutError 订单失败时使用流程记录的面向用户提示
func respondCheckoutError(c *gin.Context, err error, flow *checkout.Flow) {
	switch {
	case errors.Is(err, checkout.ErrOrderRejected):
		respondErrorWithData(c, response.CodeBadRequest, flowMessage(flow, constants.MsgOrderFailed), flow.Snapshot(), err)
	case errors.Is(err, checkout.ErrOrderRequestFailed):
		respondErrorWithData(c, response.CodeBadGateway, flowMessage(flow, constants.MsgSomethingWrong), flow.Snapshot(), err)
	default:
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, constants.MsgSomethingWrong)
	}
}

// respondAuthError 登录失败：后端拒绝时透传后端消息
func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrCredentialsRequired):
		respondError(c, response.CodeBadRequest, constants.MsgCredentialsRequired, nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(c, response.CodeUnauthorized, backendMessage(err, constants.MsgInvalidCredentials), nil)
	default:
		respondError(c, response.CodeBadGateway, constants.MsgLoginFailed, err)
	}
}

// respondBackendError 后端读取类接口的统一错误响应
func respondBackendError(c *gin.Context, err error, notFoundMsg string) {
	switch status := apiclient.StatusOf(err); {
	case status == 404 && notFoundMsg != "":
		respondError(c, response.CodeNotFound, notFoundMsg, nil)
	case status == 401 || status == 403:
		respondError(c, response.CodeUnauthorized, backendMessage(err, constants.MsgLoginRequired), nil)
	case status > 0:
		respondError(c, response.CodeBadGateway, backendMessage(err, constants.MsgBackendUnavailable), err)
	default:
		respondWithMappedError(c, err, sessionErrorRules, response.CodeBadGateway, constants.MsgBackendUnavailable)
	}
}

func backendMessage(err error, fallback string) string {
	if msg := strings.TrimSpace(apiclient.MessageOf(err)); msg != "" {
		return msg
	}
	return fallback
}

func flowMessage(flow *checkout.Flow, fallback string) string {
	if flow == nil {
		return fallback
	}
	if msg := strings.TrimSpace(flow.ErrorMessage()); msg != "" {
		return msg
	}
	return fallback
}
