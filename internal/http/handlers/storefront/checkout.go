package storefront

import (
	"errors"
	"net/http"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/checkout"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/http/response"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"

	"github.com/gin-gonic/gin"
)

// CheckoutSubmitRequest 提交订单表单（multipart，处方文件字段为 prescription）
type CheckoutSubmitRequest struct {
	Name                string `form:"name" json:"name"`
	Phone               string `form:"phone" json:"phone"`
	Street              string `form:"street" json:"street"`
	City                string `form:"city" json:"city"`
	State               string `form:"state" json:"state"`
	Zip                 string `form:"zip" json:"zip"`
	Country             string `form:"country" json:"country"`
	PrescriptionMessage string `form:"prescription_message" json:"prescription_message"`
}

func (r CheckoutSubmitRequest) address() models.Address {
	return models.Address{
		Name:    r.Name,
		Phone:   r.Phone,
		Street:  r.Street,
		City:    r.City,
		State:   r.State,
		Zip:     r.Zip,
		Country: r.Country,
	}
}

// GetCheckout 当前结算流程状态
func (h *Handler) GetCheckout(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	response.Success(c, sess.Checkout.Snapshot())
}

// ProceedCheckout 进入填写地址阶段
func (h *Handler) ProceedCheckout(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	state, err := sess.Checkout.Proceed(c.Request.Context())
	if err != nil {
		respondCheckoutError(c, err, sess.Checkout)
		return
	}
	response.Success(c, state)
}

// SubmitCheckout 提交订单：处方上传、保存地址、创建订单
func (h *Handler) SubmitCheckout(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	var req CheckoutSubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, response.CodeBadRequest, constants.MsgRequestInvalid, nil)
		return
	}

	input := checkout.SubmitInput{
		Address:             req.address(),
		PrescriptionMessage: req.PrescriptionMessage,
	}
	header, err := c.FormFile(constants.PrescriptionFormKey)
	switch {
	case err == nil:
		file, openErr := h.Uploads.Open(header)
		if openErr != nil {
			respondUploadError(c, openErr)
			return
		}
		defer file.Close()
		input.Prescription = &checkout.Attachment{
			Filename:    file.Filename,
			ContentType: file.ContentType,
			File:        file.Reader,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		respondError(c, response.CodeBadRequest, constants.MsgRequestInvalid, nil)
		return
	}

	receipt, err := sess.Checkout.Submit(c.Request.Context(), input)
	if err != nil {
		respondCheckoutError(c, err, sess.Checkout)
		return
	}
	response.SuccessWithMsg(c, "Order placed successfully", gin.H{
		"receipt":  receipt,
		"checkout": sess.Checkout.Snapshot(),
	})
}

// ResetCheckout 返回查看阶段
func (h *Handler) ResetCheckout(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	if err := sess.Checkout.Reset(); err != nil {
		respondCheckoutError(c, err, sess.Checkout)
		return
	}
	response.Success(c, sess.Checkout.Snapshot())
}
