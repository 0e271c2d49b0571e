package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"
)

const (
	pathCouponValidate = "/api/coupons/validate"
	pathOrders         = "/api/orders"
	pathMyOrders       = "/api/orders/myorders"
	pathUpload         = "/api/upload"
	pathUserAddress    = "/api/user/address"
	pathUserProfile    = "/api/user/profile"
	pathAuthLogin      = "/api/auth/login"
	pathProducts       = "/api/products"
)

// ValidateCoupon 校验优惠码
//
// 后端无论成功与否都会返回 {valid, discount, message}，因此非 2xx 也按响应体解析。
func (c *Client) ValidateCoupon(ctx context.Context, code string, orderTotal models.Money) (*models.CouponValidateResponse, error) {
	body, status, err := c.doJSON(ctx, "validate_coupon", http.MethodPost, pathCouponValidate, "", false, models.CouponValidateRequest{
		Code:       code,
		OrderTotal: orderTotal,
	})
	if err != nil {
		return nil, err
	}
	var resp models.CouponValidateResponse
	if err := decodeJSON(body, &resp); err != nil {
		if !isSuccess(status) {
			return nil, newAPIError("validate_coupon", status, body)
		}
		return nil, err
	}
	return &resp, nil
}

// CreateOrder 创建订单，token 为空时以访客身份提交
func (c *Client) CreateOrder(ctx context.Context, token string, submission models.OrderSubmission) (*models.OrderCreated, error) {
	body, status, err := c.doJSON(ctx, "create_order", http.MethodPost, pathOrders, token, true, submission)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, newAPIError("create_order", status, body)
	}
	created := &models.OrderCreated{Raw: append([]byte(nil), body...)}
	// 成功响应的结构不稳定，解析失败不影响下单结果
	_ = decodeJSON(body, created)
	return created, nil
}

// UploadPrescription 上传处方图片，返回后端存储地址
func (c *Client) UploadPrescription(ctx context.Context, filename, contentType string, file io.Reader) (string, error) {
	if file == nil {
		return "", fmt.Errorf("%w: file is nil", ErrRequestFailed)
	}
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, constants.UploadFormField, escapeQuotes(filename)))
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("%w: build multipart failed", ErrRequestFailed)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("%w: copy file failed", ErrRequestFailed)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: close multipart failed", ErrRequestFailed)
	}

	body, status, err := c.do(ctx, request{
		operation:   "upload_prescription",
		method:      http.MethodPost,
		path:        pathUpload,
		body:        buf,
		contentType: writer.FormDataContentType(),
	})
	if err != nil {
		return "", err
	}
	if !isSuccess(status) {
		return "", newAPIError("upload_prescription", status, body)
	}
	var resp struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(body, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.URL) == "" {
		return "", fmt.Errorf("%w: missing url", ErrResponseInvalid)
	}
	return resp.URL, nil
}

// SaveAddress 保存用户地址
func (c *Client) SaveAddress(ctx context.Context, token string, address models.Address) error {
	body, status, err := c.doJSON(ctx, "save_address", http.MethodPut, pathUserAddress, token, true, address)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return newAPIError("save_address", status, body)
	}
	return nil
}

// GetProfile 获取用户资料
func (c *Client) GetProfile(ctx context.Context, token string) (*models.Profile, error) {
	body, status, err := c.doJSON(ctx, "get_profile", http.MethodGet, pathUserProfile, token, true, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, newAPIError("get_profile", status, body)
	}
	var profile models.Profile
	if err := decodeJSON(body, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Login 用户登录
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthSession, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	body, status, err := c.doJSON(ctx, "login", http.MethodPost, pathAuthLogin, "", false, payload)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, newAPIError("login", status, body)
	}
	var session models.AuthSession
	if err := decodeJSON(body, &session); err != nil {
		return nil, err
	}
	if strings.TrimSpace(session.Token) == "" {
		return nil, fmt.Errorf("%w: missing token", ErrResponseInvalid)
	}
	return &session, nil
}

// ListMyOrders 获取当前用户订单
func (c *Client) ListMyOrders(ctx context.Context, token string) ([]models.OrderRecord, error) {
	body, status, err := c.doJSON(ctx, "list_my_orders", http.MethodGet, pathMyOrders, token, true, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, newAPIError("list_my_orders", status, body)
	}
	orders := make([]models.OrderRecord, 0)
	if err := decodeJSON(body, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListProducts 获取商品列表
func (c *Client) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	path := pathProducts
	if query := encodeProductFilter(filter); query != "" {
		path += "?" + query
	}
	body, status, err := c.doJSON(ctx, "list_products", http.MethodGet, path, "", false, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, newAPIError("list_products", status, body)
	}
	products := make([]models.Product, 0)
	if err := decodeJSON(body, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct 获取商品详情
func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrRequestFailed)
	}
	body, status, err := c.doJSON(ctx, "get_product", http.MethodGet, pathProducts+"/"+url.PathEscape(trimmed), "", false, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, newAPIError("get_product", status, body)
	}
	var product models.Product
	if err := decodeJSON(body, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func encodeProductFilter(filter models.ProductFilter) string {
	values := url.Values{}
	if v := strings.TrimSpace(filter.Category); v != "" {
		values.Set("category", v)
	}
	if v := strings.TrimSpace(filter.FrameType); v != "" {
		values.Set("frameType", v)
	}
	if v := strings.TrimSpace(filter.FrameShape); v != "" {
		values.Set("frameShape", v)
	}
	if v := strings.TrimSpace(filter.Gender); v != "" {
		values.Set("gender", v)
	}
	if filter.MinPrice > 0 {
		values.Set("minPrice", strconv.FormatInt(filter.MinPrice, 10))
	}
	if filter.MaxPrice > 0 {
		values.Set("maxPrice", strconv.FormatInt(filter.MaxPrice, 10))
	}
	return values.Encode()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
