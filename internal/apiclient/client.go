package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/constants"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/logger"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/metrics"
)

const defaultTimeout = 12 * time.Second

var (
	ErrConfigInvalid   = errors.New("backend api config invalid")
	ErrRequestFailed   = errors.New("backend api request failed")
	ErrResponseInvalid = errors.New("backend api response invalid")
)

// APIError 后端返回的非 2xx 响应
type APIError struct {
	Operation string
	Status    int
	Message   string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("%s: backend status %d", e.Operation, e.Status)
	}
	return fmt.Sprintf("%s: backend status %d: %s", e.Operation, e.Status, e.Message)
}

// StatusOf 提取 APIError 状态码，非 APIError 返回 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf 提取 APIError 的后端消息
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Client 后端 API 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMetrics 挂载指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New 创建客户端
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: base_url is invalid", ErrConfigInvalid)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL 后端根地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	operation   string
	method      string
	path        string
	token       string
	sendToken   bool
	body        io.Reader
	contentType string
}

func (c *Client) do(ctx context.Context, req request) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	body, status, err := c.send(ctx, req)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "transport_error"
	case status >= 500:
		outcome = "server_error"
	case !isSuccess(status):
		outcome = "client_error"
	}
	c.metrics.ObserveBackend(req.operation, outcome, time.Since(start))
	if err != nil {
		logger.Ctx(ctx).Warnw("backend_api_request_failed",
			"operation", req.operation,
			"method", req.method,
			"path", req.path,
			"error", err,
		)
	} else {
		logger.Ctx(ctx).Debugw("backend_api_request",
			"operation", req.operation,
			"method", req.method,
			"path", req.path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
	return body, status, err
}

func (c *Client) send(ctx context.Context, req request) ([]byte, int, error) {
	endpoint := c.baseURL + req.path
	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, req.body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.sendToken {
		httpReq.Header.Set(constants.AuthTokenHeader, req.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) doJSON(ctx context.Context, operation, method, path, token string, sendToken bool, payload interface{}) ([]byte, int, error) {
	var reader io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
		}
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, request{
		operation:   operation,
		method:      method,
		path:        path,
		token:       token,
		sendToken:   sendToken,
		body:        reader,
		contentType: contentType,
	})
}

type messageBody struct {
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

// newAPIError 构建非 2xx 错误，消息取自响应体（若可解析）
func newAPIError(operation string, status int, body []byte) *APIError {
	apiErr := &APIError{Operation: operation, Status: status}
	var parsed messageBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Message = strings.TrimSpace(parsed.Message)
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(parsed.Msg)
		}
	}
	return apiErr
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func decodeJSON(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return nil
}
