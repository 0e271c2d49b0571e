package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// requestIDKey 与 router 中间件写入的上下文键一致
const requestIDKey = "request_id"

// Response 统一响应结构
//
// HTTP 状态码固定为 200，业务结果由 status_code 表达；错误响应附带 request_id 便于排查。
type Response struct {
	StatusCode int         `json:"status_code"`          // 业务状态码
	Msg        string      `json:"msg"`                  // 提示消息
	Data       interface{} `json:"data"`                 // 数据内容
	RequestID  string      `json:"request_id,omitempty"` // 仅错误响应
}

// PageResponse 分页响应结构
type PageResponse struct {
	Response
	Pagination Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	SuccessWithMsg(c, "success", data)
}

// SuccessWithMsg 成功响应（自定义消息）
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{StatusCode: CodeOK, Msg: msg, Data: data})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		Response:   Response{StatusCode: CodeOK, Msg: "success", Data: data},
		Pagination: pagination,
	})
}

// Error 错误响应
func Error(c *gin.Context, statusCode int, msg string) {
	ErrorWithData(c, statusCode, msg, nil)
}

// ErrorWithData 错误响应，data 通常是当前状态快照（优惠券、结算流程）
func ErrorWithData(c *gin.Context, statusCode int, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: statusCode,
		Msg:        msg,
		Data:       data,
		RequestID:  requestID(c),
	})
}

func requestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Get(requestIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
