package storefront

import "github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/provider"

// Handler 店面接口处理器入口
// 说明：每个请求通过会话中间件绑定浏览器会话，处理器只操作该会话的状态。
type Handler struct {
	*provider.Container
}

// New 创建店面处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
