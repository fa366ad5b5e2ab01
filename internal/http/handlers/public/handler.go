package public

import "github.com/avion-shop/internal/provider"

// Handler 店面接口处理器入口
// 说明：购物车身份由会话中间件写入上下文，处理器不做登录鉴权。
type Handler struct {
	*provider.Container
}

// New 创建店面处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
