package catalog

import "github.com/avion-shop/internal/constants"

// Window 商品列表可见窗口
type Window struct {
	Visible int
	Step    int
}

// NewWindow 按可见数量创建窗口，非法值回到一页
func NewWindow(visible, step int) Window {
	if step <= 0 {
		step = constants.CatalogWindowStep
	}
	if visible < step {
		visible = step
	}
	return Window{Visible: visible, Step: step}
}

// HasMore 是否还有未展示的商品
func (w Window) HasMore(total int) bool {
	return total > w.Visible
}

// Next 切换后的可见数量：已全部展示时收起为一页，否则再展开一页
func (w Window) Next(total int) int {
	if w.Visible >= total {
		return w.Step
	}
	return w.Visible + w.Step
}

// ToggleLabel 切换按钮文案 key
func (w Window) ToggleLabel(total int) string {
	if w.Visible >= total {
		return "show_less"
	}
	return "show_more"
}

// Slice 截取可见部分
func Slice[T any](w Window, items []T) []T {
	if len(items) <= w.Visible {
		return items
	}
	return items[:w.Visible]
}
