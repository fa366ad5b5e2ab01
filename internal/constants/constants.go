package constants

// 队列常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskOrderMirror = "order:mirror"
)

// 商品类型常量
const (
	ProductTypeFurniture = "furniture"
	ProductTypeDecor     = "decor"
)

// 购物车存储驱动常量
const (
	CartDriverMemory   = "memory"
	CartDriverRedis    = "redis"
	CartDriverDatabase = "database"
)

// 数量调整动作常量
const (
	QuantityActionIncrease = "increase"
	QuantityActionDecrease = "decrease"
)

// 结算状态常量
const (
	CheckoutStateIdle       = "idle"
	CheckoutStateValidating = "validating"
	CheckoutStateSubmitting = "submitting"
	CheckoutStateSuccess    = "success"
	CheckoutStateFailure    = "failure"
	CheckoutStateCleared    = "cleared"
)

// 订单镜像状态常量
const (
	OrderStatusSubmitted = "submitted"
)

// 内容后端文档类型常量
const (
	DocumentTypeProduct  = "product"
	DocumentTypeCategory = "category"
	DocumentTypeOrder    = "order"
)

// 商品列表窗口常量
const (
	CatalogWindowStep = 12
)

// 购物车会话常量
const (
	CartTokenHeader = "X-Cart-Token"
	CartTokenCookie = "cart_token"
	CartIDKey       = "cart_id"
)

// 验证码场景常量
const (
	CaptchaSceneCheckout = "checkout"
)
