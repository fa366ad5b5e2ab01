package queue

import (
	"encoding/json"

	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderMirror 订单本地镜像任务
	TaskOrderMirror = constants.TaskOrderMirror
)

// OrderMirrorPayload 订单镜像任务载荷
type OrderMirrorPayload struct {
	CartID string             `json:"cart_id"`
	Order  models.OrderRecord `json:"order"`
}

// NewOrderMirrorTask 创建订单镜像任务
func NewOrderMirrorTask(payload OrderMirrorPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderMirror, body), nil
}

// ParseOrderMirrorPayload 解析订单镜像任务载荷
func ParseOrderMirrorPayload(body []byte) (OrderMirrorPayload, error) {
	var payload OrderMirrorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return OrderMirrorPayload{}, err
	}
	payload.Order.CartID = payload.CartID
	return payload, nil
}
