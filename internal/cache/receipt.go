package cache

import (
	"context"
	"strings"
	"time"

	"github.com/avion-shop/internal/models"
)

const receiptCacheTTL = 24 * time.Hour

func orderReceiptKey(cartID, orderNo string) string {
	return "checkout:receipt:" + strings.TrimSpace(cartID) + ":" + strings.TrimSpace(orderNo)
}

// SetOrderReceipt 按购物车缓存下单回执，订单镜像落库前用于查询
func SetOrderReceipt(ctx context.Context, cartID string, order *models.OrderRecord) error {
	if order == nil || strings.TrimSpace(order.OrderNo) == "" {
		return nil
	}
	return SetJSON(ctx, orderReceiptKey(cartID, order.OrderNo), order, receiptCacheTTL)
}

// GetOrderReceipt 读取缓存的下单回执
func GetOrderReceipt(ctx context.Context, cartID, orderNo string) (*models.OrderRecord, bool, error) {
	if strings.TrimSpace(orderNo) == "" {
		return nil, false, nil
	}
	var order models.OrderRecord
	ok, err := GetJSON(ctx, orderReceiptKey(cartID, orderNo), &order)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &order, true, nil
}

// DelOrderReceipt 删除下单回执缓存
func DelOrderReceipt(ctx context.Context, cartID, orderNo string) error {
	if strings.TrimSpace(orderNo) == "" {
		return nil
	}
	return Del(ctx, orderReceiptKey(cartID, orderNo))
}
