package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const orderNoAttempts = 3

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	randPart := randNumeric(6)
	return fmt.Sprintf("AV%s%s", now, randPart)
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

// buildItemKey 订单行键：slug-提交时刻毫秒时间戳
func buildItemKey(slug string, submittedAt time.Time) string {
	return fmt.Sprintf("%s-%d", slug, submittedAt.UnixMilli())
}
