package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// 可用的筛选键
const (
	KeyCategory = "category"
	KeyType     = "type"
	KeyMaxPrice = "max_price"
)

var (
	ErrUnknownFilterKey   = errors.New("unknown filter key")
	ErrFilterValueInvalid = errors.New("filter value invalid")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Filter 商品列表筛选条件，零值字段表示不限制
type Filter struct {
	Category string           `json:"category,omitempty"`
	Type     string           `json:"type,omitempty"`
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`
}

// IsEmpty 是否没有任何限制
func (f Filter) IsEmpty() bool {
	return f.Category == "" && f.Type == "" && f.MaxPrice == nil
}

// ParseFilter 从键值对解析筛选条件，仅接受枚举的键
func ParseFilter(values map[string]string, allowedTypes []string) (Filter, error) {
	var filter Filter
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := strings.TrimSpace(values[key])
		switch key {
		case KeyCategory:
			if value == "" {
				continue
			}
			value = strings.ToLower(value)
			if !slugPattern.MatchString(value) {
				return Filter{}, fmt.Errorf("%w: category %q", ErrFilterValueInvalid, value)
			}
			filter.Category = value
		case KeyType:
			if value == "" {
				continue
			}
			value = strings.ToLower(value)
			if !containsFold(allowedTypes, value) {
				return Filter{}, fmt.Errorf("%w: type %q", ErrFilterValueInvalid, value)
			}
			filter.Type = value
		case KeyMaxPrice:
			if value == "" {
				continue
			}
			price, err := decimal.NewFromString(value)
			if err != nil || !price.IsPositive() {
				return Filter{}, fmt.Errorf("%w: max_price %q", ErrFilterValueInvalid, value)
			}
			filter.MaxPrice = &price
		default:
			return Filter{}, fmt.Errorf("%w: %s", ErrUnknownFilterKey, key)
		}
	}
	return filter, nil
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}
