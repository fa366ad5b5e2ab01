package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	LocaleEnUS = "en-US"
	LocaleZhCN = "zh-CN"

	// DefaultLocale 默认语言
	DefaultLocale = LocaleEnUS

	localeHeader = "X-Locale"
)

var supportedLocales = []string{LocaleEnUS, LocaleZhCN}

var matcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish,
	language.SimplifiedChinese,
})

// SupportedLocales 返回支持的语言列表
func SupportedLocales() []string {
	out := make([]string, len(supportedLocales))
	copy(out, supportedLocales)
	return out
}

// ResolveLocale 从请求头解析语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if explicit := strings.TrimSpace(c.GetHeader(localeHeader)); explicit != "" {
		return NormalizeLocale(explicit)
	}
	return NormalizeLocale(c.GetHeader("Accept-Language"))
}

// NormalizeLocale 将任意语言标记归一到支持的语言
func NormalizeLocale(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(supportedLocales) {
		return DefaultLocale
	}
	return supportedLocales[index]
}

// T 翻译消息，未知 key 原样返回
func T(locale, key string) string {
	if table, ok := messages[NormalizeLocale(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
