package service

import (
	"strings"
	"time"

	"github.com/avion-shop/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CartTokenClaims 购物车会话令牌声明
type CartTokenClaims struct {
	CartID string `json:"cart_id"`
	jwt.RegisteredClaims
}

// CartTokenService 签发与解析购物车会话令牌
type CartTokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewCartTokenService 创建购物车令牌服务
func NewCartTokenService(cfg config.CartConfig) *CartTokenService {
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	secret := strings.TrimSpace(cfg.TokenSecret)
	if secret == "" {
		// 未配置时使用进程内随机密钥，重启后旧令牌失效
		secret = uuid.NewString()
	}
	return &CartTokenService{secret: []byte(secret), ttl: ttl}
}

// TTL 令牌有效期
func (s *CartTokenService) TTL() time.Duration {
	return s.ttl
}

// Issue 为新购物车签发令牌
func (s *CartTokenService) Issue() (string, string, time.Time, error) {
	cartID := uuid.NewString()
	token, expiresAt, err := s.Sign(cartID)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return cartID, token, expiresAt, nil
}

// Sign 为指定购物车签发令牌
func (s *CartTokenService) Sign(cartID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := CartTokenClaims{
		CartID: cartID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse 解析令牌并返回购物车ID
func (s *CartTokenService) Parse(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrCartTokenInvalid
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &CartTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", ErrCartTokenInvalid
	}
	claims, ok := token.Claims.(*CartTokenClaims)
	if !ok || !token.Valid {
		return "", ErrCartTokenInvalid
	}
	if _, err := uuid.Parse(claims.CartID); err != nil {
		return "", ErrCartTokenInvalid
	}
	return claims.CartID, nil
}
