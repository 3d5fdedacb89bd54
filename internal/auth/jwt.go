package auth

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired 表示令牌已过有效期
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid 表示令牌无法通过校验
	ErrTokenInvalid = errors.New("invalid token")
)

const tokenIssuer = "everydayfodmap"

// Claims 是签进访问令牌的自定义声明。
// 本应用只有一个属主账号，令牌里只需要带用户名。
type Claims struct {
	Username string `json:"username"`
	jwtv5.RegisteredClaims
}

// Manager 负责访问令牌的签发与校验。
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager 创建 JWT 管理器，ttl 为访问令牌有效期。
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// GenerateToken 为指定用户名签发一枚 HS256 访问令牌。
func (m *Manager) GenerateToken(username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.ttl)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken 解析并校验令牌，过期与无效分别返回对应的哨兵错误。
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// TTL 返回令牌有效期，供响应里的 expires_in 字段使用。
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
