package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"news-cms/config"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// JWTService 会话令牌的签发与校验
// Subject 为用户ID，ID(jti) 为 user_session.token；令牌本身不代表会话有效，
// 中间件还会回查会话是否仍处于活跃状态
type JWTService struct {
	secretKey []byte
	issuer    string
}

// SessionClaims 会话声明
type SessionClaims struct {
	Role string `json:"role,omitempty"`
	jwtv5.RegisteredClaims
}

// UserID 解析 Subject 中的用户ID
func (c *SessionClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", c.Subject, err)
	}
	return uint(id), nil
}

// NewJWTService 创建 JWT 服务
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey: []byte(cfg.Secret),
		issuer:    cfg.Issuer,
	}
}

// GenerateToken 为会话签发令牌，过期时间与会话一致
func (s *JWTService) GenerateToken(userID uint, role, sessionToken string, issuedAt, expiresAt time.Time) (string, error) {
	if userID == 0 {
		return "", errors.New("userID is required")
	}
	if sessionToken == "" {
		return "", errors.New("session token is required")
	}

	claims := &SessionClaims{
		Role: role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        sessionToken,
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwtv5.NewNumericDate(issuedAt),
			NotBefore: jwtv5.NewNumericDate(issuedAt),
			ExpiresAt: jwtv5.NewNumericDate(expiresAt),
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return signed, nil
}

// ValidateToken 校验并解析令牌
func (s *JWTService) ValidateToken(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}
	claims := &SessionClaims{}
	parsedToken, err := jwtv5.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwtv5.Token) (interface{}, error) {
			if token.Method != jwtv5.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
		jwtv5.WithIssuer(s.issuer),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	if !parsedToken.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" {
		return nil, errors.New("token has no session id")
	}
	return claims, nil
}
