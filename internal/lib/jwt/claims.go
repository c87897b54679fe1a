package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается при любой ошибке проверки токена.
var ErrInvalidToken = errors.New("invalid token")

// Claims — полезная нагрузка токена доступа.
type Claims struct {
	ID string `json:"id"` // Идентификатор пользователя
	jwt.RegisteredClaims
}

// GenerateToken подписывает токен для пользователя с TTL по умолчанию.
func (j *MakerImpl) GenerateToken(userID string) (string, error) {
	return j.GenerateTokenWithTTL(userID, j.tokenTTL)
}

// GenerateTokenWithTTL подписывает токен для пользователя с указанным временем жизни.
func (j *MakerImpl) GenerateTokenWithTTL(userID string, ttl time.Duration) (string, error) {
	const op = "jwt.GenerateToken"

	now := time.Now()
	claims := Claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ParseToken проверяет подпись, алгоритм и срок действия токена.
// Токен без идентификатора пользователя считается невалидным.
func (j *MakerImpl) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseToken"

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%s: %w: empty subject", op, ErrInvalidToken)
	}
	return claims, nil
}
