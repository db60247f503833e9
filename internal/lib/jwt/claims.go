// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Токены подписываются асимметрично (ECDSA): приватный ключ есть только
// у сервиса аккаунтов, проверка возможна по публичному ключу.
package jwt

import (
	"crypto/ecdsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	Email                string   `json:"email"` // Электронная почта пользователя
	Roles                []string `json:"roles"` // Роли пользователя
	jwt.RegisteredClaims          // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создает токен с uid пользователя, email и ролями
	GenerateToken(useruid, email string, roles []string) (string, error)
	// ParseToken возвращает *CustomClaims, если токен корректен
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker на паре ключей ECDSA
// и времени жизни токена (TTL).
type MakerImpl struct {
	privateKey *ecdsa.PrivateKey // Ключ для подписи токенов
	publicKey  *ecdsa.PublicKey  // Ключ для проверки подписи
	tokenTTL   time.Duration     // Время жизни токена
}
