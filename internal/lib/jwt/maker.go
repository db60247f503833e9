package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NewMaker создает MakerImpl из PEM-кодированной пары ключей ECDSA.
func NewMaker(privateKeyPEM, publicKeyPEM []byte, ttl time.Duration) (*MakerImpl, error) {
	const op = "jwt.NewMaker"
	privateKey, err := jwt.ParseECPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	publicKey, err := jwt.ParseECPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &MakerImpl{
		privateKey: privateKey,
		publicKey:  publicKey,
		tokenTTL:   ttl,
	}, nil
}

// GenerateToken создает JWT токен с uid пользователя, email и ролями,
// подписывая его приватным ключом ECDSA (ES256).
//
// Время жизни токена определяется полем tokenTTL.
func (j *MakerImpl) GenerateToken(useruid, email string, roles []string) (string, error) {
	claims := CustomClaims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   useruid,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	return token.SignedString(j.privateKey)
}

// ParseToken парсит JWT токен, проверяет его подпись публичным ключом
// и валидность, возвращает CustomClaims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
