// Package otp генерирует случайные учетные секреты: шестизначные
// одноразовые коды подтверждения и долгоживущие API-ключи.
// Источник случайности — crypto/rand.
package otp

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// CodeLength — количество цифр в одноразовом коде.
const CodeLength = 6

// APIKeyBytes — размер API-ключа в байтах до hex-кодирования.
const APIKeyBytes = 32

// GenerateCode возвращает шестизначный числовой код в диапазоне
// 100000–999999. Уникальность среди сохраненных кодов обеспечивает
// уникальный индекс хранилища, вызывающая сторона повторяет генерацию
// при конфликте.
func GenerateCode() (string, error) {
	const op = "otp.GenerateCode"
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateAPIKey возвращает 256-битное случайное значение в hex.
func GenerateAPIKey() (string, error) {
	const op = "otp.GenerateAPIKey"
	buf := make([]byte, APIKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}
