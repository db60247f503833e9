// Package models содержит доменные структуры сервиса аккаунтов.
package models

import "time"

// Token представляет одноразовый код подтверждения (OTP), привязанный
// к email. Код действует ограниченное время и удаляется при успешной
// проверке.
type Token struct {
	Token     string    // Шестизначный числовой код (уникальный)
	Subject   string    // Назначение кода, например "forgot password"
	Email     string    // Почта, для которой выпущен код
	ExpiresAt time.Time // Момент истечения срока действия
	CreatedAt time.Time // Момент выпуска
}

// IsExpired сообщает, истек ли срок действия кода на момент now.
func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
