// Package models содержит доменные структуры сервиса аккаунтов.
package models

import "time"

// APIKey представляет долгоживущий ключ доступа, привязанный
// к одному пользователю. На пользователя допускается не более
// одного ключа, срок действия не ограничен.
type APIKey struct {
	UID       string    // Уникальный идентификатор записи
	UserUID   string    // Пользователь-владелец ключа
	Key       string    // 256-битное случайное значение в hex
	CreatedAt time.Time // Момент выпуска
}
