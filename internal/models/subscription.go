// Package models содержит доменные структуры сервиса аккаунтов.
package models

import "time"

// Статусы подписки.
const (
	// SubscriptionStatusActive — действующая подписка.
	SubscriptionStatusActive = "active"
	// SubscriptionStatusInactive — отключенная подписка.
	SubscriptionStatusInactive = "inactive"
)

// Subscription представляет состояние подписки пользователя на план.
// У пользователя не может быть более одной активной подписки.
// Поле EndDate может быть nil — это означает бессрочную подписку
// (бесплатный или безлимитный план).
type Subscription struct {
	UID       string     // Уникальный идентификатор записи
	UserUID   string     // Пользователь-владелец подписки
	PlanUID   string     // План, на который оформлена подписка
	StartDate time.Time  // Дата начала действия
	EndDate   *time.Time // Дата окончания, nil для бессрочных
	Status    string     // active или inactive
}
