// Package models содержит доменные структуры сервиса аккаунтов.
package models

// DefaultPlanTag — тег бесплатного плана, который обязан существовать
// в каталоге до первой регистрации пользователя.
const DefaultPlanTag = "free_plan"

// Plan представляет запись каталога тарифных планов.
// Поле Tag вычисляется из Name при создании и уникально.
type Plan struct {
	UID                 string // Уникальный идентификатор плана
	Name                string // Название плана (уникальное)
	Description         string // Описание плана
	Tag                 string // Слаг для поиска, выводится из названия
	Price               int    // Цена, 0 означает бесплатный план
	DurationInMonths    int    // Длительность подписки в месяцах
	Unlimited           bool   // Безлимитный ли план
	MonthlyAPICallLimit int    // Лимит вызовов API в месяц
}

// DummyPlan используется для приёма данных из JSON-запроса
// на создание плана, прежде чем конвертировать их в Plan.
type DummyPlan struct {
	Name                string `json:"name" validate:"required,min=3,max=100"`
	Description         string `json:"description" validate:"required"`
	Price               int    `json:"price" validate:"gte=0"`
	DurationInMonths    int    `json:"duration_in_months" validate:"gte=0"`
	Unlimited           bool   `json:"unlimited"`
	MonthlyAPICallLimit int    `json:"monthly_api_call_limit" validate:"gte=0"`
}

// UpdatePlan содержит частичные изменения плана. Nil-поля не изменяются.
// Название и тег не изменяются после создания.
type UpdatePlan struct {
	Description         *string `json:"description,omitempty"`
	Price               *int    `json:"price,omitempty" validate:"omitempty,gte=0"`
	DurationInMonths    *int    `json:"duration_in_months,omitempty" validate:"omitempty,gte=0"`
	Unlimited           *bool   `json:"unlimited,omitempty"`
	MonthlyAPICallLimit *int    `json:"monthly_api_call_limit,omitempty" validate:"omitempty,gte=0"`
}
