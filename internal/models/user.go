// Package models содержит доменные структуры сервиса аккаунтов:
// пользователей, планы, подписки, OTP-токены и API-ключи.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей. Проверка ролей выполняется на границе (middleware),
// ядро доверяет уже авторизованному вызывающему.
const (
	// RoleAdmin — административная роль.
	RoleAdmin = "admin"
	// RoleUser — роль обычного пользователя, назначается по умолчанию.
	RoleUser = "user"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string     // Уникальный идентификатор пользователя
	Firstname    string     // Имя
	Lastname     string     // Фамилия
	Email        string     // Электронная почта (уникальная, в нижнем регистре)
	PasswordHash string     // Хэш пароля, исходный пароль не хранится
	Verified     bool       // Подтвержден ли email через OTP
	Roles        []string   // Роли пользователя, минимум одна
	APIKeyUID    *string    // Ссылка на выданный API-ключ, может отсутствовать
	CreatedAt    time.Time  // Дата создания записи
	UpdatedAt    *time.Time // Дата последнего изменения
}

// ReadUser — проекция пользователя для выдачи наружу, без хэша пароля.
type ReadUser struct {
	UID       string   `json:"uid"`
	Firstname string   `json:"firstname"`
	Lastname  string   `json:"lastname"`
	Email     string   `json:"email"`
	Verified  bool     `json:"verified"`
	Roles     []string `json:"roles"`
	APIKeyUID *string  `json:"api_key_uid,omitempty"`
}

// ToReadUser конвертирует User в безопасную для выдачи проекцию.
func ToReadUser(u *User) ReadUser {
	return ReadUser{
		UID:       u.UID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Verified:  u.Verified,
		Roles:     u.Roles,
		APIKeyUID: u.APIKeyUID,
	}
}

// UpdateUser содержит частичные изменения профиля пользователя.
// Nil-поля не изменяются.
type UpdateUser struct {
	Firstname *string `json:"firstname,omitempty" validate:"omitempty,min=1"`
	Lastname  *string `json:"lastname,omitempty" validate:"omitempty,min=1"`
}

// DummyUser используется для приёма данных из JSON-запроса на регистрацию,
// прежде чем конвертировать их в User. OTP должен быть выпущен заранее
// на указанный email.
type DummyUser struct {
	Firstname string `json:"firstname" validate:"required,min=1,max=100"`
	Lastname  string `json:"lastname" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	OTP       string `json:"otp" validate:"required,len=6,numeric"`
}
