// Package errs определяет ошибки доменного уровня, общие для всех
// сервисов. Сервисы заворачивают их через fmt.Errorf("%s: %w", ...),
// граница HTTP распознает их через errors.Is и подбирает статус ответа.
package errs

import "errors"

var (
	// ErrNotFound — сущность не найдена по id, email, тегу или токену.
	ErrNotFound = errors.New("not found")
	// ErrConflict — нарушение уникальности: повторный email,
	// повторное название плана, второй API-ключ для пользователя.
	ErrConflict = errors.New("already exists")
	// ErrExpired — срок действия OTP-кода истек.
	ErrExpired = errors.New("token expired")
	// ErrInvalidCredentials — неверная пара email/пароль. Намеренно
	// не различает отсутствие пользователя и неверный пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDefaultPlanMissing — в каталоге нет бесплатного плана.
	// Ошибка конфигурации развертывания, проверяется при старте.
	ErrDefaultPlanMissing = errors.New("default plan missing")
)
