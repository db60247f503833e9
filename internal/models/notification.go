// Package models содержит доменные структуры сервиса аккаунтов.
package models

// EmailMessage — сообщение для отправки письма, публикуемое в очередь
// уведомлений и потребляемое сервисом отправки.
type EmailMessage struct {
	Email   string `json:"email"`   // Адрес получателя
	Subject string `json:"subject"` // Тема письма
	Body    string `json:"body"`    // Текст письма
}
