// Package models содержит доменные структуры сервиса аккаунтов.
package models

// Pagination — единый формат ответа для всех списочных операций.
// TotalPages считается как ceil(totalCount / pageSize).
type Pagination[T any] struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	Data       []T `json:"data"`
}

// NewPagination собирает страницу ответа из данных и общего количества записей.
func NewPagination[T any](page, pageSize, totalCount int, data []T) Pagination[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return Pagination[T]{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Data:       data,
	}
}
