// Package repository реализует хранилище данных сервиса аккаунтов
// на основе PostgreSQL. Предоставляет методы работы с пользователями,
// планами, подписками, OTP-токенами и API-ключами.
//
// Уникальность email, токенов, названий планов и ключа-на-пользователя
// обеспечивается уникальными индексами базы; нарушение ограничения
// транслируется в errs.ErrConflict, отсутствие строки — в errs.ErrNotFound.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/account-service/internal/errs"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// translateErr подменяет низкоуровневые ошибки базы на доменные:
// sql.ErrNoRows на errs.ErrNotFound, нарушение уникального индекса
// на errs.ErrConflict. Прочие ошибки возвращаются как есть.
func translateErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return errs.ErrConflict
	}
	return err
}
