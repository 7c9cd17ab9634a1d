package pgrepo

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// convertErr приводит ошибку к стандартному виду для слоя репозитория:
//   - pgx.ErrNoRows и уже размеченный domain.ErrRecordNotFound (пути с
//     RowsAffected() == 0) -> domain.ErrRecordNotFound
//   - нарушение уникального индекса (23505) -> domain.ErrDuplicateKey
//   - нарушение внешнего ключа (23503) -> domain.ErrRecordNotFound, ссылка
//     ведет на несуществующую запись
//   - все остальное -> domain.ErrUnknown с оригинальным сообщением.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, domain.ErrRecordNotFound) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	errType := domain.ErrUnknown
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case foreignKeyViolationCode:
			errType = domain.ErrRecordNotFound
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}
