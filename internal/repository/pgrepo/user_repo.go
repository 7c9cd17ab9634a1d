package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/pkg/uow"
)

type UserRepository struct {
	db uow.DBTX
}

func NewUserRepository(db uow.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, created_at, updated_at, name, email, encrypted_password, role"

// CreateUser создает юзера. При конфликте email возвращает domain.ErrDuplicateKey,
// во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		INSERT INTO users (name, email, encrypted_password, role)
		VALUES ($1, lower($2), $3, $4)
		RETURNING `+userColumns,
		args.Name, args.Email, args.Password, args.Role,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user")
	}
	return user, nil
}

// FindByEmail ищет юзера по email. Возвращает domain.ErrRecordNotFound если запись
// не найдена.
func (u *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by email %s", email)
	}
	return user, nil
}

func (u *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Name,
		&user.Email,
		&user.EncryptedPassword,
		&user.Role,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &user, nil
}
