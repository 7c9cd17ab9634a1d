package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/repository/repoargs"
	"github.com/fsdevblog/groph-store/pkg/uow"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	uow      uow.UOW
	userRepo UserRepository
}

func NewUserService(u uow.UOW) (*UserService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &UserService{
		uow:      u,
		userRepo: userRepo,
	}, nil
}

type RegisterUserArgs struct {
	Name     string
	Email    string
	Password string
}

// Register создает юзера с ролью customer. При конфликте email возвращает
// domain.ErrDuplicateKey.
func (s *UserService) Register(ctx context.Context, args RegisterUserArgs) (*domain.User, error) {
	password, hashErr := s.hashPassword(args.Password)
	if hashErr != nil {
		return nil, fmt.Errorf("registering user: %s", hashErr.Error())
	}

	var user *domain.User
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		var userErr error
		user, userErr = userRepo.CreateUser(c, repoargs.CreateUser{
			Name:     args.Name,
			Email:    args.Email,
			Password: password,
			Role:     domain.RoleCustomer,
		})
		return userErr //nolint:wrapcheck
	})

	if txErr != nil {
		return nil, fmt.Errorf("registering user: %w", txErr)
	}
	return user, nil
}

type LoginUserArgs struct {
	Email    string
	Password string
}

// Login проверяет пару email/пароль. Возвращает domain.ErrRecordNotFound для
// неизвестного email и domain.ErrPasswordMissMatch при неверном пароле.
func (s *UserService) Login(ctx context.Context, args LoginUserArgs) (*domain.User, error) {
	user, findErr := s.userRepo.FindByEmail(ctx, args.Email)
	if findErr != nil {
		return nil, fmt.Errorf("logging in user: %w", findErr)
	}

	if !s.comparePasswords(user.EncryptedPassword, args.Password) {
		return nil, fmt.Errorf("logging in user: %w", domain.ErrPasswordMissMatch)
	}
	return user, nil
}

// FindByID возвращает юзера по id (профиль текущего юзера).
func (s *UserService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return user, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %s", err.Error())
	}
	return string(bytes), nil
}

func (s *UserService) comparePasswords(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
