package repoargs

import "github.com/fsdevblog/groph-store/internal/domain"

type CreateUser struct {
	Name     string
	Email    string
	Password string
	Role     domain.RoleType
}
