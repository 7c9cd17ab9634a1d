package middlewares

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/service/tokens"
	"github.com/gin-gonic/gin"
)

var ErrTokenNotExist = errors.New("token not exist")

const (
	CurrentUserIDKey   = "currentUserID"
	CurrentUserRoleKey = "currentUserRole"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// checkAuthorization извлекает access токен из куки и проверяет его. Если токен
// не передан, вернется ошибка ErrTokenNotExist.
func checkAuthorization(c *gin.Context, accessSecret []byte) (*tokens.UserClaims, error) {
	tokenStr, cookieErr := c.Cookie(AccessTokenCookie)
	if cookieErr != nil || tokenStr == "" {
		return nil, ErrTokenNotExist
	}

	claims, validateErr := tokens.ValidateUserJWT(tokenStr, accessSecret)
	if validateErr != nil {
		return nil, fmt.Errorf("check authorization: %w", validateErr)
	}
	return claims, nil
}

// AuthRequired проверяет, что запрос авторизован. Записывает в контекст id юзера
// (CurrentUserIDKey) и его роль (CurrentUserRoleKey).
func AuthRequired(accessSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := checkAuthorization(c, accessSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			if !errors.Is(err, ErrTokenNotExist) {
				_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			}
			return
		}

		c.Set(CurrentUserIDKey, claims.ID)
		c.Set(CurrentUserRoleKey, claims.Role)
		c.Next()
	}
}

// AdminRequired пропускает только юзеров с ролью admin. Роль берется из клейма
// access токена, ставится только после AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(CurrentUserRoleKey)
		if !ok || role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}
