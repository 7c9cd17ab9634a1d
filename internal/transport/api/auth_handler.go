package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/fsdevblog/groph-store/internal/service"
	"github.com/fsdevblog/groph-store/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	userService  UserServicer
	tokenService TokenServicer
	cookies      authCookies
}

func NewAuthHandler(userService UserServicer, tokenService TokenServicer, releaseMode bool) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		tokenService: tokenService,
		cookies:      authCookies{secure: releaseMode},
	}
}

type UserSignupParams struct {
	Name     string `binding:"required,min=1,max=100"   json:"name"`
	Email    string `binding:"required,email,max=255"   json:"email"`
	Password string `binding:"required,min=6,max=255"   json:"password"`
}

type UserResponse struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      domain.RoleType `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// Signup POST RouteGroup + SignupRoute. Регистрирует юзера и сразу
// аутентифицирует его: пара токенов уезжает в куки.
func (h *AuthHandler) Signup(c *gin.Context) {
	var params UserSignupParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs.Error()})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, createErr := h.userService.Register(ctx, service.RegisterUserArgs{
		Name:     params.Name,
		Email:    params.Email,
		Password: params.Password,
	})
	if createErr != nil {
		if errors.Is(createErr, domain.ErrDuplicateKey) {
			_ = c.AbortWithError(http.StatusConflict, errors.New("user with this email already exists")).
				SetType(gin.ErrorTypePublic)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, createErr).
			SetType(gin.ErrorTypePrivate)
		return
	}

	pair, issueErr := h.tokenService.Issue(ctx, user)
	if issueErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, issueErr).
			SetType(gin.ErrorTypePrivate)
		return
	}

	h.cookies.setPair(c, pair)
	c.JSON(http.StatusCreated, gin.H{"user": newUserResponse(user)})
}

type UserLoginParams struct {
	Email    string `binding:"required,email"          json:"email"`
	Password string `binding:"required,min=6,max=255"  json:"password"`
}

// Login POST RouteGroup + LoginRoute. Аутентификация по паре email/пароль.
// Неизвестный email и неверный пароль наружу неразличимы.
func (h *AuthHandler) Login(c *gin.Context) {
	var params UserLoginParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, loginErr := h.userService.Login(ctx, service.LoginUserArgs{
		Email:    params.Email,
		Password: params.Password,
	})
	if loginErr != nil {
		if errors.Is(loginErr, domain.ErrRecordNotFound) || errors.Is(loginErr, domain.ErrPasswordMissMatch) {
			_ = c.Error(loginErr)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, loginErr).
			SetType(gin.ErrorTypePrivate)
		return
	}

	pair, issueErr := h.tokenService.Issue(ctx, user)
	if issueErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, issueErr).
			SetType(gin.ErrorTypePrivate)
		return
	}

	h.cookies.setPair(c, pair)
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

// Logout POST RouteGroup + LogoutRoute. Гасит закешированный refresh токен и
// чистит куки. Куки чистятся даже если токен уже невалиден.
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, cookieErr := c.Cookie(middlewares.RefreshTokenCookie)
	if cookieErr == nil && refreshToken != "" {
		ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
		defer cancel()

		if revokeErr := h.tokenService.Revoke(ctx, refreshToken); revokeErr != nil &&
			!errors.Is(revokeErr, service.ErrInvalidRefreshToken) {
			_ = c.AbortWithError(http.StatusInternalServerError, revokeErr).
				SetType(gin.ErrorTypePrivate)
			return
		}
	}

	h.cookies.clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// RefreshToken POST RouteGroup + RefreshTokenRoute. Выпускает новый access токен
// по refresh куке.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken, cookieErr := c.Cookie(middlewares.RefreshTokenCookie)
	if cookieErr != nil || refreshToken == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no refresh token provided"})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	accessToken, refreshErr := h.tokenService.Refresh(ctx, refreshToken)
	if refreshErr != nil {
		if errors.Is(refreshErr, service.ErrInvalidRefreshToken) {
			_ = c.Error(refreshErr)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, refreshErr).
			SetType(gin.ErrorTypePrivate)
		return
	}

	h.cookies.setAccess(c, accessToken)
	c.JSON(http.StatusOK, gin.H{"message": "token refreshed successfully"})
}

// Profile GET RouteGroup + ProfileRoute. Данные текущего юзера.
func (h *AuthHandler) Profile(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.userService.FindByID(ctx, currentUserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).
			SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}
